package middleware

import (
	"context"
	"fmt"
	"time"

	"nightgate/internal/pkg/errs"

	"github.com/redis/go-redis/v9"
)

const (
	manualEntryLimit  = 5
	manualEntryWindow = time.Minute
)

// ManualEntryLimiter throttles manual credential entry per device. Typing a
// token by hand is the brute-force surface; QR scans carry a signature and
// are not limited.
type ManualEntryLimiter struct {
	rdb *redis.Client
}

func NewManualEntryLimiter(rdb *redis.Client) *ManualEntryLimiter {
	return &ManualEntryLimiter{rdb: rdb}
}

// Allow reports whether the device may submit another manual entry inside
// the current fixed window.
func (l *ManualEntryLimiter) Allow(ctx context.Context, deviceID string) (bool, error) {
	key := fmt.Sprintf("ratelimit:manual:%s", deviceID)

	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, errs.Wrap(err, "rate limit counter failed")
	}
	if count == 1 {
		if err := l.rdb.Expire(ctx, key, manualEntryWindow).Err(); err != nil {
			return false, errs.Wrap(err, "rate limit expiry failed")
		}
	}

	return count <= manualEntryLimit, nil
}
