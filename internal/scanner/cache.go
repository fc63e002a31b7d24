package scanner

import (
	"context"
	"sync"
	"time"

	"nightgate/internal/pkg/errs"
)

// SnapshotSource fetches the current set of admissible credentials for an
// event. Online it is the scan API; tests use a fixture.
type SnapshotSource interface {
	FetchSnapshot(ctx context.Context) ([]CachedCredential, error)
}

var ErrNeverRefreshed = errs.New("offline cache has never been refreshed")

// Cache is the read-through local replica the scanner consults when the
// network is down. Refresh replaces the whole snapshot; lookups are served
// from memory and never mutate server state.
type Cache struct {
	source SnapshotSource

	mu          sync.RWMutex
	byToken     map[string]CachedCredential
	refreshedAt time.Time
}

func NewCache(source SnapshotSource) *Cache {
	return &Cache{
		source:  source,
		byToken: make(map[string]CachedCredential),
	}
}

func (c *Cache) Refresh(ctx context.Context) error {
	creds, err := c.source.FetchSnapshot(ctx)
	if err != nil {
		return errs.Wrap(err, "failed to refresh offline cache")
	}

	next := make(map[string]CachedCredential, len(creds))
	for _, cred := range creds {
		next[cred.Token] = cred
	}

	c.mu.Lock()
	c.byToken = next
	c.refreshedAt = time.Now()
	c.mu.Unlock()
	return nil
}

func (c *Cache) Lookup(token string) (CachedCredential, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cred, ok := c.byToken[token]
	return cred, ok
}

// MarkScannedLocally updates the snapshot after a local accept so the same
// device rejects an immediate re-present of the same ticket.
func (c *Cache) MarkScannedLocally(token string, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cred, ok := c.byToken[token]; ok {
		cred.Status = "scanned"
		scanned := at
		cred.ScannedAt = &scanned
		c.byToken[token] = cred
	}
}

func (c *Cache) RefreshedAt() (time.Time, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.refreshedAt.IsZero() {
		return time.Time{}, ErrNeverRefreshed
	}
	return c.refreshedAt, nil
}

func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byToken)
}
