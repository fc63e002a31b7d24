// Package backoff implements the retry schedule shared by the offline-scan
// reconciler and the email delivery queue: exponential doubling from a base
// delay, capped at a maximum, with ±10% jitter so synchronized retries spread
// out.
package backoff

import (
	"math/rand/v2"
	"time"
)

const jitterFraction = 0.10

type Policy struct {
	Base time.Duration
	Max  time.Duration
}

func NewPolicy(base, max time.Duration) Policy {
	if base <= 0 {
		base = time.Minute
	}
	if max < base {
		max = base
	}
	return Policy{Base: base, Max: max}
}

// Delay returns the jittered delay before retry number attempt (0-based).
// attempt 0 → ~base, attempt 1 → ~2·base, ... capped at Max.
func (p Policy) Delay(attempt int) time.Duration {
	d := p.raw(attempt)
	jitter := 1 + jitterFraction*(2*rand.Float64()-1)
	return time.Duration(float64(d) * jitter)
}

// NextRetryAt applies Delay to a reference time.
func (p Policy) NextRetryAt(now time.Time, attempt int) time.Time {
	return now.Add(p.Delay(attempt))
}

// Bounds reports the [min,max] window Delay can produce for an attempt,
// so callers (and tests) can reason about the schedule without randomness.
func (p Policy) Bounds(attempt int) (time.Duration, time.Duration) {
	d := float64(p.raw(attempt))
	return time.Duration(d * (1 - jitterFraction)), time.Duration(d * (1 + jitterFraction))
}

func (p Policy) raw(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := p.Base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= p.Max {
			return p.Max
		}
	}
	if d > p.Max {
		return p.Max
	}
	return d
}
