//go:build unit

package backoff_test

import (
	"testing"
	"time"

	"nightgate/internal/pkg/backoff"

	"github.com/stretchr/testify/assert"
)

func TestDelaySchedule(t *testing.T) {
	p := backoff.NewPolicy(time.Minute, 30*time.Minute)

	tests := []struct {
		name    string
		attempt int
		want    time.Duration
	}{
		{"first retry", 0, 1 * time.Minute},
		{"second retry", 1, 2 * time.Minute},
		{"third retry", 2, 4 * time.Minute},
		{"fourth retry", 3, 8 * time.Minute},
		{"fifth retry", 4, 16 * time.Minute},
		{"capped", 5, 30 * time.Minute},
		{"stays capped", 12, 30 * time.Minute},
		{"negative treated as zero", -3, 1 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := p.Bounds(tt.attempt)
			assert.Equal(t, time.Duration(float64(tt.want)*0.9), lo)
			assert.Equal(t, time.Duration(float64(tt.want)*1.1), hi)

			for i := 0; i < 50; i++ {
				d := p.Delay(tt.attempt)
				assert.GreaterOrEqual(t, d, lo)
				assert.LessOrEqual(t, d, hi)
			}
		})
	}
}

func TestNextRetryAt(t *testing.T) {
	p := backoff.NewPolicy(time.Minute, 30*time.Minute)
	now := time.Date(2025, 6, 1, 22, 0, 0, 0, time.UTC)

	at := p.NextRetryAt(now, 2)
	lo, hi := p.Bounds(2)
	assert.True(t, !at.Before(now.Add(lo)))
	assert.True(t, !at.After(now.Add(hi)))
}

func TestNewPolicyNormalizesDegenerateInputs(t *testing.T) {
	p := backoff.NewPolicy(0, 0)
	assert.Equal(t, time.Minute, p.Base)
	assert.Equal(t, time.Minute, p.Max)

	p = backoff.NewPolicy(2*time.Minute, time.Minute)
	assert.Equal(t, p.Base, p.Max)
}
