//go:build unit

package email_test

import (
	"testing"

	"nightgate/internal/domain/email"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	allowed := map[email.Status][]email.Status{
		email.StatusPending:    {email.StatusProcessing},
		email.StatusProcessing: {email.StatusSent, email.StatusPending, email.StatusFailed},
		email.StatusSent:       {email.StatusDelivered, email.StatusFailed},
		email.StatusDelivered:  {},
		email.StatusFailed:     {},
	}

	all := []email.Status{
		email.StatusPending, email.StatusProcessing, email.StatusSent,
		email.StatusDelivered, email.StatusFailed,
	}

	for from, tos := range allowed {
		ok := map[email.Status]bool{}
		for _, to := range tos {
			ok[to] = true
		}
		for _, to := range all {
			assert.Equal(t, ok[to], from.CanTransition(to), "%s -> %s", from, to)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, email.StatusPending.IsTerminal())
	assert.False(t, email.StatusProcessing.IsTerminal())
	assert.False(t, email.StatusSent.IsTerminal())
	assert.True(t, email.StatusDelivered.IsTerminal())
	assert.True(t, email.StatusFailed.IsTerminal())
}
