//go:build unit

package vip_test

import (
	"testing"
	"time"

	"nightgate/internal/domain/vip"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReservation(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		res, err := vip.NewReservation(uuid.New(), "Jonah Reyes", "jonah@example.com", "Booth 3", 4)
		require.NoError(t, err)

		assert.Equal(t, vip.ReservationConfirmed, res.Status())
		assert.Equal(t, 4, res.GuestLimit())
		assert.Empty(t, res.GuestPasses())
	})

	t.Run("validation", func(t *testing.T) {
		_, err := vip.NewReservation(uuid.New(), "", "jonah@example.com", "Booth 3", 4)
		assert.ErrorIs(t, err, vip.ErrMissingPurchaser)

		_, err = vip.NewReservation(uuid.New(), "Jonah Reyes", "jonah@example.com", "Booth 3", 0)
		assert.ErrorIs(t, err, vip.ErrInvalidGuestCount)
	})
}

func TestAddGuestPass(t *testing.T) {
	res, err := vip.NewReservation(uuid.New(), "Jonah Reyes", "jonah@example.com", "Booth 3", 2)
	require.NoError(t, err)

	first, err := res.AddGuestPass("Guest One")
	require.NoError(t, err)
	second, err := res.AddGuestPass("Guest Two")
	require.NoError(t, err)

	assert.Equal(t, vip.GuestPassIssued, first.Status())
	assert.NotEqual(t, first.Token(), second.Token())
	assert.Equal(t, res.ID(), first.ReservationID())

	_, err = res.AddGuestPass("Guest Three")
	assert.ErrorIs(t, err, vip.ErrGuestLimitReached)
}

func TestGuestPassCheckIn(t *testing.T) {
	res, err := vip.NewReservation(uuid.New(), "Jonah Reyes", "jonah@example.com", "Booth 3", 2)
	require.NoError(t, err)
	pass, err := res.AddGuestPass("Guest One")
	require.NoError(t, err)

	now := time.Date(2025, 6, 1, 23, 0, 0, 0, time.UTC)

	reEntry := pass.CheckIn(now)
	assert.False(t, reEntry)
	assert.Equal(t, vip.GuestPassCheckedIn, pass.Status())
	require.NotNil(t, pass.CheckedInAt())
	assert.Equal(t, now, *pass.CheckedInAt())

	// Every subsequent scan is a re-entry; the original timestamp stands.
	reEntry = pass.CheckIn(now.Add(2 * time.Hour))
	assert.True(t, reEntry)
	assert.Equal(t, now, *pass.CheckedInAt())
}

func TestReservationStatusAllowsReEntry(t *testing.T) {
	tests := []struct {
		status vip.ReservationStatus
		want   bool
	}{
		{vip.ReservationPending, false},
		{vip.ReservationConfirmed, true},
		{vip.ReservationCheckedIn, true},
		{vip.ReservationNoShow, false},
		{vip.ReservationCancelled, false},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.AllowsReEntry())
		})
	}
}
