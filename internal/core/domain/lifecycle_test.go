package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextStatus_Table(t *testing.T) {
	now := time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		booking Booking
		want    BookingStatus
		changed bool
	}{
		{
			name:    "pending older than 48h expires",
			booking: Booking{Status: BookingPending, CreatedAt: now.Add(-49 * time.Hour)},
			want:    BookingExpired, changed: true,
		},
		{
			name:    "pending exactly 48h stays",
			booking: Booking{Status: BookingPending, CreatedAt: now.Add(-48 * time.Hour)},
			want:    BookingPending,
		},
		{
			name:    "pending 10h stays",
			booking: Booking{Status: BookingPending, CreatedAt: now.Add(-10 * time.Hour)},
			want:    BookingPending,
		},
		{
			name:    "confirmed on start date activates",
			booking: Booking{Status: BookingConfirmed, StartDate: now, EndDate: now.Add(72 * time.Hour)},
			want:    BookingActive, changed: true,
		},
		{
			name:    "confirmed before start stays",
			booking: Booking{Status: BookingConfirmed, StartDate: now.Add(time.Minute), EndDate: now.Add(72 * time.Hour)},
			want:    BookingConfirmed,
		},
		{
			name:    "active on end date stays",
			booking: Booking{Status: BookingActive, StartDate: now.Add(-72 * time.Hour), EndDate: now},
			want:    BookingActive,
		},
		{
			name:    "active after end completes",
			booking: Booking{Status: BookingActive, StartDate: now.Add(-72 * time.Hour), EndDate: now.Add(-time.Second)},
			want:    BookingCompleted, changed: true,
		},
		{
			name:    "no show is manual only",
			booking: Booking{Status: BookingNoShow, CreatedAt: now.Add(-100 * time.Hour), EndDate: now.Add(-time.Hour)},
			want:    BookingNoShow,
		},
		{
			name:    "cancelled is terminal",
			booking: Booking{Status: BookingCancelled, CreatedAt: now.Add(-100 * time.Hour)},
			want:    BookingCancelled,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := NextStatus(&tt.booking, now)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.changed, changed)
		})
	}
}

func TestAdvance_ReachesFixpoint(t *testing.T) {
	now := time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)
	b := Booking{
		Status:    BookingConfirmed,
		StartDate: now.Add(-5 * 24 * time.Hour),
		EndDate:   now.Add(-24 * time.Hour),
	}

	status, changed := Advance(&b, now)
	require.True(t, changed)
	assert.Equal(t, BookingCompleted, status)
	assert.Equal(t, BookingConfirmed, b.Status, "Advance must not mutate its argument")

	b.Status = status
	status, changed = Advance(&b, now)
	assert.False(t, changed)
	assert.Equal(t, BookingCompleted, status)
}

func TestStatusPredicates(t *testing.T) {
	assert.True(t, BookingCompleted.IsTerminal())
	assert.True(t, BookingExpired.IsTerminal())
	assert.False(t, BookingNoShow.IsTerminal())
	assert.False(t, BookingCancelled.BlocksDates())
	assert.True(t, BookingNoShow.BlocksDates())
}

func TestSweepError_Unwrap(t *testing.T) {
	dbErr := errors.New("connection reset")
	sweepErr := &SweepError{Failures: []SweepFailure{
		{BookingID: uuid.New(), From: BookingPending, To: BookingExpired, Err: dbErr},
		{BookingID: uuid.New(), From: BookingActive, To: BookingCompleted, Err: ErrBookingNotFound},
	}}

	var err error = sweepErr
	assert.ErrorIs(t, err, dbErr)
	assert.ErrorIs(t, err, ErrBookingNotFound)
	assert.Contains(t, err.Error(), "failed to update 2 booking(s)")

	var target *SweepError
	require.ErrorAs(t, err, &target)
	assert.Len(t, target.Failures, 2)
}

func TestActiveBookingLastsThroughCheckoutDay(t *testing.T) {
	checkout := time.Date(2025, time.June, 20, 0, 0, 0, 0, time.UTC)
	b := Booking{Status: BookingActive, StartDate: checkout.AddDate(0, 0, -5), EndDate: checkout}

	for _, now := range []time.Time{checkout, checkout.Add(18 * time.Hour), checkout.Add(24*time.Hour - time.Nanosecond)} {
		status, changed := Advance(&b, now)
		assert.False(t, changed, "now=%s", now)
		assert.Equal(t, BookingActive, status)
	}

	status, changed := Advance(&b, checkout.AddDate(0, 0, 1))
	assert.True(t, changed)
	assert.Equal(t, BookingCompleted, status)
}
