package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{BookingPending, BookingConfirmed, true},
		{BookingPending, BookingAccepted, true},
		{BookingPending, BookingRejected, true},
		{BookingPending, BookingCancelled, true},
		{BookingPending, BookingCompleted, false},
		{BookingConfirmed, BookingCompleted, true},
		{BookingConfirmed, BookingCancelled, true},
		{BookingConfirmed, BookingRejected, false},
		{BookingAccepted, BookingCompleted, true},
		{BookingAccepted, BookingCancelled, true},
		{BookingAccepted, BookingConfirmed, false},
		{BookingRejected, BookingPending, false},
		{BookingCancelled, BookingConfirmed, false},
		{BookingCompleted, BookingCancelled, false},
		{"bogus", BookingConfirmed, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTerminalBookingStatus(t *testing.T) {
	assert.True(t, TerminalBookingStatus(BookingRejected))
	assert.True(t, TerminalBookingStatus(BookingCancelled))
	assert.True(t, TerminalBookingStatus(BookingCompleted))

	assert.False(t, TerminalBookingStatus(BookingPending))
	assert.False(t, TerminalBookingStatus(BookingConfirmed))
	assert.False(t, TerminalBookingStatus(BookingAccepted))
	assert.False(t, TerminalBookingStatus("bogus"))
}

func TestExperienceValid(t *testing.T) {
	assert.True(t, Experience{ServiceQuality: 1, Punctuality: 5, SatisfactionSurvey: 3}.Valid())
	assert.False(t, Experience{ServiceQuality: 0, Punctuality: 5, SatisfactionSurvey: 3}.Valid())
	assert.False(t, Experience{ServiceQuality: 1, Punctuality: 6, SatisfactionSurvey: 3}.Valid())
	assert.False(t, Experience{}.Valid())
}

func TestExperienceRating(t *testing.T) {
	assert.Equal(t, 5.0, Experience{ServiceQuality: 5, Punctuality: 5, SatisfactionSurvey: 5}.Rating())
	assert.Equal(t, 4.3, Experience{ServiceQuality: 5, Punctuality: 4, SatisfactionSurvey: 4}.Rating())
	assert.Equal(t, 3.7, Experience{ServiceQuality: 4, Punctuality: 4, SatisfactionSurvey: 3}.Rating())
	assert.Equal(t, 1.0, Experience{ServiceQuality: 1, Punctuality: 1, SatisfactionSurvey: 1}.Rating())
}

func TestTotalPriceCents(t *testing.T) {
	assert.Equal(t, uint64(25000), TotalPriceCents(12500, 2))
	assert.Equal(t, uint64(0), TotalPriceCents(12500, 0))
	// party size times a large price must not wrap around.
	assert.Equal(t, uint64(4294967295)*4, TotalPriceCents(4294967295, 4))
}
