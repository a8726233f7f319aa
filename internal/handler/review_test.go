package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/journiq/tour-booking-api/internal/httperr"
	"github.com/journiq/tour-booking-api/internal/model"
	"github.com/journiq/tour-booking-api/internal/repository"
)

func completedBooking() *repository.BookingDetail {
	return &repository.BookingDetail{
		Booking: model.Booking{
			ID:          9,
			TourID:      3,
			TravellerID: 5,
			Status:      model.BookingCompleted,
		},
	}
}

func TestReviewEligibility(t *testing.T) {
	assert.NoError(t, reviewEligibility(completedBooking(), 5, 3))
}

func TestReviewEligibilityForbidsOtherTraveller(t *testing.T) {
	var he *httperr.Error
	require.ErrorAs(t, reviewEligibility(completedBooking(), 6, 3), &he)
	assert.Equal(t, http.StatusForbidden, he.Status)
}

func TestReviewEligibilityForbidsOtherTour(t *testing.T) {
	var he *httperr.Error
	require.ErrorAs(t, reviewEligibility(completedBooking(), 5, 4), &he)
	assert.Equal(t, http.StatusForbidden, he.Status)
}

func TestReviewEligibilityUnfinishedBookingConflicts(t *testing.T) {
	for _, status := range []string{
		model.BookingPending, model.BookingConfirmed, model.BookingAccepted,
		model.BookingRejected, model.BookingCancelled,
	} {
		d := completedBooking()
		d.Booking.Status = status
		var he *httperr.Error
		require.ErrorAs(t, reviewEligibility(d, 5, 3), &he, status)
		assert.Equal(t, http.StatusConflict, he.Status, status)
	}
}
