package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/journiq/tour-booking-api/internal/model"
	"github.com/journiq/tour-booking-api/internal/repository"
)

func sampleDetail() repository.BookingDetail {
	return repository.BookingDetail{
		Booking: model.Booking{
			ID:          9,
			Day:         time.Date(2026, 7, 19, 0, 0, 0, 0, time.UTC),
			NumPeople:   3,
			TravellerID: 5,
		},
		TourTitle:     "Old Town Walk",
		GuideID:       2,
		TravellerName: "Noor",
	}
}

func TestStatusNotifType(t *testing.T) {
	assert.Equal(t, model.NotifBookingConfirmed, statusNotifType(model.BookingConfirmed))
	assert.Equal(t, model.NotifBookingAccepted, statusNotifType(model.BookingAccepted))
	assert.Equal(t, model.NotifBookingRejected, statusNotifType(model.BookingRejected))
	assert.Equal(t, model.NotifBookingCancelled, statusNotifType(model.BookingCancelled))
	assert.Equal(t, model.NotifBookingCompleted, statusNotifType(model.BookingCompleted))
	assert.Equal(t, model.NotifCustom, statusNotifType("other"))
}

func TestStatusMessageToTraveller(t *testing.T) {
	d := sampleDetail()
	msg := statusMessage(d, model.BookingConfirmed, false)
	assert.Equal(t, `Your booking of "Old Town Walk" on 2026-07-19 has been confirmed.`, msg)

	msg = statusMessage(d, model.BookingRejected, false)
	assert.Contains(t, msg, "rejected")
	assert.Contains(t, msg, "released")

	msg = statusMessage(d, model.BookingCompleted, false)
	assert.Contains(t, msg, "leave a review")
}

func TestStatusMessageToGuide(t *testing.T) {
	msg := statusMessage(sampleDetail(), model.BookingCancelled, true)
	assert.Equal(t, `Noor cancelled their booking of "Old Town Walk" on 2026-07-19.`, msg)
}

func TestBookingPayload(t *testing.T) {
	p := bookingPayload("Noor", "hello", sampleDetail())
	assert.Equal(t, "Noor", p["name"])
	assert.Equal(t, "hello", p["message"])
	assert.Equal(t, "Old Town Walk", p["tour_title"])
	assert.Equal(t, "2026-07-19", p["day"])
	assert.Equal(t, uint32(3), p["num_people"])
}
