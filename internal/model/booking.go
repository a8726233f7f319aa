package model

import "math"
import "time"

// Booking statuses stored in bookings.status.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingAccepted  = "accepted"
	BookingRejected  = "rejected"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
)

// bookingTransitions is the authoritative state machine for booking
// status changes.  Completed, rejected and cancelled are terminal.
var bookingTransitions = map[string][]string{
	BookingPending:   {BookingConfirmed, BookingAccepted, BookingRejected, BookingCancelled},
	BookingConfirmed: {BookingCompleted, BookingCancelled},
	BookingAccepted:  {BookingCompleted, BookingCancelled},
}

// CanTransition reports whether a booking may move from one status to
// another.  Every status-changing operation must consult this before
// persisting; an illegal transition is a conflict, not a validation
// error, because both states are individually valid.
func CanTransition(from, to string) bool {
	for _, s := range bookingTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ValidBookingStatus reports whether the string is a known status.
func ValidBookingStatus(s string) bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingAccepted,
		BookingRejected, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

// TerminalBookingStatus reports whether the status permits no further
// transitions.
func TerminalBookingStatus(s string) bool {
	return len(bookingTransitions[s]) == 0 && ValidBookingStatus(s)
}

// Experience is the optional post-completion survey a traveller
// attaches to a booking.  Each score is in [1,5].
type Experience struct {
	ServiceQuality     uint8 // bookings.service_quality
	Punctuality        uint8 // bookings.punctuality
	SatisfactionSurvey uint8 // bookings.satisfaction_survey
}

// Valid reports whether every score is within [1,5].
func (e Experience) Valid() bool {
	for _, s := range []uint8{e.ServiceQuality, e.Punctuality, e.SatisfactionSurvey} {
		if s < 1 || s > 5 {
			return false
		}
	}
	return true
}

// Rating averages the three survey scores into a review rating,
// rounded to one decimal place.
func (e Experience) Rating() float64 {
	mean := (float64(e.ServiceQuality) + float64(e.Punctuality) + float64(e.SatisfactionSurvey)) / 3
	return math.Round(mean*10) / 10
}

// TotalPriceCents computes the immutable booking total from the
// tour's per-person price.  It is fixed at creation time; later price
// changes on the tour do not affect existing bookings.
func TotalPriceCents(priceCents uint32, numPeople uint32) uint64 {
	return uint64(priceCents) * uint64(numPeople)
}

// Booking records a traveller's reservation of slots on a tour date.
//
// Fields:
//  ID              – primary key identifier.
//  TourID          – tour being booked.
//  TravellerID     – user who made the booking.
//  Day             – booked date (date only, UTC).
//  NumPeople       – party size; the ledger is decremented by this much.
//  TotalPriceCents – tour price × party size, fixed at creation.
//  Status          – current lifecycle state, see bookingTransitions.
//  Experience      – optional post-completion survey (nil until set).
//  IsDeleted       – soft-delete flag; the row stays for audit.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Booking struct {
	ID              uint64      // bookings.id
	TourID          uint64      // bookings.tour_id
	TravellerID     uint64      // bookings.traveller_id
	Day             time.Time   // bookings.day
	NumPeople       uint32      // bookings.num_people
	TotalPriceCents uint64      // bookings.total_price_cents
	Status          string      // bookings.status
	Experience      *Experience // bookings.service_quality/punctuality/satisfaction_survey
	IsDeleted       bool        // bookings.is_deleted
	CreatedAt       time.Time   // bookings.created_at
	UpdatedAt       time.Time   // bookings.updated_at
}
