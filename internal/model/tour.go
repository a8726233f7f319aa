package model

import "time"

// Tour categories accepted by tours.category.
var TourCategories = []string{
	"Adventure",
	"Cultural",
	"Nature",
	"Food & Drink",
	"Wildlife",
	"Historical",
	"Beach",
	"Urban",
	"Religious",
	"Others",
}

// ValidCategory reports whether the category is one of TourCategories.
func ValidCategory(c string) bool {
	for _, v := range TourCategories {
		if v == c {
			return true
		}
	}
	return false
}

// Tour represents a bookable tour published by a guide against a
// destination.  Prices are stored in cents.  The rating and
// ratings_count columns are derived values maintained by the rating
// aggregator whenever a review changes; they are never written by
// handlers directly.
//
// Fields:
//  ID            – primary key identifier.
//  GuideID       – user ID of the owning guide.
//  DestinationID – destination the tour belongs to.
//  Title         – tour title.
//  Description   – free-form description.
//  Itinerary     – ordered day-by-day plan (JSON).
//  Highlights    – marketing highlights (JSON).
//  Included      – what the price covers (JSON).
//  Excluded      – what the price does not cover (JSON).
//  MeetingPoint  – where the tour starts.
//  Category      – one of TourCategories.
//  DurationDays  – tour length in days.
//  PriceCents    – price per person in cents.
//  Rating        – derived mean review rating, one decimal place.
//  RatingsCount  – derived count of non-deleted reviews.
//  Images        – image path strings (JSON).
//  IsActive      – guide visibility toggle.
//  IsBlocked     – admin moderation toggle.
//  IsDeleted     – soft-delete flag.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Tour struct {
	ID            uint64    // tours.id
	GuideID       uint64    // tours.guide_id
	DestinationID uint64    // tours.destination_id
	Title         string    // tours.title
	Description   string    // tours.description
	Itinerary     []string  // tours.itinerary (JSON)
	Highlights    []string  // tours.highlights (JSON)
	Included      []string  // tours.included (JSON)
	Excluded      []string  // tours.excluded (JSON)
	MeetingPoint  string    // tours.meeting_point
	Category      string    // tours.category
	DurationDays  uint32    // tours.duration_days
	PriceCents    uint32    // tours.price_cents
	Rating        float64   // tours.rating (derived)
	RatingsCount  uint32    // tours.ratings_count (derived)
	Images        []string  // tours.images (JSON)
	IsActive      bool      // tours.is_active
	IsBlocked     bool      // tours.is_blocked
	IsDeleted     bool      // tours.is_deleted
	CreatedAt     time.Time // tours.created_at
	UpdatedAt     time.Time // tours.updated_at
}

// Bookable reports whether travellers may create bookings against the
// tour: it must be active, not blocked by an admin and not deleted.
func (t *Tour) Bookable() bool {
	return t.IsActive && !t.IsBlocked && !t.IsDeleted
}

// AvailabilityEntry is one (day, remaining slots) pair of a tour's
// availability ledger, stored as a row in `tour_availability` with a
// unique (tour_id, day) key.  The slots counter never goes below
// zero: reservations decrement it through a conditional update.
type AvailabilityEntry struct {
	ID     uint64    // tour_availability.id
	TourID uint64    // tour_availability.tour_id
	Day    time.Time // tour_availability.day (date only, UTC)
	Slots  uint32    // tour_availability.slots
}
