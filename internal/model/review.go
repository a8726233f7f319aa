package model

import "time"

// Review is a traveller's rating of a tour, tied to the completed
// booking that entitles them to review.  At most one non-deleted
// review may exist per (user, tour) pair; bookings.booking_id is
// unique so a booking yields at most one review.  Ratings may be
// fractional because experience surveys average three scores.
//
// Fields:
//  ID        – primary key identifier.
//  TourID    – reviewed tour.
//  UserID    – review author (the booking traveller).
//  BookingID – completed booking the review is based on.
//  Rating    – score in [1,5], one decimal place.
//  Comment   – optional free-form text, up to 1000 characters.
//  IsDeleted – soft-delete flag.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Review struct {
	ID        uint64    // reviews.id
	TourID    uint64    // reviews.tour_id
	UserID    uint64    // reviews.user_id
	BookingID uint64    // reviews.booking_id
	Rating    float64   // reviews.rating
	Comment   string    // reviews.comment
	IsDeleted bool      // reviews.is_deleted
	CreatedAt time.Time // reviews.created_at
	UpdatedAt time.Time // reviews.updated_at
}

// ValidRating reports whether a rating lies in [1,5].
func ValidRating(r float64) bool {
	return r >= 1 && r <= 5
}

const MaxCommentLen = 1000
