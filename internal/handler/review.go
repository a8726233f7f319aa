package handler

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/journiq/tour-booking-api/internal/httperr"
	"github.com/journiq/tour-booking-api/internal/model"
	"github.com/journiq/tour-booking-api/internal/repository"
)

// ReviewHandler lets travellers rate tours they have completed.  Each
// mutation re-derives the tour's aggregate rating, so the catalogue
// value is always consistent with the surviving reviews.
type ReviewHandler struct {
	Reviews  *repository.ReviewRepo
	Bookings *repository.BookingRepo
	Tours    *repository.TourRepo
}

func NewReviewHandler(r *repository.ReviewRepo, b *repository.BookingRepo, t *repository.TourRepo) *ReviewHandler {
	return &ReviewHandler{Reviews: r, Bookings: b, Tours: t}
}

type createReviewReq struct {
	BookingID uint64  `json:"booking_id"`
	Rating    float64 `json:"rating"`
	Comment   string  `json:"comment"`
}

// CreateReview posts a review for the tour in the path.  The caller
// must have a completed booking on it; booking_id in the body pins the
// review to a specific booking, otherwise the latest completed one is
// used.  One review per traveller per tour.
func (h *ReviewHandler) CreateReview(c echo.Context) error {
	tourID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req createReviewReq
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid body")
	}
	if !model.ValidRating(req.Rating) {
		return httperr.Validation("rating must be between 1 and 5")
	}
	if len(req.Comment) > model.MaxCommentLen {
		return httperr.Validation("comment is too long")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	uid := currentUser(c)

	bookingID := req.BookingID
	if bookingID != 0 {
		d, err := h.Bookings.GetDetail(ctx, bookingID)
		if err != nil {
			return repoErr(err, "booking not found")
		}
		if err := reviewEligibility(d, uid, tourID); err != nil {
			return err
		}
	} else {
		bookingID, err = h.Bookings.CompletedBookingID(ctx, uid, tourID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return httperr.Forbidden("only travellers with a completed booking can review this tour")
			}
			return httperr.Internal(err)
		}
	}

	rev := &model.Review{
		TourID:    tourID,
		UserID:    uid,
		BookingID: bookingID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := h.Reviews.Create(ctx, rev); err != nil {
		return repoErr(err, "tour not found")
	}
	h.recompute(ctx, tourID)

	return c.JSON(http.StatusCreated, newReviewView(*rev))
}

// reviewEligibility checks that a booking entitles the caller to
// review the tour.  Ownership and tour mismatches are forbidden; a
// booking in the wrong state is a conflict, since completing it later
// makes the same request legal.
func reviewEligibility(d *repository.BookingDetail, uid, tourID uint64) error {
	if d.Booking.TravellerID != uid || d.Booking.TourID != tourID {
		return httperr.Forbidden("only travellers with a completed booking can review this tour")
	}
	if d.Booking.Status != model.BookingCompleted {
		return httperr.Conflict("booking is not completed yet")
	}
	return nil
}

type updateReviewReq struct {
	Rating  float64 `json:"rating"`
	Comment string  `json:"comment"`
}

// UpdateReview edits the caller's own review.
func (h *ReviewHandler) UpdateReview(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req updateReviewReq
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid body")
	}
	if !model.ValidRating(req.Rating) {
		return httperr.Validation("rating must be between 1 and 5")
	}
	if len(req.Comment) > model.MaxCommentLen {
		return httperr.Validation("comment is too long")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	tourID, err := h.Reviews.Update(ctx, id, currentUser(c), req.Rating, req.Comment)
	if err != nil {
		return repoErr(err, "review not found")
	}
	h.recompute(ctx, tourID)

	rev, err := h.Reviews.GetByID(ctx, id)
	if err != nil {
		return repoErr(err, "review not found")
	}
	return c.JSON(http.StatusOK, newReviewView(rev))
}

// DeleteReview soft-deletes the caller's own review.
func (h *ReviewHandler) DeleteReview(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	tourID, err := h.Reviews.SoftDelete(ctx, id, currentUser(c), false)
	if err != nil {
		return repoErr(err, "review not found")
	}
	h.recompute(ctx, tourID)
	return c.NoContent(http.StatusNoContent)
}

// MyReviews lists the caller's reviews.
func (h *ReviewHandler) MyReviews(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	rows, err := h.Reviews.ListForAuthor(ctx, currentUser(c))
	if err != nil {
		return httperr.Internal(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reviews": newReviewDetailViews(rows)})
}

func (h *ReviewHandler) recompute(ctx context.Context, tourID uint64) {
	if err := h.Tours.RecomputeRating(ctx, tourID); err != nil {
		log.Printf("review: recompute rating for tour %d failed: %v", tourID, err)
	}
}
