package handler

import (
	"database/sql"
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/journiq/tour-booking-api/internal/httperr"
	"github.com/journiq/tour-booking-api/internal/model"
	"github.com/journiq/tour-booking-api/internal/repository"
	"github.com/journiq/tour-booking-api/internal/service"
)

// TravellerHandler covers the traveller side of the booking
// lifecycle: creating requests, listing, cancelling and the
// post-completion experience survey.
type TravellerHandler struct {
	DB       *sql.DB
	Bookings *repository.BookingRepo
	Tours    *repository.TourRepo
	Avail    *repository.AvailabilityRepo
	Reviews  *repository.ReviewRepo
	Notifier *service.Notifier
}

func NewTravellerHandler(db *sql.DB, b *repository.BookingRepo, t *repository.TourRepo, a *repository.AvailabilityRepo, r *repository.ReviewRepo, n *service.Notifier) *TravellerHandler {
	return &TravellerHandler{DB: db, Bookings: b, Tours: t, Avail: a, Reviews: r, Notifier: n}
}

type createBookingReq struct {
	TourID    uint64 `json:"tour_id"`
	Day       string `json:"day"` // YYYY-MM-DD
	NumPeople uint32 `json:"num_people"`
}

// CreateBooking reserves slots on a tour date and opens a pending
// booking.  The ledger decrement, the booking row, the guide's
// notification and the outbox email are one transaction: either the
// whole request exists or none of it does.
func (h *TravellerHandler) CreateBooking(c echo.Context) error {
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid body")
	}
	if req.TourID == 0 {
		return httperr.Validation("tour_id is required")
	}
	if req.NumPeople == 0 {
		return httperr.Validation("num_people must be at least 1")
	}
	day, err := parseDay(req.Day)
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	uid := currentUser(c)

	tour, err := h.Tours.GetByID(ctx, req.TourID)
	if err != nil {
		return repoErr(err, "tour not found")
	}
	if !tour.Bookable() {
		return httperr.NotFound("tour not found")
	}

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return httperr.Internal(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := h.Avail.ReserveTx(ctx, tx, tour.ID, day, req.NumPeople); err != nil {
		return repoErr(err, "no availability on selected date")
	}

	b := &model.Booking{
		TourID:          tour.ID,
		TravellerID:     uid,
		Day:             day,
		NumPeople:       req.NumPeople,
		TotalPriceCents: model.TotalPriceCents(tour.PriceCents, req.NumPeople),
		Status:          model.BookingPending,
	}
	if err := h.Bookings.CreateTx(ctx, tx, b); err != nil {
		return httperr.Internal(err)
	}

	detail, err := h.Bookings.GetDetailTx(ctx, tx, b.ID)
	if err != nil {
		return httperr.Internal(err)
	}
	ev, err := h.Notifier.BookingRequested(ctx, tx, *detail)
	if err != nil {
		return httperr.Internal(err)
	}

	if err := tx.Commit(); err != nil {
		return httperr.Internal(err)
	}
	committed = true
	h.Notifier.Publish(ctx, ev)

	return c.JSON(http.StatusCreated, newBookingDetailView(*detail))
}

// MyBookings lists the caller's bookings, newest first.
func (h *TravellerHandler) MyBookings(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	rows, err := h.Bookings.ListByTraveller(ctx, currentUser(c))
	if err != nil {
		return httperr.Internal(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": newBookingSummaryViews(rows)})
}

// GetBooking returns one of the caller's bookings.
func (h *TravellerHandler) GetBooking(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	d, err := h.Bookings.GetDetail(ctx, id)
	if err != nil {
		return repoErr(err, "booking not found")
	}
	if d.Booking.TravellerID != currentUser(c) || d.Booking.IsDeleted {
		return httperr.NotFound("booking not found")
	}
	return c.JSON(http.StatusOK, newBookingDetailView(*d))
}

// CancelBooking moves one of the caller's bookings to cancelled and
// releases the reserved slots back to the ledger.  The booking row is
// locked for the duration so a concurrent guide response cannot
// interleave.
func (h *TravellerHandler) CancelBooking(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	uid := currentUser(c)

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return httperr.Internal(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	d, err := h.Bookings.GetDetailTx(ctx, tx, id)
	if err != nil {
		return repoErr(err, "booking not found")
	}
	if d.Booking.TravellerID != uid || d.Booking.IsDeleted {
		return httperr.NotFound("booking not found")
	}
	if !model.CanTransition(d.Booking.Status, model.BookingCancelled) {
		return httperr.Conflict("booking cannot be cancelled from status " + d.Booking.Status)
	}

	if err := h.Avail.ReleaseTx(ctx, tx, d.Booking.TourID, d.Booking.Day, d.Booking.NumPeople); err != nil {
		return httperr.Internal(err)
	}
	if err := h.Bookings.UpdateStatusTx(ctx, tx, id, model.BookingCancelled); err != nil {
		return httperr.Internal(err)
	}
	ev, err := h.Notifier.BookingStatusChanged(ctx, tx, *d, model.BookingCancelled, uid)
	if err != nil {
		return httperr.Internal(err)
	}

	if err := tx.Commit(); err != nil {
		return httperr.Internal(err)
	}
	committed = true
	h.Notifier.Publish(ctx, ev)

	d.Booking.Status = model.BookingCancelled
	return c.JSON(http.StatusOK, newBookingDetailView(*d))
}

type experienceReq struct {
	ServiceQuality     uint8  `json:"service_quality"`
	Punctuality        uint8  `json:"punctuality"`
	SatisfactionSurvey uint8  `json:"satisfaction_survey"`
	Comment            string `json:"comment"`
}

// SubmitExperience records the post-tour survey on a completed
// booking.  The three scores average into a review of the tour; if
// the traveller already reviewed it the survey is stored without a
// second review.
func (h *TravellerHandler) SubmitExperience(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req experienceReq
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid body")
	}
	exp := model.Experience{
		ServiceQuality:     req.ServiceQuality,
		Punctuality:        req.Punctuality,
		SatisfactionSurvey: req.SatisfactionSurvey,
	}
	if !exp.Valid() {
		return httperr.Validation("each score must be between 1 and 5")
	}
	if len(req.Comment) > model.MaxCommentLen {
		return httperr.Validation("comment is too long")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	uid := currentUser(c)

	d, err := h.Bookings.GetDetail(ctx, id)
	if err != nil {
		return repoErr(err, "booking not found")
	}
	if d.Booking.TravellerID != uid || d.Booking.IsDeleted {
		return httperr.NotFound("booking not found")
	}
	if d.Booking.Status != model.BookingCompleted {
		return httperr.Conflict("experience can only be submitted for completed bookings")
	}
	if d.Booking.Experience != nil {
		return httperr.Conflict("experience already submitted")
	}

	if err := h.Bookings.SetExperience(ctx, id, exp); err != nil {
		return httperr.Internal(err)
	}
	d.Booking.Experience = &exp

	rev := &model.Review{
		TourID:    d.Booking.TourID,
		UserID:    uid,
		BookingID: id,
		Rating:    exp.Rating(),
		Comment:   req.Comment,
	}
	switch err := h.Reviews.Create(ctx, rev); {
	case err == nil:
		if err := h.Tours.RecomputeRating(ctx, d.Booking.TourID); err != nil {
			log.Printf("traveller: recompute rating for tour %d failed: %v", d.Booking.TourID, err)
		}
		return c.JSON(http.StatusCreated, echo.Map{
			"booking": newBookingDetailView(*d),
			"review":  newReviewView(*rev),
		})
	case errors.Is(err, repository.ErrDuplicateReview):
		// Survey saved; the tour already has this traveller's review.
		return c.JSON(http.StatusOK, echo.Map{"booking": newBookingDetailView(*d)})
	default:
		return httperr.Internal(err)
	}
}

// DeleteBooking soft-deletes a finished booking.  Allowed for the
// traveller who made it, the guide whose tour it is on, and admins.
// Active bookings must be cancelled first.
func (h *TravellerHandler) DeleteBooking(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	d, err := h.Bookings.GetDetail(ctx, id)
	if err != nil {
		return repoErr(err, "booking not found")
	}
	uid := currentUser(c)
	allowed := d.Booking.TravellerID == uid || d.GuideID == uid || currentRole(c) == model.RoleAdmin
	if !allowed || d.Booking.IsDeleted {
		return httperr.NotFound("booking not found")
	}
	if !model.TerminalBookingStatus(d.Booking.Status) {
		return httperr.Conflict("only finished bookings can be removed")
	}
	if err := h.Bookings.SoftDelete(ctx, id); err != nil {
		return repoErr(err, "booking not found")
	}
	return c.NoContent(http.StatusNoContent)
}
