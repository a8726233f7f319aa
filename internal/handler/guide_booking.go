package handler

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/journiq/tour-booking-api/internal/httperr"
	"github.com/journiq/tour-booking-api/internal/model"
	"github.com/journiq/tour-booking-api/internal/repository"
	"github.com/journiq/tour-booking-api/internal/service"
)

// GuideBookingHandler lets guides view and respond to booking
// requests against their tours.
type GuideBookingHandler struct {
	DB       *sql.DB
	Bookings *repository.BookingRepo
	Avail    *repository.AvailabilityRepo
	Notifier *service.Notifier
}

func NewGuideBookingHandler(db *sql.DB, b *repository.BookingRepo, a *repository.AvailabilityRepo, n *service.Notifier) *GuideBookingHandler {
	return &GuideBookingHandler{DB: db, Bookings: b, Avail: a, Notifier: n}
}

// ListBookings returns every booking against the guide's tours.
func (h *GuideBookingHandler) ListBookings(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	rows, err := h.Bookings.ListByGuide(ctx, currentUser(c))
	if err != nil {
		return httperr.Internal(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": newBookingSummaryViews(rows)})
}

// GetBooking returns one booking on a tour the guide owns.
func (h *GuideBookingHandler) GetBooking(c echo.Context) error {
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
	if d.GuideID != currentUser(c) {
		return httperr.NotFound("booking not found")
	}
	return c.JSON(http.StatusOK, newBookingDetailView(*d))
}

type statusReq struct {
	Status string `json:"status"`
}

// Respond answers a pending booking request: accepted or rejected.
// Rejecting releases the reserved slots back to the ledger; the
// traveller is notified either way.
func (h *GuideBookingHandler) Respond(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid body")
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if status != model.BookingAccepted && status != model.BookingRejected {
		return httperr.Validation("status must be accepted or rejected")
	}
	return transitionBooking(c, h.DB, h.Bookings, h.Avail, h.Notifier, id, status, currentUser(c))
}

// UpdateStatus moves a booking through its lifecycle on behalf of the
// guide: confirm, accept, reject, complete or cancel.  The row is
// locked while the transition is validated, so two concurrent
// responses cannot both apply.
func (h *GuideBookingHandler) UpdateStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid body")
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if !model.ValidBookingStatus(status) || status == model.BookingPending {
		return httperr.Validation("unknown status")
	}
	return transitionBooking(c, h.DB, h.Bookings, h.Avail, h.Notifier, id, status, currentUser(c))
}
