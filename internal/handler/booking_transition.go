package handler

import (
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/journiq/tour-booking-api/internal/httperr"
	"github.com/journiq/tour-booking-api/internal/model"
	"github.com/journiq/tour-booking-api/internal/repository"
	"github.com/journiq/tour-booking-api/internal/service"
)

// transitionBooking applies a status change under a row lock: the
// transition is validated against the state machine, rejected or
// cancelled bookings hand their slots back to the ledger, and the
// other party is notified in the same transaction.  When mustOwnGuide
// is non-zero the booking must belong to that guide's tour; zero skips
// the check for admin moderation.
func transitionBooking(c echo.Context, db *sql.DB, bookings *repository.BookingRepo, avail *repository.AvailabilityRepo, notifier *service.Notifier, id uint64, status string, mustOwnGuide uint64) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	actor := currentUser(c)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return httperr.Internal(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	d, err := bookings.GetDetailTx(ctx, tx, id)
	if err != nil {
		return repoErr(err, "booking not found")
	}
	if mustOwnGuide != 0 && d.GuideID != mustOwnGuide {
		return httperr.NotFound("booking not found")
	}
	if d.Booking.IsDeleted {
		return httperr.NotFound("booking not found")
	}
	if !model.CanTransition(d.Booking.Status, status) {
		return httperr.Conflict("cannot move booking from " + d.Booking.Status + " to " + status)
	}

	if status == model.BookingRejected || status == model.BookingCancelled {
		if err := avail.ReleaseTx(ctx, tx, d.Booking.TourID, d.Booking.Day, d.Booking.NumPeople); err != nil {
			return httperr.Internal(err)
		}
	}
	if err := bookings.UpdateStatusTx(ctx, tx, id, status); err != nil {
		return httperr.Internal(err)
	}
	ev, err := notifier.BookingStatusChanged(ctx, tx, *d, status, actor)
	if err != nil {
		return httperr.Internal(err)
	}

	if err := tx.Commit(); err != nil {
		return httperr.Internal(err)
	}
	committed = true
	notifier.Publish(ctx, ev)

	d.Booking.Status = status
	return c.JSON(http.StatusOK, newBookingDetailView(*d))
}
