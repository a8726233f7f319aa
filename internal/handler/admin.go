package handler

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/journiq/tour-booking-api/internal/httperr"
	"github.com/journiq/tour-booking-api/internal/model"
	"github.com/journiq/tour-booking-api/internal/queue"
	"github.com/journiq/tour-booking-api/internal/repository"
	"github.com/journiq/tour-booking-api/internal/service"
)

// AdminHandler covers moderation and platform management: user
// blocking, guide verification, the destination catalogue, tour
// blocking, oversight of bookings and reviews, the support inbox and
// the stats dashboard.
type AdminHandler struct {
	DB       *sql.DB
	Users    *repository.UserRepo
	Tours    *repository.TourRepo
	Bookings *repository.BookingRepo
	Reviews  *repository.ReviewRepo
	Messages *repository.MessageRepo
	Dests    *repository.DestinationRepo
	Avail    *repository.AvailabilityRepo
	Notifier *service.Notifier
}

func NewAdminHandler(db *sql.DB, u *repository.UserRepo, t *repository.TourRepo, b *repository.BookingRepo, r *repository.ReviewRepo, m *repository.MessageRepo, d *repository.DestinationRepo, a *repository.AvailabilityRepo, n *service.Notifier) *AdminHandler {
	return &AdminHandler{DB: db, Users: u, Tours: t, Bookings: b, Reviews: r, Messages: m, Dests: d, Avail: a, Notifier: n}
}

// notifyAfter queues a notification in its own small transaction.
// The caller's state change has already been committed, so failures
// here are logged and swallowed rather than turned into a 500 for an
// operation that actually succeeded.
func (h *AdminHandler) notifyAfter(c echo.Context, fn func(ctx context.Context, tx *sql.Tx) (*queue.EmailQueuedEvent, error)) {
	ctx, cancel := reqCtx(c)
	defer cancel()

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Printf("admin: notification tx failed: %v", err)
		return
	}
	ev, err := fn(ctx, tx)
	if err != nil {
		_ = tx.Rollback()
		log.Printf("admin: queue notification failed: %v", err)
		return
	}
	if err := tx.Commit(); err != nil {
		log.Printf("admin: notification commit failed: %v", err)
		return
	}
	h.Notifier.Publish(ctx, ev)
}

// ----- users -----

// ListUsers returns all accounts, or only blocked ones with
// ?blocked=1.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	var (
		users []model.User
		err   error
	)
	if c.QueryParam("blocked") == "1" || c.QueryParam("blocked") == "true" {
		users, err = h.Users.ListBlocked(ctx)
	} else {
		users, err = h.Users.List(ctx)
	}
	if err != nil {
		return httperr.Internal(err)
	}
	out := make([]userView, 0, len(users))
	for _, u := range users {
		out = append(out, newUserView(u))
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out})
}

// ListBlockedUsers returns only blocked accounts.
func (h *AdminHandler) ListBlockedUsers(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	users, err := h.Users.ListBlocked(ctx)
	if err != nil {
		return httperr.Internal(err)
	}
	out := make([]userView, 0, len(users))
	for _, u := range users {
		out = append(out, newUserView(u))
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out})
}

// GetUser returns one account.
func (h *AdminHandler) GetUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return repoErr(err, "user not found")
	}
	return c.JSON(http.StatusOK, newUserView(u))
}

// ToggleBlockUser flips an account's blocked flag.  Admins cannot
// block each other.
func (h *AdminHandler) ToggleBlockUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return repoErr(err, "user not found")
	}
	if u.Role == model.RoleAdmin {
		return httperr.Forbidden("admin accounts cannot be blocked")
	}
	blocked, err := h.Users.ToggleBlock(ctx, id)
	if err != nil {
		return repoErr(err, "user not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "is_blocked": blocked})
}

// VerifyGuide marks a guide account as verified and notifies the
// guide in-app and by email.
func (h *AdminHandler) VerifyGuide(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return repoErr(err, "guide not found")
	}
	if u.Role != model.RoleGuide {
		return httperr.Conflict("user is not a guide")
	}
	if u.IsVerified {
		return httperr.Conflict("guide is already verified")
	}
	if err := h.Users.VerifyGuide(ctx, id); err != nil {
		return repoErr(err, "guide not found")
	}

	h.notifyAfter(c, func(ctx context.Context, tx *sql.Tx) (*queue.EmailQueuedEvent, error) {
		return h.Notifier.GuideVerified(ctx, tx, id, u.Name, u.Email, currentUser(c))
	})

	return c.JSON(http.StatusOK, echo.Map{"id": id, "is_verified": true})
}

type notifyReq struct {
	Message string `json:"message"`
}

// NotifyUser sends an admin-authored notification and email to any
// user.
func (h *AdminHandler) NotifyUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req notifyReq
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid body")
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		return httperr.Validation("message is required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return repoErr(err, "user not found")
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
	ev, err := h.Notifier.Custom(ctx, tx, u.ID, u.Name, u.Email, currentUser(c), req.Message)
	if err != nil {
		return httperr.Internal(err)
	}
	if err := tx.Commit(); err != nil {
		return httperr.Internal(err)
	}
	committed = true
	h.Notifier.Publish(ctx, ev)

	return c.NoContent(http.StatusNoContent)
}

// ----- destinations -----

type destinationReq struct {
	Name        string   `json:"name"`
	Country     string   `json:"country"`
	City        *string  `json:"city"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	Attractions []string `json:"attractions"`
	BestSeason  *string  `json:"best_season"`
	Tags        []string `json:"tags"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
}

func (req *destinationReq) validate() error {
	req.Name = strings.TrimSpace(req.Name)
	req.Country = strings.TrimSpace(req.Country)
	if req.Name == "" || req.Country == "" {
		return httperr.Validation("name and country are required")
	}
	return nil
}

// CreateDestination adds a destination to the catalogue.
func (h *AdminHandler) CreateDestination(c echo.Context) error {
	var req destinationReq
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid body")
	}
	if err := req.validate(); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	d := &model.Destination{
		AdminID: currentUser(c), Name: req.Name, Country: req.Country, City: req.City,
		Description: req.Description, Images: req.Images, Attractions: req.Attractions,
		BestSeason: req.BestSeason, Tags: req.Tags, Lat: req.Lat, Lng: req.Lng,
		IsActive: true,
	}
	if err := h.Dests.Create(ctx, d); err != nil {
		return httperr.Internal(err)
	}
	created, err := h.Dests.GetByID(ctx, d.ID)
	if err != nil {
		return httperr.Internal(err)
	}
	return c.JSON(http.StatusCreated, newDestinationView(created))
}

// ListDestinations returns the whole catalogue including disabled
// destinations.
func (h *AdminHandler) ListDestinations(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	dests, err := h.Dests.List(ctx, false)
	if err != nil {
		return httperr.Internal(err)
	}
	out := make([]destinationView, 0, len(dests))
	for _, d := range dests {
		out = append(out, newDestinationView(d))
	}
	return c.JSON(http.StatusOK, echo.Map{"destinations": out})
}

// UpdateDestination rewrites a destination's editable fields.
func (h *AdminHandler) UpdateDestination(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req destinationReq
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid body")
	}
	if err := req.validate(); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	d := &model.Destination{
		ID: id, Name: req.Name, Country: req.Country, City: req.City,
		Description: req.Description, Images: req.Images, Attractions: req.Attractions,
		BestSeason: req.BestSeason, Tags: req.Tags, Lat: req.Lat, Lng: req.Lng,
	}
	if err := h.Dests.Update(ctx, d); err != nil {
		return repoErr(err, "destination not found")
	}
	updated, err := h.Dests.GetByID(ctx, id)
	if err != nil {
		return repoErr(err, "destination not found")
	}
	return c.JSON(http.StatusOK, newDestinationView(updated))
}

// DeleteDestination soft-deletes a destination.  Existing tours keep
// their reference for historical bookings.
func (h *AdminHandler) DeleteDestination(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Dests.SoftDelete(ctx, id); err != nil {
		return repoErr(err, "destination not found")
	}
	return c.NoContent(http.StatusNoContent)
}

// ToggleDestination flips a destination's public visibility.
func (h *AdminHandler) ToggleDestination(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	active, err := h.Dests.ToggleActive(ctx, id)
	if err != nil {
		return repoErr(err, "destination not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "is_active": active})
}

// ----- tours -----

// ListTours returns every non-deleted tour for moderation.
func (h *AdminHandler) ListTours(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	tours, err := h.Tours.ListAll(ctx)
	if err != nil {
		return httperr.Internal(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"tours": newTourViews(tours)})
}

// ToggleBlockTour flips a tour's moderation block and notifies the
// owning guide.
func (h *AdminHandler) ToggleBlockTour(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	tour, err := h.Tours.GetByID(ctx, id)
	if err != nil {
		return repoErr(err, "tour not found")
	}
	blocked, guideID, err := h.Tours.ToggleBlock(ctx, id)
	if err != nil {
		return repoErr(err, "tour not found")
	}

	h.notifyAfter(c, func(ctx context.Context, tx *sql.Tx) (*queue.EmailQueuedEvent, error) {
		return nil, h.Notifier.TourBlockToggled(ctx, tx, guideID, id, tour.Title, blocked, currentUser(c))
	})

	return c.JSON(http.StatusOK, echo.Map{"id": id, "is_blocked": blocked})
}

// ----- bookings, reviews, messages -----

// ListBookings returns every booking on the platform.
func (h *AdminHandler) ListBookings(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	rows, err := h.Bookings.ListAll(ctx)
	if err != nil {
		return httperr.Internal(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": newBookingSummaryViews(rows)})
}

// UpdateBookingStatus forces a booking transition on behalf of
// moderation.  The same state machine applies; there is no pending
// guard because an admin resolving a dispute may need any legal move.
func (h *AdminHandler) UpdateBookingStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid body")
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if !model.ValidBookingStatus(status) {
		return httperr.Validation("unknown status")
	}
	return transitionBooking(c, h.DB, h.Bookings, h.Avail, h.Notifier, id, status, 0)
}

// ListReviews returns every review for moderation.
func (h *AdminHandler) ListReviews(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	rows, err := h.Reviews.ListAll(ctx)
	if err != nil {
		return httperr.Internal(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reviews": newReviewDetailViews(rows)})
}

// DeleteReview removes any review and re-derives the tour's rating.
func (h *AdminHandler) DeleteReview(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	tourID, err := h.Reviews.SoftDelete(ctx, id, 0, true)
	if err != nil {
		return repoErr(err, "review not found")
	}
	if err := h.Tours.RecomputeRating(ctx, tourID); err != nil {
		log.Printf("admin: recompute rating for tour %d failed: %v", tourID, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListMessages returns the support inbox.
func (h *AdminHandler) ListMessages(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	rows, err := h.Messages.ListAll(ctx)
	if err != nil {
		return httperr.Internal(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"messages": newMessageViews(rows)})
}

// ReadMessage flags a support message as read.
func (h *AdminHandler) ReadMessage(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Messages.MarkRead(ctx, id); err != nil {
		return repoErr(err, "message not found")
	}
	return c.NoContent(http.StatusNoContent)
}

type replyReq struct {
	Reply string `json:"reply"`
}

// ReplyMessage stores the admin reply and pushes it to the traveller
// as a notification and email.
func (h *AdminHandler) ReplyMessage(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req replyReq
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid body")
	}
	req.Reply = strings.TrimSpace(req.Reply)
	if req.Reply == "" {
		return httperr.Validation("reply is required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	msg, err := h.Messages.Reply(ctx, id, req.Reply)
	if err != nil {
		return repoErr(err, "message not found")
	}
	traveller, err := h.Users.GetByID(ctx, msg.TravellerID)
	if err != nil {
		log.Printf("admin: load reply recipient failed: %v", err)
		return c.JSON(http.StatusOK, newMessageView(msg))
	}

	h.notifyAfter(c, func(ctx context.Context, tx *sql.Tx) (*queue.EmailQueuedEvent, error) {
		return h.Notifier.Custom(ctx, tx, traveller.ID, traveller.Name, traveller.Email, currentUser(c),
			"Re: "+msg.Subject+" - "+req.Reply)
	})

	return c.JSON(http.StatusOK, newMessageView(msg))
}

// ----- dashboard -----

// Stats returns the platform dashboard counters.
func (h *AdminHandler) Stats(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	usersByRole, err := h.Users.CountByRole(ctx)
	if err != nil {
		return httperr.Internal(err)
	}
	tourCount, err := h.Tours.CountPublic(ctx)
	if err != nil {
		return httperr.Internal(err)
	}
	bookingsByStatus, err := h.Bookings.CountByStatus(ctx)
	if err != nil {
		return httperr.Internal(err)
	}
	revenue, err := h.Bookings.RevenueCents(ctx)
	if err != nil {
		return httperr.Internal(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"users_by_role":      usersByRole,
		"published_tours":    tourCount,
		"bookings_by_status": bookingsByStatus,
		"revenue_cents":      revenue,
	})
}
