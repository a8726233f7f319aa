package handler

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/journiq/tour-booking-api/internal/httperr"
	"github.com/journiq/tour-booking-api/internal/model"
	"github.com/journiq/tour-booking-api/internal/repository"
)

// GuideTourHandler covers tour management by verified guides:
// publishing, editing, the availability calendar and visibility
// toggling.  Ownership is enforced in the repository layer.
type GuideTourHandler struct {
	DB      *sql.DB
	Tours   *repository.TourRepo
	Avail   *repository.AvailabilityRepo
	Dests   *repository.DestinationRepo
	Reviews *repository.ReviewRepo
}

func NewGuideTourHandler(db *sql.DB, t *repository.TourRepo, a *repository.AvailabilityRepo, d *repository.DestinationRepo, r *repository.ReviewRepo) *GuideTourHandler {
	return &GuideTourHandler{DB: db, Tours: t, Avail: a, Dests: d, Reviews: r}
}

type availabilityReq struct {
	Day   string `json:"day"` // YYYY-MM-DD
	Slots uint32 `json:"slots"`
}

type tourReq struct {
	DestinationID uint64            `json:"destination_id"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	Itinerary     []string          `json:"itinerary"`
	Highlights    []string          `json:"highlights"`
	Included      []string          `json:"included"`
	Excluded      []string          `json:"excluded"`
	MeetingPoint  string            `json:"meeting_point"`
	Category      string            `json:"category"`
	DurationDays  uint32            `json:"duration_days"`
	PriceCents    uint32            `json:"price_cents"`
	Images        []string          `json:"images"`
	Availability  []availabilityReq `json:"availability"`
}

func (req *tourReq) validate() error {
	req.Title = strings.TrimSpace(req.Title)
	// Categories are an exact-value enum; no case folding.
	req.Category = strings.TrimSpace(req.Category)
	switch {
	case req.DestinationID == 0:
		return httperr.Validation("destination_id is required")
	case req.Title == "":
		return httperr.Validation("title is required")
	case !model.ValidCategory(req.Category):
		return httperr.Validation("unknown category")
	case req.DurationDays == 0:
		return httperr.Validation("duration_days must be at least 1")
	case req.PriceCents == 0:
		return httperr.Validation("price_cents must be positive")
	}
	return nil
}

// parseAvailability validates and converts the calendar entries.
// Duplicate days collapse to the last entry, matching the upsert the
// repository performs.
func parseAvailability(entries []availabilityReq) ([]model.AvailabilityEntry, error) {
	out := make([]model.AvailabilityEntry, 0, len(entries))
	seen := make(map[time.Time]int)
	for _, e := range entries {
		day, err := parseDay(e.Day)
		if err != nil {
			return nil, err
		}
		if e.Slots == 0 {
			return nil, httperr.Validation("slots must be positive for day " + e.Day)
		}
		if i, ok := seen[day]; ok {
			out[i].Slots = e.Slots
			continue
		}
		seen[day] = len(out)
		out = append(out, model.AvailabilityEntry{Day: day, Slots: e.Slots})
	}
	return out, nil
}

// CreateTour publishes a new tour with its availability calendar.
func (h *GuideTourHandler) CreateTour(c echo.Context) error {
	var req tourReq
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid body")
	}
	if err := req.validate(); err != nil {
		return err
	}
	entries, err := parseAvailability(req.Availability)
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	uid := currentUser(c)

	dest, err := h.Dests.GetByID(ctx, req.DestinationID)
	if err != nil {
		return repoErr(err, "destination not found")
	}
	if !dest.IsActive {
		return httperr.NotFound("destination not found")
	}

	tour := &model.Tour{
		GuideID:       uid,
		DestinationID: req.DestinationID,
		Title:         req.Title,
		Description:   req.Description,
		Itinerary:     req.Itinerary,
		Highlights:    req.Highlights,
		Included:      req.Included,
		Excluded:      req.Excluded,
		MeetingPoint:  req.MeetingPoint,
		Category:      req.Category,
		DurationDays:  req.DurationDays,
		PriceCents:    req.PriceCents,
		Images:        req.Images,
		IsActive:      true,
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

	if err := h.Tours.CreateTx(ctx, tx, tour); err != nil {
		return httperr.Internal(err)
	}
	if err := h.Avail.ReplaceForTourTx(ctx, tx, tour.ID, entries); err != nil {
		return httperr.Internal(err)
	}
	if err := tx.Commit(); err != nil {
		return httperr.Internal(err)
	}
	committed = true

	return c.JSON(http.StatusCreated, echo.Map{
		"tour":         newTourView(*tour),
		"availability": newAvailabilityViews(entries),
	})
}

// MyTours lists all of the guide's tours including inactive and
// blocked ones.
func (h *GuideTourHandler) MyTours(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	tours, err := h.Tours.ListByGuide(ctx, currentUser(c))
	if err != nil {
		return httperr.Internal(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"tours": newTourViews(tours)})
}

// GetTour returns one of the guide's own tours with its calendar.
func (h *GuideTourHandler) GetTour(c echo.Context) error {
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
	if tour.GuideID != currentUser(c) {
		return httperr.Forbidden("not your tour")
	}
	avail, err := h.Avail.ListForTour(ctx, id)
	if err != nil {
		return httperr.Internal(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"tour":         newTourView(tour),
		"availability": newAvailabilityViews(avail),
	})
}

// UpdateTour edits a tour and, when a calendar is supplied, replaces
// its availability.  Days that already carry bookings keep their
// decremented slot counts only if resubmitted with the same values;
// the calendar is the guide's to manage.
func (h *GuideTourHandler) UpdateTour(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req tourReq
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid body")
	}
	if err := req.validate(); err != nil {
		return err
	}
	entries, err := parseAvailability(req.Availability)
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	uid := currentUser(c)

	dest, err := h.Dests.GetByID(ctx, req.DestinationID)
	if err != nil {
		return repoErr(err, "destination not found")
	}
	if !dest.IsActive {
		return httperr.NotFound("destination not found")
	}

	tour := &model.Tour{
		ID:            id,
		DestinationID: req.DestinationID,
		Title:         req.Title,
		Description:   req.Description,
		Itinerary:     req.Itinerary,
		Highlights:    req.Highlights,
		Included:      req.Included,
		Excluded:      req.Excluded,
		MeetingPoint:  req.MeetingPoint,
		Category:      req.Category,
		DurationDays:  req.DurationDays,
		PriceCents:    req.PriceCents,
		Images:        req.Images,
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

	if err := h.Tours.UpdateTx(ctx, tx, tour, uid); err != nil {
		return repoErr(err, "tour not found")
	}
	if len(entries) > 0 {
		if err := h.Avail.ReplaceForTourTx(ctx, tx, id, entries); err != nil {
			return httperr.Internal(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return httperr.Internal(err)
	}
	committed = true

	updated, err := h.Tours.GetByID(ctx, id)
	if err != nil {
		return httperr.Internal(err)
	}
	return c.JSON(http.StatusOK, newTourView(updated))
}

// DeleteTour soft-deletes one of the guide's tours.
func (h *GuideTourHandler) DeleteTour(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Tours.SoftDelete(ctx, id, currentUser(c)); err != nil {
		return repoErr(err, "tour not found")
	}
	return c.NoContent(http.StatusNoContent)
}

// ToggleActive flips the tour's visibility to travellers.
func (h *GuideTourHandler) ToggleActive(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	active, err := h.Tours.ToggleActive(ctx, id, currentUser(c))
	if err != nil {
		return repoErr(err, "tour not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "is_active": active})
}

// MyReviews lists the reviews left on all of the guide's tours.
func (h *GuideTourHandler) MyReviews(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	rows, err := h.Reviews.ListForGuide(ctx, currentUser(c))
	if err != nil {
		return httperr.Internal(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reviews": newReviewDetailViews(rows)})
}
