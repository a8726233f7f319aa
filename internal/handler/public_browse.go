package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/journiq/tour-booking-api/internal/httperr"
	"github.com/journiq/tour-booking-api/internal/model"
	"github.com/journiq/tour-booking-api/internal/repository"
)

// PublicHandler serves the unauthenticated catalogue: destinations,
// published tours, their availability and reviews, and guide profiles.
// Only active, unblocked, non-deleted records are visible here.
type PublicHandler struct {
	Tours   *repository.TourRepo
	Dests   *repository.DestinationRepo
	Reviews *repository.ReviewRepo
	Avail   *repository.AvailabilityRepo
	Users   *repository.UserRepo
}

func NewPublicHandler(t *repository.TourRepo, d *repository.DestinationRepo, r *repository.ReviewRepo, a *repository.AvailabilityRepo, u *repository.UserRepo) *PublicHandler {
	return &PublicHandler{Tours: t, Dests: d, Reviews: r, Avail: a, Users: u}
}

// ListTours returns published tours, optionally filtered by
// destination and category.
func (h *PublicHandler) ListTours(c echo.Context) error {
	var destinationID uint64
	if raw := c.QueryParam("destination_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return httperr.BadRequest("invalid destination_id")
		}
		destinationID = id
	}
	category := strings.TrimSpace(c.QueryParam("category"))
	if category != "" && !model.ValidCategory(category) {
		return httperr.Validation("unknown category")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	tours, err := h.Tours.ListPublic(ctx, destinationID, category)
	if err != nil {
		return httperr.Internal(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"tours": newTourViews(tours)})
}

// GetTour returns one published tour with its availability calendar
// and reviews.
func (h *PublicHandler) GetTour(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	tour, err := h.Tours.GetPublicByID(ctx, id)
	if err != nil {
		return repoErr(err, "tour not found")
	}
	avail, err := h.Avail.ListForTour(ctx, id)
	if err != nil {
		return httperr.Internal(err)
	}
	reviews, err := h.Reviews.ListForTour(ctx, id)
	if err != nil {
		return httperr.Internal(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"tour":         newTourView(tour),
		"availability": newAvailabilityViews(avail),
		"reviews":      newReviewDetailViews(reviews),
	})
}

// TourAvailability returns the remaining slots per day for a tour.
// Pass ?date=YYYY-MM-DD to query a single day.
func (h *PublicHandler) TourAvailability(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Tours.GetPublicByID(ctx, id); err != nil {
		return repoErr(err, "tour not found")
	}

	if q := c.QueryParam("date"); q != "" {
		day, err := parseDay(q)
		if err != nil {
			return err
		}
		slots, err := h.Avail.Slots(ctx, id, day)
		if err != nil {
			return repoErr(err, "no availability on that date")
		}
		return c.JSON(http.StatusOK, echo.Map{
			"date":  day.Format("2006-01-02"),
			"slots": slots,
		})
	}

	entries, err := h.Avail.ListForTour(ctx, id)
	if err != nil {
		return httperr.Internal(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"availability": newAvailabilityViews(entries)})
}

// TourReviews lists the reviews of a published tour.
func (h *PublicHandler) TourReviews(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Tours.GetPublicByID(ctx, id); err != nil {
		return repoErr(err, "tour not found")
	}
	reviews, err := h.Reviews.ListForTour(ctx, id)
	if err != nil {
		return httperr.Internal(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reviews": newReviewDetailViews(reviews)})
}

// ListDestinations returns the active destinations.
func (h *PublicHandler) ListDestinations(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	dests, err := h.Dests.List(ctx, true)
	if err != nil {
		return httperr.Internal(err)
	}
	out := make([]destinationView, 0, len(dests))
	for _, d := range dests {
		out = append(out, newDestinationView(d))
	}
	return c.JSON(http.StatusOK, echo.Map{"destinations": out})
}

// GetDestination returns one active destination.
func (h *PublicHandler) GetDestination(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	d, err := h.Dests.GetByID(ctx, id)
	if err != nil {
		return repoErr(err, "destination not found")
	}
	if !d.IsActive {
		return httperr.NotFound("destination not found")
	}
	return c.JSON(http.StatusOK, newDestinationView(d))
}

// GuideProfile returns a guide's public profile with their published
// tours.
func (h *PublicHandler) GuideProfile(c echo.Context) error {
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
	if u.Role != model.RoleGuide || u.IsBlocked {
		return httperr.NotFound("guide not found")
	}
	tours, err := h.Tours.ListPublicByGuide(ctx, id)
	if err != nil {
		return httperr.Internal(err)
	}
	v := newUserView(u)
	v.Email = "" // email is not public
	return c.JSON(http.StatusOK, echo.Map{
		"guide": v,
		"tours": newTourViews(tours),
	})
}

// GuideTours lists only the published tours of a guide.
func (h *PublicHandler) GuideTours(c echo.Context) error {
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
	if u.Role != model.RoleGuide || u.IsBlocked {
		return httperr.NotFound("guide not found")
	}
	tours, err := h.Tours.ListPublicByGuide(ctx, id)
	if err != nil {
		return httperr.Internal(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"tours": newTourViews(tours)})
}
