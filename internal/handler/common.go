// Package handler defines the HTTP handlers for the API.  Handlers
// bind and validate input, run repository calls (inside a transaction
// when a change spans tables) and shape responses.  Errors are
// returned as *httperr.Error values and rendered by the process-wide
// responder, never serialized inline.
package handler

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/journiq/tour-booking-api/internal/httperr"
	"github.com/journiq/tour-booking-api/internal/middleware"
	"github.com/journiq/tour-booking-api/internal/model"
	"github.com/journiq/tour-booking-api/internal/repository"
)

// dbTimeout bounds every database round-trip issued by a handler.
const dbTimeout = 5 * time.Second

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

func currentUser(c echo.Context) uint64 { return middleware.UserID(c) }

func currentRole(c echo.Context) string { return middleware.Role(c) }

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, httperr.BadRequest("invalid " + name)
	}
	return id, nil
}

// parseDay parses a YYYY-MM-DD date string as a UTC day.
func parseDay(s string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, httperr.Validation("invalid date, expected YYYY-MM-DD")
	}
	return d.UTC(), nil
}

// repoErr translates repository sentinels into typed HTTP errors.
// Anything unrecognized becomes a redacted 500.
func repoErr(err error, notFoundMsg string) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return httperr.NotFound(notFoundMsg)
	case errors.Is(err, repository.ErrForbidden):
		return httperr.Forbidden("not allowed")
	case errors.Is(err, repository.ErrInsufficientSlots):
		return httperr.Conflict(err.Error())
	case errors.Is(err, repository.ErrDuplicateReview):
		return httperr.Conflict(err.Error())
	case errors.Is(err, repository.ErrEmailExists):
		return httperr.Conflict(err.Error())
	case errors.Is(err, repository.ErrConflict):
		return httperr.Conflict(err.Error())
	}
	return httperr.Internal(err)
}

// ----- response shapes -----

type userView struct {
	ID             uint64    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	Phone          *string   `json:"phone,omitempty"`
	Bio            *string   `json:"bio,omitempty"`
	Location       *string   `json:"location,omitempty"`
	IsVerified     bool      `json:"is_verified"`
	IsBlocked      bool      `json:"is_blocked"`
	CreatedAt      time.Time `json:"created_at"`
}

func newUserView(u model.User) userView {
	return userView{
		ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role,
		ProfilePicture: u.ProfilePicture, Phone: u.Phone, Bio: u.Bio, Location: u.Location,
		IsVerified: u.IsVerified, IsBlocked: u.IsBlocked, CreatedAt: u.CreatedAt,
	}
}

type destinationView struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Country     string    `json:"country"`
	City        *string   `json:"city,omitempty"`
	Description string    `json:"description"`
	Images      []string  `json:"images"`
	Attractions []string  `json:"attractions"`
	BestSeason  *string   `json:"best_season,omitempty"`
	Tags        []string  `json:"tags"`
	Lat         *float64  `json:"lat,omitempty"`
	Lng         *float64  `json:"lng,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

func newDestinationView(d model.Destination) destinationView {
	return destinationView{
		ID: d.ID, Name: d.Name, Country: d.Country, City: d.City, Description: d.Description,
		Images: d.Images, Attractions: d.Attractions, BestSeason: d.BestSeason, Tags: d.Tags,
		Lat: d.Lat, Lng: d.Lng, IsActive: d.IsActive, CreatedAt: d.CreatedAt,
	}
}

type tourView struct {
	ID            uint64    `json:"id"`
	GuideID       uint64    `json:"guide_id"`
	DestinationID uint64    `json:"destination_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Itinerary     []string  `json:"itinerary"`
	Highlights    []string  `json:"highlights"`
	Included      []string  `json:"included"`
	Excluded      []string  `json:"excluded"`
	MeetingPoint  string    `json:"meeting_point"`
	Category      string    `json:"category"`
	DurationDays  uint32    `json:"duration_days"`
	PriceCents    uint32    `json:"price_cents"`
	Rating        float64   `json:"rating"`
	RatingsCount  uint32    `json:"ratings_count"`
	Images        []string  `json:"images"`
	IsActive      bool      `json:"is_active"`
	IsBlocked     bool      `json:"is_blocked"`
	CreatedAt     time.Time `json:"created_at"`
}

func newTourView(t model.Tour) tourView {
	return tourView{
		ID: t.ID, GuideID: t.GuideID, DestinationID: t.DestinationID,
		Title: t.Title, Description: t.Description,
		Itinerary: t.Itinerary, Highlights: t.Highlights, Included: t.Included, Excluded: t.Excluded,
		MeetingPoint: t.MeetingPoint, Category: t.Category,
		DurationDays: t.DurationDays, PriceCents: t.PriceCents,
		Rating: t.Rating, RatingsCount: t.RatingsCount, Images: t.Images,
		IsActive: t.IsActive, IsBlocked: t.IsBlocked, CreatedAt: t.CreatedAt,
	}
}

func newTourViews(tours []model.Tour) []tourView {
	out := make([]tourView, 0, len(tours))
	for _, t := range tours {
		out = append(out, newTourView(t))
	}
	return out
}

type availabilityView struct {
	Day   string `json:"day"`
	Slots uint32 `json:"slots"`
}

func newAvailabilityViews(entries []model.AvailabilityEntry) []availabilityView {
	out := make([]availabilityView, 0, len(entries))
	for _, e := range entries {
		out = append(out, availabilityView{Day: e.Day.Format("2006-01-02"), Slots: e.Slots})
	}
	return out
}

type experienceView struct {
	ServiceQuality     uint8   `json:"service_quality"`
	Punctuality        uint8   `json:"punctuality"`
	SatisfactionSurvey uint8   `json:"satisfaction_survey"`
	Rating             float64 `json:"rating"`
}

type bookingView struct {
	ID              uint64          `json:"id"`
	TourID          uint64          `json:"tour_id"`
	TourTitle       string          `json:"tour_title,omitempty"`
	TravellerID     uint64          `json:"traveller_id"`
	TravellerName   string          `json:"traveller_name,omitempty"`
	GuideName       string          `json:"guide_name,omitempty"`
	Day             string          `json:"day"`
	NumPeople       uint32          `json:"num_people"`
	TotalPriceCents uint64          `json:"total_price_cents"`
	Status          string          `json:"status"`
	Experience      *experienceView `json:"experience,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func newBookingView(b model.Booking) bookingView {
	v := bookingView{
		ID: b.ID, TourID: b.TourID, TravellerID: b.TravellerID,
		Day: b.Day.Format("2006-01-02"), NumPeople: b.NumPeople,
		TotalPriceCents: b.TotalPriceCents, Status: b.Status,
		CreatedAt: b.CreatedAt, UpdatedAt: b.UpdatedAt,
	}
	if b.Experience != nil {
		v.Experience = &experienceView{
			ServiceQuality:     b.Experience.ServiceQuality,
			Punctuality:        b.Experience.Punctuality,
			SatisfactionSurvey: b.Experience.SatisfactionSurvey,
			Rating:             b.Experience.Rating(),
		}
	}
	return v
}

func newBookingDetailView(d repository.BookingDetail) bookingView {
	v := newBookingView(d.Booking)
	v.TourTitle = d.TourTitle
	v.TravellerName = d.TravellerName
	v.GuideName = d.GuideName
	return v
}

func newBookingSummaryViews(rows []repository.BookingSummary) []bookingView {
	out := make([]bookingView, 0, len(rows))
	for _, r := range rows {
		v := newBookingView(r.Booking)
		v.TourTitle = r.TourTitle
		v.TravellerName = r.TravellerName
		v.GuideName = r.GuideName
		out = append(out, v)
	}
	return out
}

type reviewView struct {
	ID         uint64    `json:"id"`
	TourID     uint64    `json:"tour_id"`
	TourTitle  string    `json:"tour_title,omitempty"`
	UserID     uint64    `json:"user_id"`
	AuthorName string    `json:"author_name,omitempty"`
	BookingID  uint64    `json:"booking_id"`
	Rating     float64   `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func newReviewView(r model.Review) reviewView {
	return reviewView{
		ID: r.ID, TourID: r.TourID, UserID: r.UserID, BookingID: r.BookingID,
		Rating: r.Rating, Comment: r.Comment, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

func newReviewDetailViews(rows []repository.ReviewDetail) []reviewView {
	out := make([]reviewView, 0, len(rows))
	for _, r := range rows {
		v := newReviewView(r.Review)
		v.AuthorName = r.AuthorName
		v.TourTitle = r.TourTitle
		out = append(out, v)
	}
	return out
}

type notificationView struct {
	ID         uint64    `json:"id"`
	Type       string    `json:"type"`
	Message    string    `json:"message"`
	SenderName *string   `json:"sender_name,omitempty"`
	BookingID  *uint64   `json:"booking_id,omitempty"`
	TourID     *uint64   `json:"tour_id,omitempty"`
	TourTitle  *string   `json:"tour_title,omitempty"`
	IsRead     bool      `json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
}

func newNotificationViews(rows []repository.NotificationDetail) []notificationView {
	out := make([]notificationView, 0, len(rows))
	for _, r := range rows {
		out = append(out, notificationView{
			ID: r.Notification.ID, Type: r.Notification.Type, Message: r.Notification.Message,
			SenderName: r.SenderName, BookingID: r.Notification.BookingID,
			TourID: r.Notification.TourID, TourTitle: r.TourTitle,
			IsRead: r.Notification.IsRead, CreatedAt: r.Notification.CreatedAt,
		})
	}
	return out
}

type messageView struct {
	ID          uint64     `json:"id"`
	TravellerID uint64     `json:"traveller_id"`
	Subject     string     `json:"subject"`
	Body        string     `json:"body"`
	Status      string     `json:"status"`
	AdminReply  *string    `json:"admin_reply,omitempty"`
	RepliedAt   *time.Time `json:"replied_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func newMessageViews(rows []model.Message) []messageView {
	out := make([]messageView, 0, len(rows))
	for _, m := range rows {
		out = append(out, newMessageView(m))
	}
	return out
}

func newMessageView(m model.Message) messageView {
	return messageView{
		ID: m.ID, TravellerID: m.TravellerID, Subject: m.Subject, Body: m.Body,
		Status: m.Status, AdminReply: m.AdminReply, RepliedAt: m.RepliedAt, CreatedAt: m.CreatedAt,
	}
}
