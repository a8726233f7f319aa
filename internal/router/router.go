// Package router wires handlers to their routes by actor: public
// catalogue, authenticated account routes, traveller, guide and
// admin groups.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/journiq/tour-booking-api/internal/handler"
	"github.com/journiq/tour-booking-api/internal/middleware"
	"github.com/journiq/tour-booking-api/internal/model"
)

// RegisterRoutes registers routes that need no authentication beyond
// the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers account endpoints.  Register, login and the
// token exchanges are open; profile routes require a valid access
// token of any role.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
	auth.PATCH("/me", a.UpdateProfile)
	auth.PATCH("/me/password", a.ChangePassword)
	// Logout with a bearer token revokes every session at once.
	auth.POST("/logout", a.Logout)
}

// RegisterPublic registers the guest-visible catalogue.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cacheMW ...echo.MiddlewareFunc) {
	g := e.Group("/v1", cacheMW...)
	g.GET("/destinations", p.ListDestinations)
	g.GET("/destinations/:id", p.GetDestination)
	g.GET("/tours", p.ListTours)
	g.GET("/tours/:id", p.GetTour)
	g.GET("/tours/:id/availability", p.TourAvailability)
	g.GET("/tours/:id/reviews", p.TourReviews)
	g.GET("/guides/:id", p.GuideProfile)
	g.GET("/guides/:id/tours", p.GuideTours)
}

// RegisterTraveller registers booking, review, notification and
// support-message endpoints for travellers.  Notifications are open
// to every role; the rest requires the traveller role.
func RegisterTraveller(e *echo.Echo, t *handler.TravellerHandler, r *handler.ReviewHandler, m *handler.MessageHandler, n *handler.NotificationHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleTraveller),
	)
	g.POST("/bookings", t.CreateBooking)
	g.GET("/my-bookings", t.MyBookings)
	g.GET("/bookings/:id", t.GetBooking)
	g.PATCH("/bookings/:id/cancel", t.CancelBooking)
	g.POST("/bookings/:id/experience", t.SubmitExperience)

	g.POST("/tours/:id/reviews", r.CreateReview)
	g.GET("/my-reviews", r.MyReviews)
	g.PATCH("/reviews/:id", r.UpdateReview)
	g.DELETE("/reviews/:id", r.DeleteReview)

	g.POST("/messages", m.Create)
	g.GET("/my-messages", m.MyMessages)

	inbox := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	inbox.GET("/notifications", n.List)
	inbox.GET("/notifications/unread", n.ListUnread)
	inbox.PATCH("/notifications/:id/read", n.MarkRead)
	inbox.PATCH("/notifications/read-all", n.MarkAllRead)
	inbox.DELETE("/notifications/:id", n.Delete)
	inbox.DELETE("/notifications", n.DeleteAll)
	inbox.DELETE("/bookings/:id", t.DeleteBooking)
}

// RegisterGuide registers tour management and booking response
// endpoints.  The whole group additionally requires the guide to be
// verified by an admin.
func RegisterGuide(e *echo.Echo, t *handler.GuideTourHandler, b *handler.GuideBookingHandler, verified echo.MiddlewareFunc, jwtSecret string) {
	g := e.Group(
		"/v1/guide",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleGuide),
		verified,
	)
	g.GET("/bookings", b.ListBookings)
	g.GET("/bookings/:id", b.GetBooking)
	g.PATCH("/bookings/:id/respond", b.Respond)
	g.PATCH("/bookings/:id/status", b.UpdateStatus)
	g.GET("/reviews", t.MyReviews)

	tours := g.Group("/tours")
	tours.POST("", t.CreateTour)
	tours.GET("", t.MyTours)
	tours.GET("/:id", t.GetTour)
	tours.PATCH("/:id", t.UpdateTour)
	tours.DELETE("/:id", t.DeleteTour)
	tours.PATCH("/:id/toggle-active", t.ToggleActive)
}

// RegisterAdmin registers the moderation surface.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	g.GET("/users", a.ListUsers)
	g.GET("/users/blocked", a.ListBlockedUsers)
	g.GET("/users/:id", a.GetUser)
	g.PATCH("/users/:id/block", a.ToggleBlockUser)
	g.PATCH("/guides/:id/verify", a.VerifyGuide)
	g.POST("/users/:id/notify", a.NotifyUser)

	g.POST("/destinations", a.CreateDestination)
	g.GET("/destinations", a.ListDestinations)
	g.PATCH("/destinations/:id", a.UpdateDestination)
	g.DELETE("/destinations/:id", a.DeleteDestination)
	g.PATCH("/destinations/:id/toggle-active", a.ToggleDestination)

	g.GET("/tours", a.ListTours)
	g.PATCH("/tours/:id/block", a.ToggleBlockTour)

	g.GET("/bookings", a.ListBookings)
	g.PATCH("/bookings/:id/status", a.UpdateBookingStatus)
	g.GET("/reviews", a.ListReviews)
	g.DELETE("/reviews/:id", a.DeleteReview)

	g.GET("/messages", a.ListMessages)
	g.PATCH("/messages/:id/read", a.ReadMessage)
	g.PATCH("/messages/:id/reply", a.ReplyMessage)

	g.GET("/stats", a.Stats)
}
