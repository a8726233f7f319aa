package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/journiq/tour-booking-api/internal/config"
	"github.com/journiq/tour-booking-api/internal/database"
	"github.com/journiq/tour-booking-api/internal/handler"
	"github.com/journiq/tour-booking-api/internal/httperr"
	"github.com/journiq/tour-booking-api/internal/mailer"
	appmw "github.com/journiq/tour-booking-api/internal/middleware"
	"github.com/journiq/tour-booking-api/internal/queue"
	"github.com/journiq/tour-booking-api/internal/repository"
	"github.com/journiq/tour-booking-api/internal/router"
	"github.com/journiq/tour-booking-api/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real environments set variables directly
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil when Redis is unreachable; cache and limiter degrade to no-ops

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	dests := repository.NewDestinationRepo(db)
	tours := repository.NewTourRepo(db)
	avail := repository.NewAvailabilityRepo(db)
	bookings := repository.NewBookingRepo(db)
	reviews := repository.NewReviewRepo(db)
	notifs := repository.NewNotificationRepo(db)
	messages := repository.NewMessageRepo(db)
	outbox := repository.NewOutboxRepo(db)

	pub := service.NewPublisher(cfg.AmqpURL)
	notifier := service.NewNotifier(notifs, outbox, pub)

	m := mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	go func() {
		if err := queue.StartEmailConsumer(cfg.AmqpURL, outbox, m); err != nil {
			log.Printf("email-consumer stopped: %v", err)
		}
	}()
	jobs := service.StartMaintenance(outbox, tokens, pub)
	defer jobs.Stop()

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httperr.Handler
	e.Use(appmw.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	authH := handler.NewAuthHandler(cfg, db, users, tokens, notifier)
	publicH := handler.NewPublicHandler(tours, dests, reviews, avail, users)
	travellerH := handler.NewTravellerHandler(db, bookings, tours, avail, reviews, notifier)
	guideTourH := handler.NewGuideTourHandler(db, tours, avail, dests, reviews)
	guideBookingH := handler.NewGuideBookingHandler(db, bookings, avail, notifier)
	reviewH := handler.NewReviewHandler(reviews, bookings, tours)
	messageH := handler.NewMessageHandler(messages)
	notifH := handler.NewNotificationHandler(notifs)
	adminH := handler.NewAdminHandler(db, users, tours, bookings, reviews, messages, dests, avail, notifier)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, publicH, appmw.NewRedisCache(config.LoadCacheConfig(), rdb))
	router.RegisterTraveller(e, travellerH, reviewH, messageH, notifH, cfg.JWTSecret)
	router.RegisterGuide(e, guideTourH, guideBookingH, appmw.RequireVerifiedGuide(users), cfg.JWTSecret)
	router.RegisterAdmin(e, adminH, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
