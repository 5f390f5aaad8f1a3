package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"ticketdesk/internal/auth"
	"ticketdesk/internal/booking"
	"ticketdesk/internal/booking/booking_api"
	bookingdb "ticketdesk/internal/booking/db"
	"ticketdesk/internal/booking/qr"
	"ticketdesk/internal/catalog"
	catalogdb "ticketdesk/internal/catalog/db"
	"ticketdesk/internal/config"
	"ticketdesk/internal/database"
	"ticketdesk/internal/logger"
	"ticketdesk/internal/organiser"
	organiserdb "ticketdesk/internal/organiser/db"
	"ticketdesk/internal/organiser/organiser_api"
	"ticketdesk/internal/web"
)

func main() {
	logger := logger.NewLogger()
	defer logger.Close()

	logger.Info("APP", "Starting Ticketdesk")

	if err := godotenv.Load(); err != nil {
		logger.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		logger.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()

	bunDB, err := database.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Failed to open SQLite database: %v", err))
	}
	defer bunDB.Close()

	ctx := context.Background()
	if err := database.CreateSchema(ctx, bunDB); err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Failed to create schema: %v", err))
	}
	logger.Info("DATABASE", fmt.Sprintf("✅ SQLite ready at %s", cfg.Database.Path))

	sessions := auth.NewSessions(cfg.Auth)
	bookingService := booking.NewService(&bookingdb.DB{Bun: bunDB})
	catalogService := catalog.NewService(&catalogdb.DB{Bun: bunDB})
	organiserService := organiser.NewService(
		&organiserdb.DB{Bun: bunDB},
		organiser.NewImagePicker(cfg.Site.ImagePolicy),
	)
	renderer := web.NewRenderer(logger)
	logger.Info("APP", fmt.Sprintf("Image policy: %s", cfg.Site.ImagePolicy))

	attendeeHandler := &booking_api.Handler{
		Bookings: bookingService,
		Catalog:  catalogService,
		QR:       qr.NewGenerator(),
		Renderer: renderer,
		Settings: organiserService,
		Logger:   logger,
	}

	organiserHandler := &organiser_api.Handler{
		Events:   organiserService,
		Sessions: sessions,
		Renderer: renderer,
		Logger:   logger,
	}

	logger.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()

	r.Handle("/static/*", web.StaticHandler())
	r.Get("/", attendeeHandler.Landing)

	r.Route("/attendee", func(r chi.Router) {
		r.Get("/", attendeeHandler.ListEvents)
		r.Get("/event/{eventID}", attendeeHandler.ShowEvent)
		r.Post("/event/{eventID}/book", attendeeHandler.SubmitBooking)
		r.Get("/booking/{bookingID}", attendeeHandler.ShowConfirmation)
		r.Get("/booking/{bookingID}/qr", attendeeHandler.BookingQR)
	})
	logger.Info("ROUTER", "Attendee routes registered under /attendee")

	r.Route("/organiser", func(r chi.Router) {
		r.Get("/login", organiserHandler.LoginForm)
		r.Post("/login", organiserHandler.Login)
		r.Get("/logout", organiserHandler.Logout)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireOrganiser(sessions))
			r.Get("/", organiserHandler.Home)
			r.Post("/events", organiserHandler.CreateEvent)
			r.Get("/events/edit/{eventID}", organiserHandler.EditForm)
			r.Post("/events/edit/{eventID}", organiserHandler.SaveEvent)
			r.Post("/events/{eventID}/publish", organiserHandler.PublishEvent)
			r.Post("/events/{eventID}/delete", organiserHandler.DeleteEvent)
			r.Get("/settings", organiserHandler.SettingsForm)
			r.Post("/settings", organiserHandler.SaveSettings)
		})
	})
	logger.Info("ROUTER", "Organiser routes registered under /organiser (session gated)")

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP", fmt.Sprintf("🚀 Ticketdesk running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	logger.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	logger.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		logger.Info("HTTP", "✅ Ticketdesk shutdown complete")
	}
}
