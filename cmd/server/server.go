// cmd/server/server.go
package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/fieldbook/fieldbook/internal/api"
	"github.com/fieldbook/fieldbook/internal/api/bookings"
	"github.com/fieldbook/fieldbook/internal/api/fields"
	apislots "github.com/fieldbook/fieldbook/internal/api/slots"
	"github.com/fieldbook/fieldbook/internal/config"
	appdb "github.com/fieldbook/fieldbook/internal/db"
	"github.com/fieldbook/fieldbook/internal/email"
	"github.com/fieldbook/fieldbook/internal/ratelimit"
	"github.com/fieldbook/fieldbook/internal/slots"
)

func newServer(cfg *config.Config, database *appdb.DB, emailClient email.EmailSender, limiter *ratelimit.Limiter) (*http.Server, error) {
	window, err := slots.WindowFromConfig(cfg.Booking)
	if err != nil {
		return nil, fmt.Errorf("invalid booking window: %w", err)
	}

	fields.InitHandlers(database)
	apislots.InitHandlers(database, window)
	bookings.InitHandlers(database, cfg.Booking, emailClient)

	router := http.NewServeMux()
	registerRoutes(router, limiter)

	handler := api.ChainMiddleware(
		router,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
		api.WithContentType,
	)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, nil
}

func registerRoutes(mux *http.ServeMux, limiter *ratelimit.Limiter) {
	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Field routes
	mux.HandleFunc("GET /api/v1/fields", fields.HandleFieldsList)
	mux.HandleFunc("PUT /api/v1/fields/{id}/active", fields.HandleFieldActiveUpdate)

	// Slot availability
	mux.HandleFunc("GET /api/v1/slots/available", apislots.HandleAvailableSlots)

	// Booking routes, submissions throttled per client
	mux.Handle("POST /api/v1/bookings", api.WithRateLimit(limiter)(http.HandlerFunc(bookings.HandleBookingCreate)))
	mux.HandleFunc("GET /api/v1/bookings", bookings.HandleBookingsList)
	mux.HandleFunc("GET /api/v1/bookings/calendar", bookings.HandleCalendarView)
	mux.HandleFunc("PUT /api/v1/bookings/{id}", bookings.HandleBookingUpdate)
	mux.HandleFunc("PUT /api/v1/bookings/{id}/status", bookings.HandleBookingStatusUpdate)
}
