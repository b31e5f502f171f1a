package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"

	"github.com/fieldbook/fieldbook/internal/booking"
)

const expiryJobTimeout = 2 * time.Minute

// RegisterExpiryJob registers the nightly sweep that rejects incoming
// booking requests whose date has already passed. A request nobody acted on
// before the day of play is dead; rejecting it keeps the incoming queue
// meaningful.
func RegisterExpiryJob(manager *booking.Manager, cronExpr string) error {
	if manager == nil {
		return fmt.Errorf("expiry job requires booking manager")
	}

	jobName := "booking_expiry"
	jobLogger := log.With().
		Str("component", "booking_expiry_job").
		Str("job_name", jobName).
		Str("cron", cronExpr).
		Logger()

	_, err := AddJob(jobName, cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), expiryJobTimeout)
		defer cancel()
		ctx = jobLogger.WithContext(ctx)

		today := booking.FormatDate(time.Now().UTC())
		incoming := booking.StatusIncoming

		stale, err := manager.List(ctx, booking.Filter{Status: &incoming})
		if err != nil {
			jobLogger.Error().Err(err).Msg("Failed to load incoming bookings for expiry sweep")
			return
		}

		rejected := 0
		for _, b := range stale {
			if b.Date >= today {
				continue
			}
			if err := manager.TransitionStatus(ctx, b.ID, booking.StatusRejected); err != nil {
				jobLogger.Error().Err(err).Int64("booking_id", b.ID).Msg("Failed to reject expired booking")
				continue
			}
			rejected++
		}
		if rejected > 0 {
			jobLogger.Info().Int("rejected", rejected).Msg("Expired incoming bookings rejected")
		}
	}, gocron.WithSingletonMode(gocron.LimitModeWait))
	if err != nil {
		return fmt.Errorf("add booking expiry job: %w", err)
	}

	jobLogger.Info().Msg("Booking expiry job registered")
	return nil
}
