// internal/slots/calculator.go

// Package slots computes the bookable start times for a field on a date by
// subtracting confirmed bookings from the facility operating window.
package slots

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fieldbook/fieldbook/internal/booking"
	"github.com/fieldbook/fieldbook/internal/config"
	appdb "github.com/fieldbook/fieldbook/internal/db"
)

// Window is the facility operating window in minutes from midnight, with a
// fixed slot length. End is exclusive; 1440 means midnight.
type Window struct {
	Start       int
	End         int
	SlotMinutes int
}

// WindowFromConfig parses and validates the configured operating window.
func WindowFromConfig(cfg config.BookingConfig) (Window, error) {
	start, err := booking.ParseClock(cfg.OpensAt)
	if err != nil {
		return Window{}, fmt.Errorf("invalid opens_at: %w", err)
	}
	end, err := booking.ParseClock(cfg.ClosesAt)
	if err != nil {
		return Window{}, fmt.Errorf("invalid closes_at: %w", err)
	}
	if end <= start {
		return Window{}, fmt.Errorf("closes_at %s must be after opens_at %s", cfg.ClosesAt, cfg.OpensAt)
	}
	if cfg.SlotMinutes <= 0 {
		return Window{}, fmt.Errorf("slot_minutes must be positive")
	}
	return Window{Start: start, End: end, SlotMinutes: cfg.SlotMinutes}, nil
}

// Starts returns every candidate slot start in the window, in order. A slot
// must fit entirely inside the window.
func (w Window) Starts() []string {
	starts := make([]string, 0, (w.End-w.Start)/w.SlotMinutes)
	w.eachSlot(func(start, _ string) {
		starts = append(starts, start)
	})
	return starts
}

// eachSlot enumerates the candidate slot intervals as HH:MM pairs.
func (w Window) eachSlot(fn func(start, end string)) {
	for start := w.Start; start+w.SlotMinutes <= w.End; start += w.SlotMinutes {
		fn(booking.FormatClock(start), booking.FormatClock(start+w.SlotMinutes))
	}
}

// Calculator answers availability queries. Its reads are stale-tolerant by
// design: the authoritative overlap check happens again at write time inside
// the booking manager's transaction.
type Calculator struct {
	queries *appdb.Queries
	window  Window
}

func NewCalculator(queries *appdb.Queries, window Window) *Calculator {
	return &Calculator{queries: queries, window: window}
}

// AvailableSlots returns the ordered HH:MM start times on the given date
// whose slot interval intersects no confirmed booking. An inactive field has
// no available slots; an unknown field reports booking.ErrNotFound.
func (c *Calculator) AvailableSlots(ctx context.Context, fieldID int64, date string) ([]string, error) {
	if _, err := booking.ParseDate(date); err != nil {
		return nil, booking.ValidationError{Field: "date", Reason: "must be a valid YYYY-MM-DD date"}
	}

	field, err := c.queries.GetFieldByID(ctx, fieldID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("field %d: %w", fieldID, booking.ErrNotFound)
		}
		return nil, &booking.StorageError{Op: "load field", Err: err}
	}
	if !field.Active {
		return []string{}, nil
	}

	occupied, err := c.queries.ListConfirmedBookings(ctx, fieldID, date)
	if err != nil {
		return nil, &booking.StorageError{Op: "list confirmed bookings", Err: err}
	}

	available := make([]string, 0, (c.window.End-c.window.Start)/c.window.SlotMinutes)
	c.window.eachSlot(func(slotStart, slotEnd string) {
		if !intersectsAny(slotStart, slotEnd, occupied) {
			available = append(available, slotStart)
		}
	})
	return available, nil
}

func intersectsAny(slotStart, slotEnd string, occupied []appdb.Booking) bool {
	for _, b := range occupied {
		if booking.Overlaps(slotStart, slotEnd, b.StartTime, b.EndTime) {
			return true
		}
	}
	return false
}
