// internal/views/projector.go

// Package views serves the denormalized booking read model used by lists and
// the day calendar. It reflects booking state at read time and is never
// authoritative.
package views

import (
	"context"
	"database/sql"

	"github.com/fieldbook/fieldbook/internal/booking"
	appdb "github.com/fieldbook/fieldbook/internal/db"
)

type Projector struct {
	queries *appdb.Queries
}

func NewProjector(queries *appdb.Queries) *Projector {
	return &Projector{queries: queries}
}

// ForDate returns the day-calendar rows for a date, optionally narrowed to a
// single status.
func (p *Projector) ForDate(ctx context.Context, date string, status *booking.Status) ([]appdb.BookingView, error) {
	if _, err := booking.ParseDate(date); err != nil {
		return nil, booking.ValidationError{Field: "date", Reason: "must be a valid YYYY-MM-DD date"}
	}
	params := appdb.ListBookingsParams{
		Date: sql.NullString{String: date, Valid: true},
	}
	if status != nil {
		params.Status = sql.NullInt64{Int64: int64(*status), Valid: true}
	}
	return p.list(ctx, params)
}

// ForUser returns a user's bookings across all dates and statuses.
func (p *Projector) ForUser(ctx context.Context, userID int64) ([]appdb.BookingView, error) {
	return p.list(ctx, appdb.ListBookingsParams{
		UserID: sql.NullInt64{Int64: userID, Valid: true},
	})
}

// ForStatus returns all bookings in one status, for admin triage lists.
func (p *Projector) ForStatus(ctx context.Context, status booking.Status) ([]appdb.BookingView, error) {
	return p.list(ctx, appdb.ListBookingsParams{
		Status: sql.NullInt64{Int64: int64(status), Valid: true},
	})
}

func (p *Projector) list(ctx context.Context, params appdb.ListBookingsParams) ([]appdb.BookingView, error) {
	rows, err := p.queries.ListBookingViews(ctx, params)
	if err != nil {
		return nil, &booking.StorageError{Op: "list booking views", Err: err}
	}
	return rows, nil
}
