// internal/booking/manager.go
package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fieldbook/fieldbook/internal/config"
	appdb "github.com/fieldbook/fieldbook/internal/db"
)

// Manager owns the booking state machine. All writes run inside a single
// transaction so the overlap check and the insert/update cannot be split by
// a concurrent writer; the database triggers back the same invariant.
type Manager struct {
	store       *appdb.DB
	slotMinutes int
	now         func() time.Time
}

func NewManager(store *appdb.DB, cfg config.BookingConfig) *Manager {
	slotMinutes := cfg.SlotMinutes
	if slotMinutes <= 0 {
		slotMinutes = 60
	}
	return &Manager{
		store:       store,
		slotMinutes: slotMinutes,
		now:         time.Now,
	}
}

// CreateRequest describes a new booking. Exactly one of UserID and
// UnregisteredName must be set. EndTime is optional and defaults to one slot
// after StartTime. Confirmed marks an administrative creation that skips the
// incoming stage.
type CreateRequest struct {
	FieldID          int64
	Date             string
	StartTime        string
	EndTime          string
	UserID           *int64
	UnregisteredName string
	Mixed            bool
	Notes            string
	Room             string
	Confirmed        bool
}

// UpdateRequest is a full-field update of a booking's mutable attributes.
type UpdateRequest struct {
	FieldID   int64
	Date      string
	StartTime string
	EndTime   string
	Mixed     bool
	Notes     string
	Room      string
}

// Filter selects bookings by any combination of status, user, field and
// date. Nil/empty values match everything.
type Filter struct {
	Status  *Status
	UserID  *int64
	FieldID *int64
	Date    string
}

// Create validates and persists a new booking. The booking starts incoming,
// or confirmed for administrative creations. Overlap with a confirmed
// booking fails with ErrSlotUnavailable.
func (m *Manager) Create(ctx context.Context, req CreateRequest) (appdb.Booking, error) {
	startTime, endTime, err := m.resolveInterval(req.StartTime, req.EndTime)
	if err != nil {
		return appdb.Booking{}, err
	}
	if err := validateRequester(req.UserID, req.UnregisteredName); err != nil {
		return appdb.Booking{}, err
	}
	if err := m.validateDate(req.Date); err != nil {
		return appdb.Booking{}, err
	}

	status := StatusIncoming
	if req.Confirmed {
		status = StatusConfirmed
	}

	var created appdb.Booking
	err = m.store.RunInTx(ctx, func(txdb *appdb.DB) error {
		q := txdb.Queries

		field, err := q.GetFieldByID(ctx, req.FieldID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("field %d: %w", req.FieldID, ErrNotFound)
			}
			return &StorageError{Op: "load field", Err: err}
		}
		if !field.Active {
			return ValidationError{Field: "field_id", Reason: "is not accepting bookings"}
		}

		if err := ensureSlotFree(ctx, q, req.FieldID, req.Date, startTime, endTime, 0); err != nil {
			return err
		}

		created, err = q.CreateBooking(ctx, appdb.CreateBookingParams{
			FieldID:          req.FieldID,
			UserID:           toNullInt64(req.UserID),
			UnregisteredName: toNullString(req.UnregisteredName),
			Date:             req.Date,
			StartTime:        startTime,
			EndTime:          endTime,
			Status:           int64(status),
			Mixed:            req.Mixed,
			Notes:            toNullString(req.Notes),
			Room:             toNullString(req.Room),
		})
		if err != nil {
			if appdb.IsOverlapViolation(err) {
				return ErrSlotUnavailable
			}
			// The field is checked above, so a FK failure means the
			// referenced user does not exist.
			if appdb.IsForeignKeyViolation(err) {
				return fmt.Errorf("requester: %w", ErrNotFound)
			}
			return &StorageError{Op: "create booking", Err: err}
		}
		return nil
	})
	if err != nil {
		return appdb.Booking{}, err
	}
	return created, nil
}

// Update rewrites a booking's date, time, field and attributes. It fails
// with InvalidStateError once the booking is terminal and re-validates the
// overlap invariant excluding the booking itself.
func (m *Manager) Update(ctx context.Context, id int64, req UpdateRequest) (appdb.Booking, error) {
	startTime, endTime, err := m.resolveInterval(req.StartTime, req.EndTime)
	if err != nil {
		return appdb.Booking{}, err
	}
	if _, err := ParseDate(req.Date); err != nil {
		return appdb.Booking{}, ValidationError{Field: "date", Reason: "must be a valid YYYY-MM-DD date"}
	}

	var updated appdb.Booking
	err = m.store.RunInTx(ctx, func(txdb *appdb.DB) error {
		q := txdb.Queries

		current, err := q.GetBookingByID(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("booking %d: %w", id, ErrNotFound)
			}
			return &StorageError{Op: "load booking", Err: err}
		}
		if Status(current.Status).Terminal() {
			return InvalidStateError{Status: Status(current.Status)}
		}

		field, err := q.GetFieldByID(ctx, req.FieldID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("field %d: %w", req.FieldID, ErrNotFound)
			}
			return &StorageError{Op: "load field", Err: err}
		}
		if req.FieldID != current.FieldID && !field.Active {
			return ValidationError{Field: "field_id", Reason: "is not accepting bookings"}
		}

		if err := ensureSlotFree(ctx, q, req.FieldID, req.Date, startTime, endTime, id); err != nil {
			return err
		}

		updated, err = q.UpdateBooking(ctx, appdb.UpdateBookingParams{
			ID:        id,
			FieldID:   req.FieldID,
			Date:      req.Date,
			StartTime: startTime,
			EndTime:   endTime,
			Mixed:     req.Mixed,
			Notes:     toNullString(req.Notes),
			Room:      toNullString(req.Room),
		})
		if err != nil {
			if appdb.IsOverlapViolation(err) {
				return ErrSlotUnavailable
			}
			if appdb.IsForeignKeyViolation(err) {
				return fmt.Errorf("field %d: %w", req.FieldID, ErrNotFound)
			}
			return &StorageError{Op: "update booking", Err: err}
		}
		return nil
	})
	if err != nil {
		return appdb.Booking{}, err
	}
	return updated, nil
}

// TransitionStatus applies one edge of the state machine. Confirmation
// re-validates the overlap invariant at the moment of the transition: a
// request accepted while incoming may have gone stale.
func (m *Manager) TransitionStatus(ctx context.Context, id int64, to Status) error {
	if !to.Valid() {
		return ValidationError{Field: "status", Reason: "is not a known status"}
	}

	return m.store.RunInTx(ctx, func(txdb *appdb.DB) error {
		q := txdb.Queries

		current, err := q.GetBookingByID(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("booking %d: %w", id, ErrNotFound)
			}
			return &StorageError{Op: "load booking", Err: err}
		}

		from := Status(current.Status)
		if !from.CanTransitionTo(to) {
			return InvalidTransitionError{From: from, To: to}
		}

		if to == StatusConfirmed {
			if err := ensureSlotFree(ctx, q, current.FieldID, current.Date, current.StartTime, current.EndTime, id); err != nil {
				return err
			}
		}

		rows, err := q.UpdateBookingStatus(ctx, id, int64(to))
		if err != nil {
			if appdb.IsOverlapViolation(err) {
				return ErrSlotUnavailable
			}
			return &StorageError{Op: "update booking status", Err: err}
		}
		if rows == 0 {
			return fmt.Errorf("booking %d: %w", id, ErrNotFound)
		}
		return nil
	})
}

// Get loads one booking by id.
func (m *Manager) Get(ctx context.Context, id int64) (appdb.Booking, error) {
	b, err := m.store.Queries.GetBookingByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appdb.Booking{}, fmt.Errorf("booking %d: %w", id, ErrNotFound)
		}
		return appdb.Booking{}, &StorageError{Op: "load booking", Err: err}
	}
	return b, nil
}

// List returns bookings matching the filter, ordered by date then start
// time; the ordering is stable regardless of insertion order.
func (m *Manager) List(ctx context.Context, f Filter) ([]appdb.Booking, error) {
	params := appdb.ListBookingsParams{
		Date: toNullString(f.Date),
	}
	if f.Status != nil {
		params.Status = sql.NullInt64{Int64: int64(*f.Status), Valid: true}
	}
	params.UserID = toNullInt64(f.UserID)
	params.FieldID = toNullInt64(f.FieldID)

	bookings, err := m.store.Queries.ListBookings(ctx, params)
	if err != nil {
		return nil, &StorageError{Op: "list bookings", Err: err}
	}
	return bookings, nil
}

// resolveInterval validates the start time and defaults the end time to one
// slot after start when absent.
func (m *Manager) resolveInterval(startRaw, endRaw string) (string, string, error) {
	start, err := ParseClock(startRaw)
	if err != nil {
		return "", "", ValidationError{Field: "start_time", Reason: "must be a valid HH:MM time"}
	}
	if start >= 24*60 {
		return "", "", ValidationError{Field: "start_time", Reason: "must be before midnight"}
	}

	if strings.TrimSpace(endRaw) == "" {
		end := start + m.slotMinutes
		if end > 24*60 {
			end = 24 * 60
		}
		return FormatClock(start), FormatClock(end), nil
	}

	end, err := ParseClock(endRaw)
	if err != nil {
		return "", "", ValidationError{Field: "end_time", Reason: "must be a valid HH:MM time"}
	}
	if end <= start {
		return "", "", ValidationError{Field: "end_time", Reason: "must be after start_time"}
	}
	return FormatClock(start), FormatClock(end), nil
}

func (m *Manager) validateDate(raw string) error {
	parsed, err := ParseDate(raw)
	if err != nil {
		return ValidationError{Field: "date", Reason: "must be a valid YYYY-MM-DD date"}
	}
	today, _ := ParseDate(FormatDate(m.now().UTC()))
	if parsed.Before(today) {
		return ValidationError{Field: "date", Reason: "must not be in the past"}
	}
	return nil
}

func validateRequester(userID *int64, unregisteredName string) error {
	hasUser := userID != nil
	hasName := strings.TrimSpace(unregisteredName) != ""
	if hasUser == hasName {
		return ValidationError{Field: "requester", Reason: "must be exactly one of user_id or unregistered_name"}
	}
	if hasUser && *userID <= 0 {
		return ValidationError{Field: "user_id", Reason: "must be a positive integer"}
	}
	return nil
}

// ensureSlotFree is the authoritative write-time overlap check, run inside
// the caller's transaction. excludeID skips the booking being mutated.
func ensureSlotFree(ctx context.Context, q *appdb.Queries, fieldID int64, date, startTime, endTime string, excludeID int64) error {
	count, err := q.CountOverlappingConfirmed(ctx, appdb.CountOverlappingConfirmedParams{
		FieldID:   fieldID,
		Date:      date,
		ExcludeID: excludeID,
		StartTime: startTime,
		EndTime:   endTime,
	})
	if err != nil {
		return &StorageError{Op: "check availability", Err: err}
	}
	if count > 0 {
		return ErrSlotUnavailable
	}
	return nil
}

func toNullInt64(value *int64) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *value, Valid: true}
}

func toNullString(value string) sql.NullString {
	value = strings.TrimSpace(value)
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
