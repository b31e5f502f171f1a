// internal/db/queries.go
//
// Hand-maintained query layer in the style of generated query code: every
// query is a constant, every method takes a context and a params struct and
// scans into the row types in models.go.
package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func NewQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

const createField = `
INSERT INTO fields (description, active)
VALUES (?, ?)
RETURNING id, description, active
`

func (q *Queries) CreateField(ctx context.Context, description string, active bool) (Field, error) {
	var f Field
	err := q.db.QueryRowContext(ctx, createField, description, active).
		Scan(&f.ID, &f.Description, &f.Active)
	return f, err
}

const listFields = `
SELECT id, description, active
FROM fields
ORDER BY id
`

func (q *Queries) ListFields(ctx context.Context) ([]Field, error) {
	rows, err := q.db.QueryContext(ctx, listFields)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fields []Field
	for rows.Next() {
		var f Field
		if err := rows.Scan(&f.ID, &f.Description, &f.Active); err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, rows.Err()
}

const getFieldByID = `
SELECT id, description, active
FROM fields
WHERE id = ?
`

func (q *Queries) GetFieldByID(ctx context.Context, id int64) (Field, error) {
	var f Field
	err := q.db.QueryRowContext(ctx, getFieldByID, id).
		Scan(&f.ID, &f.Description, &f.Active)
	return f, err
}

const setFieldActive = `
UPDATE fields
SET active = ?
WHERE id = ?
`

// SetFieldActive returns the number of updated rows; zero means the field id
// does not exist.
func (q *Queries) SetFieldActive(ctx context.Context, id int64, active bool) (int64, error) {
	result, err := q.db.ExecContext(ctx, setFieldActive, active, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const createUser = `
INSERT INTO users (name, surname, email)
VALUES (?, ?, ?)
RETURNING id, name, surname, email
`

type CreateUserParams struct {
	Name    string
	Surname string
	Email   sql.NullString
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	var u User
	err := q.db.QueryRowContext(ctx, createUser, arg.Name, arg.Surname, arg.Email).
		Scan(&u.ID, &u.Name, &u.Surname, &u.Email)
	return u, err
}

const getUserByID = `
SELECT id, name, surname, email
FROM users
WHERE id = ?
`

func (q *Queries) GetUserByID(ctx context.Context, id int64) (User, error) {
	var u User
	err := q.db.QueryRowContext(ctx, getUserByID, id).
		Scan(&u.ID, &u.Name, &u.Surname, &u.Email)
	return u, err
}

const bookingColumns = `id, field_id, user_id, unregistered_name, date, start_time, end_time, status, mixed, notes, room`

const createBooking = `
INSERT INTO bookings (field_id, user_id, unregistered_name, date, start_time, end_time, status, mixed, notes, room)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + bookingColumns

type CreateBookingParams struct {
	FieldID          int64
	UserID           sql.NullInt64
	UnregisteredName sql.NullString
	Date             string
	StartTime        string
	EndTime          string
	Status           int64
	Mixed            bool
	Notes            sql.NullString
	Room             sql.NullString
}

func (q *Queries) CreateBooking(ctx context.Context, arg CreateBookingParams) (Booking, error) {
	row := q.db.QueryRowContext(ctx, createBooking,
		arg.FieldID,
		arg.UserID,
		arg.UnregisteredName,
		arg.Date,
		arg.StartTime,
		arg.EndTime,
		arg.Status,
		arg.Mixed,
		arg.Notes,
		arg.Room,
	)
	return scanBooking(row)
}

const getBookingByID = `
SELECT ` + bookingColumns + `
FROM bookings
WHERE id = ?
`

func (q *Queries) GetBookingByID(ctx context.Context, id int64) (Booking, error) {
	return scanBooking(q.db.QueryRowContext(ctx, getBookingByID, id))
}

const updateBooking = `
UPDATE bookings
SET field_id = ?,
    date = ?,
    start_time = ?,
    end_time = ?,
    mixed = ?,
    notes = ?,
    room = ?,
    updated_at = CURRENT_TIMESTAMP
WHERE id = ?
RETURNING ` + bookingColumns

type UpdateBookingParams struct {
	ID        int64
	FieldID   int64
	Date      string
	StartTime string
	EndTime   string
	Mixed     bool
	Notes     sql.NullString
	Room      sql.NullString
}

func (q *Queries) UpdateBooking(ctx context.Context, arg UpdateBookingParams) (Booking, error) {
	row := q.db.QueryRowContext(ctx, updateBooking,
		arg.FieldID,
		arg.Date,
		arg.StartTime,
		arg.EndTime,
		arg.Mixed,
		arg.Notes,
		arg.Room,
		arg.ID,
	)
	return scanBooking(row)
}

const updateBookingStatus = `
UPDATE bookings
SET status = ?,
    updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`

// UpdateBookingStatus returns the number of updated rows.
func (q *Queries) UpdateBookingStatus(ctx context.Context, id, status int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateBookingStatus, status, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listBookings = `
SELECT ` + bookingColumns + `
FROM bookings
WHERE (? IS NULL OR status = ?)
  AND (? IS NULL OR user_id = ?)
  AND (? IS NULL OR field_id = ?)
  AND (? IS NULL OR date = ?)
ORDER BY date, start_time, id
`

type ListBookingsParams struct {
	Status  sql.NullInt64
	UserID  sql.NullInt64
	FieldID sql.NullInt64
	Date    sql.NullString
}

func (q *Queries) ListBookings(ctx context.Context, arg ListBookingsParams) ([]Booking, error) {
	rows, err := q.db.QueryContext(ctx, listBookings,
		arg.Status, arg.Status,
		arg.UserID, arg.UserID,
		arg.FieldID, arg.FieldID,
		arg.Date, arg.Date,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBookings(rows)
}

const listConfirmedBookings = `
SELECT ` + bookingColumns + `
FROM bookings
WHERE field_id = ?
  AND date = ?
  AND status = 2
ORDER BY start_time
`

func (q *Queries) ListConfirmedBookings(ctx context.Context, fieldID int64, date string) ([]Booking, error) {
	rows, err := q.db.QueryContext(ctx, listConfirmedBookings, fieldID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBookings(rows)
}

const countOverlappingConfirmed = `
SELECT COUNT(*)
FROM bookings
WHERE field_id = ?
  AND date = ?
  AND status = 2
  AND id <> ?
  AND start_time < ?
  AND ? < end_time
`

type CountOverlappingConfirmedParams struct {
	FieldID   int64
	Date      string
	ExcludeID int64
	StartTime string
	EndTime   string
}

// CountOverlappingConfirmed counts confirmed bookings whose half-open
// interval intersects [StartTime, EndTime) on the given field and date,
// excluding ExcludeID (pass zero when creating).
func (q *Queries) CountOverlappingConfirmed(ctx context.Context, arg CountOverlappingConfirmedParams) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countOverlappingConfirmed,
		arg.FieldID,
		arg.Date,
		arg.ExcludeID,
		arg.EndTime,
		arg.StartTime,
	).Scan(&count)
	return count, err
}

const listBookingViews = `
SELECT b.id,
       b.field_id,
       f.description,
       b.user_id,
       COALESCE(TRIM(u.name || ' ' || u.surname), b.unregistered_name, '') AS requester_name,
       b.date,
       b.start_time,
       b.end_time,
       b.status,
       b.mixed,
       b.notes,
       b.room
FROM bookings b
JOIN fields f ON f.id = b.field_id
LEFT JOIN users u ON u.id = b.user_id
WHERE (? IS NULL OR b.status = ?)
  AND (? IS NULL OR b.user_id = ?)
  AND (? IS NULL OR b.field_id = ?)
  AND (? IS NULL OR b.date = ?)
ORDER BY b.date, b.start_time, b.id
`

func (q *Queries) ListBookingViews(ctx context.Context, arg ListBookingsParams) ([]BookingView, error) {
	rows, err := q.db.QueryContext(ctx, listBookingViews,
		arg.Status, arg.Status,
		arg.UserID, arg.UserID,
		arg.FieldID, arg.FieldID,
		arg.Date, arg.Date,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []BookingView
	for rows.Next() {
		var v BookingView
		if err := rows.Scan(
			&v.ID,
			&v.FieldID,
			&v.FieldDescription,
			&v.UserID,
			&v.RequesterName,
			&v.Date,
			&v.StartTime,
			&v.EndTime,
			&v.Status,
			&v.Mixed,
			&v.Notes,
			&v.Room,
		); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (Booking, error) {
	var b Booking
	err := row.Scan(
		&b.ID,
		&b.FieldID,
		&b.UserID,
		&b.UnregisteredName,
		&b.Date,
		&b.StartTime,
		&b.EndTime,
		&b.Status,
		&b.Mixed,
		&b.Notes,
		&b.Room,
	)
	return b, err
}

func scanBookings(rows *sql.Rows) ([]Booking, error) {
	var bookings []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
