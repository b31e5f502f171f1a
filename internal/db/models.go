package db

import "database/sql"

// Booking status values. These are stored as integers and mirrored by the
// status type in internal/booking.
const (
	StatusIncoming  int64 = 1
	StatusConfirmed int64 = 2
	StatusRejected  int64 = 3
	StatusDeleted   int64 = 4
)

type Field struct {
	ID          int64
	Description string
	Active      bool
}

type User struct {
	ID      int64
	Name    string
	Surname string
	Email   sql.NullString
}

// Booking rows keep date as YYYY-MM-DD and start/end as zero-padded HH:MM
// wall-clock values; [StartTime, EndTime) is half-open.
type Booking struct {
	ID               int64
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

// BookingView is the denormalized read model joining requester identity and
// field description. RequesterName is the registered user's full name or the
// free-text name for unregistered requesters.
type BookingView struct {
	ID               int64
	FieldID          int64
	FieldDescription string
	UserID           sql.NullInt64
	RequesterName    string
	Date             string
	StartTime        string
	EndTime          string
	Status           int64
	Mixed            bool
	Notes            sql.NullString
	Room             sql.NullString
}
