// internal/db/sqlite.go
package db

import (
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// IsOverlapViolation reports whether err comes from the
// bookings_confirmed_overlap triggers defined in the migrations.
func IsOverlapViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code == sqlite3.ErrConstraint &&
		strings.Contains(sqliteErr.Error(), "overlapping confirmed booking")
}

// IsForeignKeyViolation reports whether err is a SQLite foreign key
// constraint failure.
func IsForeignKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
}
