// internal/booking/errors.go
package booking

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports that a referenced field or booking does not exist.
	ErrNotFound = errors.New("not found")

	// ErrSlotUnavailable reports that the requested interval overlaps a
	// confirmed booking. This is a routine outcome: the caller should
	// re-query available slots and resubmit.
	ErrSlotUnavailable = errors.New("slot unavailable")
)

// ValidationError reports a request field that failed domain validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// InvalidTransitionError reports a status change the state machine forbids.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s -> %s", e.From, e.To)
}

// InvalidStateError reports a mutation attempted on a terminal booking.
type InvalidStateError struct {
	Status Status
}

func (e InvalidStateError) Error() string {
	return fmt.Sprintf("booking is %s and can no longer be modified", e.Status)
}

// StorageError wraps persistence failures so callers can tell "try again
// later" apart from ErrSlotUnavailable's "pick another slot".
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
