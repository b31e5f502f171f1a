package apiutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/fieldbook/fieldbook/internal/booking"
)

// HandlerError pairs a domain error with the HTTP status and message a
// handler should respond with.
type HandlerError struct {
	Status  int
	Message string
	Err     error
}

func (e HandlerError) Error() string {
	return e.Message
}

func (e HandlerError) Unwrap() error {
	return e.Err
}

// WriteTo renders the error as the standard JSON error body.
func (e HandlerError) WriteTo(w http.ResponseWriter) {
	WriteError(w, e.Status, e.Message)
}

func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("missing request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

func WriteError(w http.ResponseWriter, status int, message string) {
	_ = WriteJSON(w, status, map[string]string{"error": message})
}

// BookingError maps the booking error taxonomy onto a HandlerError.
// It reports ok=false for errors the caller should treat as internal.
func BookingError(err error) (HandlerError, bool) {
	var validationErr booking.ValidationError
	var transitionErr booking.InvalidTransitionError
	var stateErr booking.InvalidStateError

	switch {
	case errors.Is(err, booking.ErrNotFound):
		return HandlerError{Status: http.StatusNotFound, Message: err.Error(), Err: err}, true
	case errors.Is(err, booking.ErrSlotUnavailable):
		return HandlerError{Status: http.StatusConflict, Message: "slot unavailable, pick another slot", Err: err}, true
	case errors.As(err, &validationErr):
		return HandlerError{Status: http.StatusBadRequest, Message: validationErr.Error(), Err: err}, true
	case errors.As(err, &transitionErr):
		return HandlerError{Status: http.StatusConflict, Message: transitionErr.Error(), Err: err}, true
	case errors.As(err, &stateErr):
		return HandlerError{Status: http.StatusConflict, Message: stateErr.Error(), Err: err}, true
	default:
		return HandlerError{}, false
	}
}
