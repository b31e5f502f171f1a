package apiutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fieldbook/fieldbook/internal/booking"
)

func TestBookingError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", fmt.Errorf("field 7: %w", booking.ErrNotFound), http.StatusNotFound},
		{"slot unavailable", booking.ErrSlotUnavailable, http.StatusConflict},
		{"validation", booking.ValidationError{Field: "date", Reason: "must be a valid YYYY-MM-DD date"}, http.StatusBadRequest},
		{"forbidden transition", booking.InvalidTransitionError{From: booking.StatusConfirmed, To: booking.StatusRejected}, http.StatusConflict},
		{"terminal state", booking.InvalidStateError{Status: booking.StatusDeleted}, http.StatusConflict},
	}

	for _, tc := range cases {
		handlerErr, ok := BookingError(tc.err)
		if !ok {
			t.Errorf("%s: expected mapping", tc.name)
			continue
		}
		if handlerErr.Status != tc.status {
			t.Errorf("%s: expected status %d, got %d", tc.name, tc.status, handlerErr.Status)
		}
		if handlerErr.Message == "" {
			t.Errorf("%s: expected a message", tc.name)
		}
		// The original error stays reachable through the wrapper.
		if !errors.Is(handlerErr, tc.err) && !errors.Is(handlerErr.Unwrap(), tc.err) {
			t.Errorf("%s: wrapped error lost", tc.name)
		}
	}

	if _, ok := BookingError(errors.New("disk on fire")); ok {
		t.Error("internal errors must not map to a response")
	}
}

func TestHandlerErrorWriteTo(t *testing.T) {
	handlerErr, ok := BookingError(booking.ErrSlotUnavailable)
	if !ok {
		t.Fatal("expected mapping")
	}

	rec := httptest.NewRecorder()
	handlerErr.WriteTo(rec)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "slot unavailable, pick another slot" {
		t.Errorf("unexpected error message: %q", body["error"])
	}
}
