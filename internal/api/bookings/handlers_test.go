package bookings

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/fieldbook/fieldbook/internal/config"
	appdb "github.com/fieldbook/fieldbook/internal/db"
	"github.com/fieldbook/fieldbook/internal/testutil"
)

func setupTest(t *testing.T) *appdb.DB {
	t.Helper()
	database := testutil.NewTestDB(t)

	initOnce = sync.Once{}
	queries = nil
	manager = nil
	projector = nil
	mailer = nil
	InitHandlers(database, config.BookingConfig{OpensAt: "08:00", ClosesAt: "24:00", SlotMinutes: 60}, nil)

	return database
}

func newTestMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/bookings", HandleBookingCreate)
	mux.HandleFunc("GET /api/v1/bookings", HandleBookingsList)
	mux.HandleFunc("GET /api/v1/bookings/calendar", HandleCalendarView)
	mux.HandleFunc("PUT /api/v1/bookings/{id}", HandleBookingUpdate)
	mux.HandleFunc("PUT /api/v1/bookings/{id}/status", HandleBookingStatusUpdate)
	return mux
}

func doJSON(t *testing.T, mux *http.ServeMux, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func seedField(t *testing.T, database *appdb.DB, active bool) appdb.Field {
	t.Helper()
	field, err := database.Queries.CreateField(context.Background(), "Center court", active)
	if err != nil {
		t.Fatalf("create field: %v", err)
	}
	return field
}

func TestHandleBookingCreate(t *testing.T) {
	database := setupTest(t)
	field := seedField(t, database, true)
	mux := newTestMux()

	rec := doJSON(t, mux, http.MethodPost, "/api/v1/bookings", map[string]any{
		"field_id":          field.ID,
		"date":              "2030-06-10",
		"start_time":        "10:00",
		"unregistered_name": "FC Handlers",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp bookingResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.EndTime != "11:00" {
		t.Errorf("expected defaulted end time 11:00, got %s", resp.EndTime)
	}
	if resp.StatusLabel != "incoming" {
		t.Errorf("expected incoming, got %s", resp.StatusLabel)
	}
}

func TestHandleBookingCreateValidation(t *testing.T) {
	database := setupTest(t)
	field := seedField(t, database, true)
	mux := newTestMux()

	rec := doJSON(t, mux, http.MethodPost, "/api/v1/bookings", map[string]any{
		"field_id":   field.ID,
		"date":       "2030-06-10",
		"start_time": "10:00",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing requester: expected 400, got %d", rec.Code)
	}

	rec = doJSON(t, mux, http.MethodPost, "/api/v1/bookings", map[string]any{
		"field_id":          field.ID,
		"date":              "2030-06-10",
		"start_time":        "10:00",
		"unregistered_name": "FC Unknown Field",
		"unknown_field":     true,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown JSON field: expected 400, got %d", rec.Code)
	}

	rec = doJSON(t, mux, http.MethodPost, "/api/v1/bookings", map[string]any{
		"field_id":          int64(999),
		"date":              "2030-06-10",
		"start_time":        "10:00",
		"unregistered_name": "FC Ghost",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown field id: expected 404, got %d", rec.Code)
	}
}

func TestHandleBookingCreateConflict(t *testing.T) {
	database := setupTest(t)
	field := seedField(t, database, true)
	mux := newTestMux()

	rec := doJSON(t, mux, http.MethodPost, "/api/v1/bookings", map[string]any{
		"field_id":          field.ID,
		"date":              "2030-06-10",
		"start_time":        "10:00",
		"end_time":          "12:00",
		"unregistered_name": "FC First",
		"confirmed":         true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, mux, http.MethodPost, "/api/v1/bookings", map[string]any{
		"field_id":          field.ID,
		"date":              "2030-06-10",
		"start_time":        "11:00",
		"unregistered_name": "FC Second",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}

	var errResp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if errResp["error"] == "" {
		t.Error("expected error message in body")
	}
}

func TestHandleBookingStatusUpdate(t *testing.T) {
	database := setupTest(t)
	field := seedField(t, database, true)
	mux := newTestMux()

	rec := doJSON(t, mux, http.MethodPost, "/api/v1/bookings", map[string]any{
		"field_id":          field.ID,
		"date":              "2030-06-10",
		"start_time":        "10:00",
		"unregistered_name": "FC Status",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", rec.Code)
	}
	var created bookingResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}

	target := fmt.Sprintf("/api/v1/bookings/%d/status", created.ID)
	rec = doJSON(t, mux, http.MethodPut, target, map[string]any{"status": 2})
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var confirmed bookingResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &confirmed); err != nil {
		t.Fatalf("decode confirmed: %v", err)
	}
	if confirmed.StatusLabel != "confirmed" {
		t.Errorf("expected confirmed, got %s", confirmed.StatusLabel)
	}

	// Confirmed -> rejected is not an edge of the state machine.
	rec = doJSON(t, mux, http.MethodPut, target, map[string]any{"status": 3})
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for forbidden transition, got %d", rec.Code)
	}

	// Unknown status value.
	rec = doJSON(t, mux, http.MethodPut, target, map[string]any{"status": 42})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown status, got %d", rec.Code)
	}

	// Unknown booking.
	rec = doJSON(t, mux, http.MethodPut, "/api/v1/bookings/9999/status", map[string]any{"status": 2})
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown booking, got %d", rec.Code)
	}
}

func TestHandleBookingStatusUpdateSendsEmail(t *testing.T) {
	database := setupTest(t)
	field := seedField(t, database, true)

	sent := make(chan string, 1)
	mailer = emailRecorder{sent: sent}
	mux := newTestMux()

	user, err := database.Queries.CreateUser(context.Background(), appdb.CreateUserParams{
		Name:    "Alan",
		Surname: "Turing",
		Email:   sql.NullString{String: "alan@example.com", Valid: true},
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	rec := doJSON(t, mux, http.MethodPost, "/api/v1/bookings", map[string]any{
		"field_id":   field.ID,
		"date":       "2030-06-10",
		"start_time": "10:00",
		"user_id":    user.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created bookingResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}

	rec = doJSON(t, mux, http.MethodPut, fmt.Sprintf("/api/v1/bookings/%d/status", created.ID), map[string]any{"status": 2})
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm: expected 200, got %d", rec.Code)
	}

	select {
	case recipient := <-sent:
		if recipient != "alan@example.com" {
			t.Errorf("expected email to alan@example.com, got %s", recipient)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for status email")
	}
}

type emailRecorder struct {
	sent chan string
}

func (r emailRecorder) Send(ctx context.Context, recipient, subject, body string) error {
	r.sent <- recipient
	return nil
}

func TestHandleBookingUpdate(t *testing.T) {
	database := setupTest(t)
	field := seedField(t, database, true)
	mux := newTestMux()

	rec := doJSON(t, mux, http.MethodPost, "/api/v1/bookings", map[string]any{
		"field_id":          field.ID,
		"date":              "2030-06-10",
		"start_time":        "10:00",
		"unregistered_name": "FC Update",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", rec.Code)
	}
	var created bookingResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}

	rec = doJSON(t, mux, http.MethodPut, fmt.Sprintf("/api/v1/bookings/%d", created.ID), map[string]any{
		"field_id":   field.ID,
		"date":       "2030-06-12",
		"start_time": "15:00",
		"end_time":   "17:00",
		"notes":      "rescheduled",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var updated bookingResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode updated: %v", err)
	}
	if updated.Date != "2030-06-12" || updated.StartTime != "15:00" || updated.EndTime != "17:00" {
		t.Errorf("unexpected interval: %s %s-%s", updated.Date, updated.StartTime, updated.EndTime)
	}
	if updated.Notes != "rescheduled" {
		t.Errorf("expected notes persisted, got %q", updated.Notes)
	}
}

func TestHandleBookingsListAndCalendar(t *testing.T) {
	database := setupTest(t)
	field := seedField(t, database, true)
	mux := newTestMux()

	for _, start := range []string{"10:00", "14:00"} {
		rec := doJSON(t, mux, http.MethodPost, "/api/v1/bookings", map[string]any{
			"field_id":          field.ID,
			"date":              "2030-06-10",
			"start_time":        start,
			"unregistered_name": "FC List",
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("create %s: expected 201, got %d", start, rec.Code)
		}
	}

	rec := doJSON(t, mux, http.MethodGet, "/api/v1/bookings?date=2030-06-10&status=1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	var listed []bookingResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 bookings, got %d", len(listed))
	}
	if listed[0].StartTime > listed[1].StartTime {
		t.Error("bookings not ordered by start time")
	}

	rec = doJSON(t, mux, http.MethodGet, "/api/v1/bookings/calendar?date=2030-06-10", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("calendar: expected 200, got %d", rec.Code)
	}
	var calendar []bookingViewResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &calendar); err != nil {
		t.Fatalf("decode calendar: %v", err)
	}
	if len(calendar) != 2 {
		t.Fatalf("expected 2 calendar rows, got %d", len(calendar))
	}
	if calendar[0].FieldDescription != "Center court" {
		t.Errorf("expected field description, got %q", calendar[0].FieldDescription)
	}
	if calendar[0].RequesterName != "FC List" {
		t.Errorf("expected requester name, got %q", calendar[0].RequesterName)
	}

	// Calendar requires a date.
	rec = doJSON(t, mux, http.MethodGet, "/api/v1/bookings/calendar", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without date, got %d", rec.Code)
	}
}
