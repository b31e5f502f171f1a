package views

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/fieldbook/fieldbook/internal/booking"
	appdb "github.com/fieldbook/fieldbook/internal/db"
	"github.com/fieldbook/fieldbook/internal/testutil"
)

func newTestProjector(t *testing.T) (*Projector, *appdb.DB) {
	t.Helper()
	database := testutil.NewTestDB(t)
	return NewProjector(database.Queries), database
}

func seedBookings(t *testing.T, database *appdb.DB) (appdb.Field, appdb.User) {
	t.Helper()
	ctx := context.Background()

	field, err := database.Queries.CreateField(ctx, "Pitch B", true)
	if err != nil {
		t.Fatalf("create field: %v", err)
	}
	user, err := database.Queries.CreateUser(ctx, appdb.CreateUserParams{
		Name:    "Grace",
		Surname: "Hopper",
		Email:   sql.NullString{String: "grace@example.com", Valid: true},
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	rows := []appdb.CreateBookingParams{
		{
			FieldID:   field.ID,
			UserID:    sql.NullInt64{Int64: user.ID, Valid: true},
			Date:      "2026-03-10",
			StartTime: "10:00",
			EndTime:   "11:00",
			Status:    appdb.StatusConfirmed,
		},
		{
			FieldID:          field.ID,
			UnregisteredName: sql.NullString{String: "FC Walk-in", Valid: true},
			Date:             "2026-03-10",
			StartTime:        "12:00",
			EndTime:          "13:00",
			Status:           appdb.StatusIncoming,
			Room:             sql.NullString{String: "locker 3", Valid: true},
		},
		{
			FieldID:          field.ID,
			UnregisteredName: sql.NullString{String: "FC Elsewhere", Valid: true},
			Date:             "2026-03-11",
			StartTime:        "10:00",
			EndTime:          "11:00",
			Status:           appdb.StatusConfirmed,
		},
	}
	for _, row := range rows {
		if _, err := database.Queries.CreateBooking(ctx, row); err != nil {
			t.Fatalf("seed booking: %v", err)
		}
	}
	return field, user
}

func TestForDate(t *testing.T) {
	p, database := newTestProjector(t)
	field, _ := seedBookings(t, database)

	views, err := p.ForDate(context.Background(), "2026-03-10", nil)
	if err != nil {
		t.Fatalf("for date: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 rows for 2026-03-10, got %d", len(views))
	}

	if views[0].RequesterName != "Grace Hopper" {
		t.Errorf("expected registered name, got %q", views[0].RequesterName)
	}
	if views[1].RequesterName != "FC Walk-in" {
		t.Errorf("expected unregistered name, got %q", views[1].RequesterName)
	}
	for _, v := range views {
		if v.FieldDescription != "Pitch B" {
			t.Errorf("expected field description joined in, got %q", v.FieldDescription)
		}
		if v.FieldID != field.ID {
			t.Errorf("unexpected field id %d", v.FieldID)
		}
	}
	if !views[1].Room.Valid || views[1].Room.String != "locker 3" {
		t.Errorf("room not projected: %+v", views[1].Room)
	}
}

func TestForDateStatusFilter(t *testing.T) {
	p, database := newTestProjector(t)
	seedBookings(t, database)

	confirmed := booking.StatusConfirmed
	views, err := p.ForDate(context.Background(), "2026-03-10", &confirmed)
	if err != nil {
		t.Fatalf("for date: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 confirmed row, got %d", len(views))
	}
	if booking.Status(views[0].Status) != booking.StatusConfirmed {
		t.Errorf("expected confirmed row, got status %d", views[0].Status)
	}
}

func TestForDateInvalid(t *testing.T) {
	p, _ := newTestProjector(t)

	_, err := p.ForDate(context.Background(), "not-a-date", nil)
	var validationErr booking.ValidationError
	if !errors.As(err, &validationErr) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestForUser(t *testing.T) {
	p, database := newTestProjector(t)
	_, user := seedBookings(t, database)

	views, err := p.ForUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("for user: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 row for user, got %d", len(views))
	}
	if !views[0].UserID.Valid || views[0].UserID.Int64 != user.ID {
		t.Errorf("unexpected user id: %+v", views[0].UserID)
	}
}

func TestForStatus(t *testing.T) {
	p, database := newTestProjector(t)
	seedBookings(t, database)

	views, err := p.ForStatus(context.Background(), booking.StatusConfirmed)
	if err != nil {
		t.Fatalf("for status: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 confirmed rows across dates, got %d", len(views))
	}
	// Ordered by date then start time.
	if views[0].Date > views[1].Date {
		t.Errorf("rows out of order: %s before %s", views[0].Date, views[1].Date)
	}
}
