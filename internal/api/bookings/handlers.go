// internal/api/bookings/handlers.go
package bookings

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fieldbook/fieldbook/internal/api/apiutil"
	"github.com/fieldbook/fieldbook/internal/booking"
	"github.com/fieldbook/fieldbook/internal/config"
	appdb "github.com/fieldbook/fieldbook/internal/db"
	"github.com/fieldbook/fieldbook/internal/email"
	"github.com/fieldbook/fieldbook/internal/views"
)

const bookingQueryTimeout = 5 * time.Second

var (
	queries   *appdb.Queries
	manager   *booking.Manager
	projector *views.Projector
	mailer    email.EmailSender
	initOnce  sync.Once
)

// InitHandlers must be called during server startup before handling requests.
// emailClient may be nil, in which case status notifications are skipped.
func InitHandlers(database *appdb.DB, cfg config.BookingConfig, emailClient email.EmailSender) {
	if database == nil {
		return
	}
	initOnce.Do(func() {
		queries = database.Queries
		manager = booking.NewManager(database, cfg)
		projector = views.NewProjector(database.Queries)
		mailer = emailClient
	})
}

type createBookingRequest struct {
	FieldID          int64  `json:"field_id"`
	Date             string `json:"date"`
	StartTime        string `json:"start_time"`
	EndTime          string `json:"end_time"`
	UserID           *int64 `json:"user_id"`
	UnregisteredName string `json:"unregistered_name"`
	Mixed            bool   `json:"mixed"`
	Notes            string `json:"notes"`
	Room             string `json:"room"`
	Confirmed        bool   `json:"confirmed"`
}

type updateBookingRequest struct {
	FieldID   int64  `json:"field_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Mixed     bool   `json:"mixed"`
	Notes     string `json:"notes"`
	Room      string `json:"room"`
}

type statusRequest struct {
	Status int64 `json:"status"`
}

type bookingResponse struct {
	ID               int64  `json:"id"`
	FieldID          int64  `json:"field_id"`
	UserID           *int64 `json:"user_id,omitempty"`
	UnregisteredName string `json:"unregistered_name,omitempty"`
	Date             string `json:"date"`
	StartTime        string `json:"start_time"`
	EndTime          string `json:"end_time"`
	Status           int64  `json:"status"`
	StatusLabel      string `json:"status_label"`
	Mixed            bool   `json:"mixed"`
	Notes            string `json:"notes,omitempty"`
	Room             string `json:"room,omitempty"`
}

type bookingViewResponse struct {
	ID               int64  `json:"id"`
	FieldID          int64  `json:"field_id"`
	FieldDescription string `json:"field_description"`
	RequesterName    string `json:"requester_name"`
	Date             string `json:"date"`
	StartTime        string `json:"start_time"`
	EndTime          string `json:"end_time"`
	Status           int64  `json:"status"`
	StatusLabel      string `json:"status_label"`
	Mixed            bool   `json:"mixed"`
	Notes            string `json:"notes,omitempty"`
	Room             string `json:"room,omitempty"`
}

// POST /api/v1/bookings
func HandleBookingCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	mgr := loadManager()
	if mgr == nil {
		logger.Error().Msg("Booking manager not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var req createBookingRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingQueryTimeout)
	defer cancel()

	created, err := mgr.Create(ctx, booking.CreateRequest{
		FieldID:          req.FieldID,
		Date:             req.Date,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		UserID:           req.UserID,
		UnregisteredName: req.UnregisteredName,
		Mixed:            req.Mixed,
		Notes:            req.Notes,
		Room:             req.Room,
		Confirmed:        req.Confirmed,
	})
	if err != nil {
		writeBookingError(w, logger, err, "Failed to create booking")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, toBookingResponse(created)); err != nil {
		logger.Error().Err(err).Int64("booking_id", created.ID).Msg("Failed to write booking response")
	}
}

// PUT /api/v1/bookings/{id}
func HandleBookingUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	mgr := loadManager()
	if mgr == nil {
		logger.Error().Msg("Booking manager not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	id, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		http.Error(w, "Invalid booking ID", http.StatusBadRequest)
		return
	}

	var req updateBookingRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingQueryTimeout)
	defer cancel()

	updated, err := mgr.Update(ctx, id, booking.UpdateRequest{
		FieldID:   req.FieldID,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Mixed:     req.Mixed,
		Notes:     req.Notes,
		Room:      req.Room,
	})
	if err != nil {
		writeBookingError(w, logger, err, "Failed to update booking")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, toBookingResponse(updated)); err != nil {
		logger.Error().Err(err).Int64("booking_id", id).Msg("Failed to write booking response")
	}
}

// PUT /api/v1/bookings/{id}/status
func HandleBookingStatusUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	mgr := loadManager()
	if mgr == nil {
		logger.Error().Msg("Booking manager not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	id, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		http.Error(w, "Invalid booking ID", http.StatusBadRequest)
		return
	}

	var req statusRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	target := booking.Status(req.Status)

	ctx, cancel := context.WithTimeout(r.Context(), bookingQueryTimeout)
	defer cancel()

	if err := mgr.TransitionStatus(ctx, id, target); err != nil {
		writeBookingError(w, logger, err, "Failed to update booking status")
		return
	}

	updated, err := mgr.Get(ctx, id)
	if err != nil {
		writeBookingError(w, logger, err, "Failed to load booking")
		return
	}

	notifyStatusChange(ctx, logger, updated, target)

	if err := apiutil.WriteJSON(w, http.StatusOK, toBookingResponse(updated)); err != nil {
		logger.Error().Err(err).Int64("booking_id", id).Msg("Failed to write booking response")
	}
}

// GET /api/v1/bookings?status=&user_id=&field_id=&date=
func HandleBookingsList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	mgr := loadManager()
	if mgr == nil {
		logger.Error().Msg("Booking manager not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	filter, err := filterFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingQueryTimeout)
	defer cancel()

	bookingRows, err := mgr.List(ctx, filter)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list bookings")
		http.Error(w, "Failed to list bookings", http.StatusInternalServerError)
		return
	}

	response := make([]bookingResponse, 0, len(bookingRows))
	for _, b := range bookingRows {
		response = append(response, toBookingResponse(b))
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, response); err != nil {
		logger.Error().Err(err).Msg("Failed to write booking list response")
	}
}

// GET /api/v1/bookings/calendar?date=...&status=...
func HandleCalendarView(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	proj := loadProjector()
	if proj == nil {
		logger.Error().Msg("Booking projector not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		http.Error(w, "date is required", http.StatusBadRequest)
		return
	}
	if _, err := booking.ParseDate(date); err != nil {
		http.Error(w, "date must be a valid YYYY-MM-DD date", http.StatusBadRequest)
		return
	}

	status, err := statusFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingQueryTimeout)
	defer cancel()

	viewRows, err := proj.ForDate(ctx, date, status)
	if err != nil {
		logger.Error().Err(err).Str("date", date).Msg("Failed to project calendar view")
		http.Error(w, "Failed to load calendar", http.StatusInternalServerError)
		return
	}

	response := make([]bookingViewResponse, 0, len(viewRows))
	for _, v := range viewRows {
		response = append(response, toBookingViewResponse(v))
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, response); err != nil {
		logger.Error().Err(err).Str("date", date).Msg("Failed to write calendar response")
	}
}

// notifyStatusChange emails registered requesters about confirmations and
// rejections. Failures are logged and never affect the response.
func notifyStatusChange(ctx context.Context, logger *zerolog.Logger, b appdb.Booking, to booking.Status) {
	if mailer == nil || !b.UserID.Valid {
		return
	}
	if to != booking.StatusConfirmed && to != booking.StatusRejected {
		return
	}

	q := queries
	if q == nil {
		return
	}

	details := email.BookingDetails{
		FieldDescription: fieldDescription(ctx, q, b.FieldID),
		Date:             b.Date,
		TimeRange:        email.FormatTimeRange(b.StartTime, b.EndTime),
	}
	if b.Room.Valid {
		details.Room = b.Room.String
	}

	var notification email.StatusEmail
	if to == booking.StatusConfirmed {
		notification = email.BuildConfirmationEmail(details)
	} else {
		notification = email.BuildRejectionEmail(details)
	}

	email.SendStatusEmail(ctx, q, mailer, b.UserID.Int64, notification, logger)
}

func fieldDescription(ctx context.Context, q *appdb.Queries, fieldID int64) string {
	field, err := q.GetFieldByID(ctx, fieldID)
	if err != nil {
		return ""
	}
	return field.Description
}

func filterFromQuery(r *http.Request) (booking.Filter, error) {
	var filter booking.Filter

	status, err := statusFromQuery(r)
	if err != nil {
		return filter, err
	}
	filter.Status = status

	filter.UserID, err = apiutil.ParseOptionalInt64Field(r.URL.Query().Get("user_id"), "user_id")
	if err != nil {
		return filter, err
	}
	filter.FieldID, err = apiutil.ParseOptionalInt64Field(r.URL.Query().Get("field_id"), "field_id")
	if err != nil {
		return filter, err
	}

	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date != "" {
		if _, err := booking.ParseDate(date); err != nil {
			return filter, err
		}
		filter.Date = date
	}
	return filter, nil
}

func statusFromQuery(r *http.Request) (*booking.Status, error) {
	raw, err := apiutil.ParseOptionalInt64Field(r.URL.Query().Get("status"), "status")
	if err != nil || raw == nil {
		return nil, err
	}
	status := booking.Status(*raw)
	if !status.Valid() {
		return nil, booking.ValidationError{Field: "status", Reason: "is not a known status"}
	}
	return &status, nil
}

func writeBookingError(w http.ResponseWriter, logger *zerolog.Logger, err error, fallback string) {
	if handlerErr, ok := apiutil.BookingError(err); ok {
		handlerErr.WriteTo(w)
		return
	}
	logger.Error().Err(err).Msg(fallback)
	http.Error(w, fallback, http.StatusInternalServerError)
}

func toBookingResponse(b appdb.Booking) bookingResponse {
	resp := bookingResponse{
		ID:          b.ID,
		FieldID:     b.FieldID,
		Date:        b.Date,
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		Status:      b.Status,
		StatusLabel: booking.Status(b.Status).String(),
		Mixed:       b.Mixed,
	}
	if b.UserID.Valid {
		userID := b.UserID.Int64
		resp.UserID = &userID
	}
	if b.UnregisteredName.Valid {
		resp.UnregisteredName = b.UnregisteredName.String
	}
	if b.Notes.Valid {
		resp.Notes = b.Notes.String
	}
	if b.Room.Valid {
		resp.Room = b.Room.String
	}
	return resp
}

func toBookingViewResponse(v appdb.BookingView) bookingViewResponse {
	resp := bookingViewResponse{
		ID:               v.ID,
		FieldID:          v.FieldID,
		FieldDescription: v.FieldDescription,
		RequesterName:    v.RequesterName,
		Date:             v.Date,
		StartTime:        v.StartTime,
		EndTime:          v.EndTime,
		Status:           v.Status,
		StatusLabel:      booking.Status(v.Status).String(),
		Mixed:            v.Mixed,
	}
	if v.Notes.Valid {
		resp.Notes = v.Notes.String
	}
	if v.Room.Valid {
		resp.Room = v.Room.String
	}
	return resp
}

func loadManager() *booking.Manager {
	return manager
}

func loadProjector() *views.Projector {
	return projector
}
