// internal/api/slots/handlers.go
package slots

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fieldbook/fieldbook/internal/api/apiutil"
	appdb "github.com/fieldbook/fieldbook/internal/db"
	slotsvc "github.com/fieldbook/fieldbook/internal/slots"
)

const slotQueryTimeout = 5 * time.Second

var (
	calculator *slotsvc.Calculator
	initOnce   sync.Once
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(database *appdb.DB, window slotsvc.Window) {
	if database == nil {
		return
	}
	initOnce.Do(func() {
		calculator = slotsvc.NewCalculator(database.Queries, window)
	})
}

// GET /api/v1/slots/available?field_id=...&date=...
func HandleAvailableSlots(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	calc := loadCalculator()
	if calc == nil {
		logger.Error().Msg("Slot calculator not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	fieldID, err := apiutil.ParsePositiveInt64Field(r.URL.Query().Get("field_id"), "field_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		http.Error(w, "date is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), slotQueryTimeout)
	defer cancel()

	available, err := calc.AvailableSlots(ctx, fieldID, date)
	if err != nil {
		if handlerErr, ok := apiutil.BookingError(err); ok {
			handlerErr.WriteTo(w)
			return
		}
		logger.Error().Err(err).Int64("field_id", fieldID).Str("date", date).Msg("Failed to compute available slots")
		http.Error(w, "Failed to compute available slots", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, available); err != nil {
		logger.Error().Err(err).Int64("field_id", fieldID).Msg("Failed to write slot response")
	}
}

func loadCalculator() *slotsvc.Calculator {
	return calculator
}
