// internal/api/fields/handlers.go
package fields

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fieldbook/fieldbook/internal/api/apiutil"
	appdb "github.com/fieldbook/fieldbook/internal/db"
)

const fieldQueryTimeout = 5 * time.Second

var (
	queries     *appdb.Queries
	queriesOnce sync.Once
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(database *appdb.DB) {
	if database == nil {
		return
	}
	queriesOnce.Do(func() {
		queries = database.Queries
	})
}

type fieldResponse struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
}

type fieldActiveRequest struct {
	Active bool `json:"active"`
}

// GET /api/v1/fields
func HandleFieldsList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), fieldQueryTimeout)
	defer cancel()

	fieldRows, err := q.ListFields(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list fields")
		http.Error(w, "Failed to list fields", http.StatusInternalServerError)
		return
	}

	response := make([]fieldResponse, 0, len(fieldRows))
	for _, field := range fieldRows {
		response = append(response, fieldResponse{
			ID:          field.ID,
			Description: field.Description,
			Active:      field.Active,
		})
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, response); err != nil {
		logger.Error().Err(err).Msg("Failed to write field list response")
	}
}

// PUT /api/v1/fields/{id}/active
func HandleFieldActiveUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	fieldID, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		http.Error(w, "Invalid field ID", http.StatusBadRequest)
		return
	}

	var req fieldActiveRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), fieldQueryTimeout)
	defer cancel()

	rows, err := q.SetFieldActive(ctx, fieldID, req.Active)
	if err != nil {
		logger.Error().Err(err).Int64("field_id", fieldID).Msg("Failed to update field active flag")
		http.Error(w, "Failed to update field", http.StatusInternalServerError)
		return
	}
	if rows == 0 {
		apiutil.WriteError(w, http.StatusNotFound, "field not found")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"id": fieldID, "active": req.Active}); err != nil {
		logger.Error().Err(err).Int64("field_id", fieldID).Msg("Failed to write field response")
	}
}

func loadQueries() *appdb.Queries {
	return queries
}
