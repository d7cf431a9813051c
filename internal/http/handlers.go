package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/dsjohal14/buildq/internal/buildlog"
	"github.com/dsjohal14/buildq/internal/scheduler"
	"github.com/rs/zerolog"
)

// Handler contains HTTP handlers for the API
type Handler struct {
	sched  *scheduler.Scheduler
	builds *buildlog.Store
	logger zerolog.Logger
}

// NewHandler creates a new HTTP handler. builds may be nil when build
// archiving is disabled; GET /builds then returns an empty list.
func NewHandler(sched *scheduler.Scheduler, builds *buildlog.Store, logger zerolog.Logger) *Handler {
	return &Handler{
		sched:  sched,
		builds: builds,
		logger: logger,
	}
}

// Helper functions used across all handlers

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response with the given status code
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
