package httpapi

import "net/http"

// HandleHealth reports service liveness and the current queue size.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		QueueSize: len(h.sched.ListJobs()),
	})
}
