package httpapi

import (
	"net/http"
	"strconv"

	"github.com/dsjohal14/buildq/internal/buildlog"
)

const defaultBuildsLimit = 10

// HandleListBuilds returns recent finished builds, newest first.
// An optional ?limit= caps the number of records.
func (h *Handler) HandleListBuilds(w http.ResponseWriter, r *http.Request) {
	limit := defaultBuildsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit", "INVALID_LIMIT")
			return
		}
		limit = n
	}

	var records []buildlog.Record
	if h.builds != nil {
		var err error
		records, err = h.builds.Recent(limit)
		if err != nil {
			h.logger.Error().Err(err).Msg("failed to list builds")
			writeError(w, http.StatusInternalServerError, "failed to list builds", "BUILDS_UNAVAILABLE")
			return
		}
	}
	if records == nil {
		records = []buildlog.Record{}
	}

	writeJSON(w, http.StatusOK, BuildsResponse{Builds: records, Count: len(records)})
}
