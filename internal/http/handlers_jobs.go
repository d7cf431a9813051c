package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dsjohal14/buildq/internal/libs/jobs"
	"github.com/go-chi/chi/v5"
)

// HandleSubmit enqueues a build for a branch.
// The job is rejected with 429 when the queue is at capacity.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn().Err(err).Msg("invalid submit request")
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}

	if req.Branch == "" {
		writeError(w, http.StatusBadRequest, "branch is required", "MISSING_BRANCH")
		return
	}
	if req.Requester == "" {
		writeError(w, http.StatusBadRequest, "requester is required", "MISSING_REQUESTER")
		return
	}

	j := h.sched.Submit(req.Branch, req.Requester)
	if j.Status == jobs.StatusCancelled {
		writeError(w, http.StatusTooManyRequests, "build queue is full", "QUEUE_FULL")
		return
	}

	writeJSON(w, http.StatusAccepted, SubmitResponse{
		JobID:  j.ID,
		Branch: j.Branch,
		Status: j.Status.String(),
	})
}

// HandleListJobs returns all jobs still in the queue, in submission order.
func (h *Handler) HandleListJobs(w http.ResponseWriter, r *http.Request) {
	list := h.sched.ListJobs()

	views := make([]JobView, len(list))
	for i, j := range list {
		views[i] = JobView{
			JobID:     j.ID,
			Branch:    j.Branch,
			Requester: j.Requester,
			Status:    j.Status.String(),
			CreatedAt: j.CreatedAt,
		}
	}

	writeJSON(w, http.StatusOK, ListResponse{Jobs: views, Count: len(views)})
}

// HandleCancel cancels a queued job by id.
// The requester performing the cancel is read from the X-Requester
// header and routed into the cancellation notifications.
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id", "INVALID_ID")
		return
	}

	canceller := r.Header.Get("X-Requester")
	if canceller == "" {
		canceller = "anonymous"
	}

	switch h.sched.CancelRequest(id, canceller) {
	case jobs.CancelNotFound:
		writeError(w, http.StatusNotFound, "job not found", "JOB_NOT_FOUND")
	case jobs.CancelInProgress:
		writeError(w, http.StatusConflict, "job is already running and cannot be cancelled", "CANCEL_IN_PROGRESS")
	case jobs.Cancelled:
		writeJSON(w, http.StatusOK, CancelResponse{
			JobID:     id,
			Cancelled: true,
			Message:   "job cancelled by " + canceller,
		})
	}
}
