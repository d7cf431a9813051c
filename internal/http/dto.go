// Package httpapi provides HTTP handlers and data transfer objects for the buildq API.
package httpapi

import (
	"time"

	"github.com/dsjohal14/buildq/internal/buildlog"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	QueueSize int    `json:"queue_size"`
}

// SubmitRequest represents a build submission
type SubmitRequest struct {
	Branch    string `json:"branch"`    // Branch or tag to build
	Requester string `json:"requester"` // Opaque requester handle for notifications
}

// SubmitResponse represents the submission outcome
type SubmitResponse struct {
	JobID  int64  `json:"job_id"`
	Branch string `json:"branch"`
	Status string `json:"status"`
}

// JobView represents one queued or running job in a listing
type JobView struct {
	JobID     int64     `json:"job_id"`
	Branch    string    `json:"branch"`
	Requester string    `json:"requester"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ListResponse represents the queue listing
type ListResponse struct {
	Jobs  []JobView `json:"jobs"`
	Count int       `json:"count"`
}

// CancelResponse represents a successful cancellation
type CancelResponse struct {
	JobID     int64  `json:"job_id"`
	Cancelled bool   `json:"cancelled"`
	Message   string `json:"message,omitempty"`
}

// BuildsResponse represents recent finished builds
type BuildsResponse struct {
	Builds []buildlog.Record `json:"builds"`
	Count  int               `json:"count"`
}

// ErrorResponse represents API error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
