// Package notify delivers scheduler events as structured log lines and
// archives finished builds.
package notify

import (
	"time"

	"github.com/dsjohal14/buildq/internal/buildlog"
	"github.com/dsjohal14/buildq/internal/scheduler"
	"github.com/rs/zerolog"
)

// LogNotifier implements scheduler.Notifier. Every event is logged with
// the requester it is addressed to; build outcomes are additionally
// saved to the build log store. Delivery is best effort: storage errors
// are logged and swallowed, never surfaced to the scheduler.
type LogNotifier struct {
	logger zerolog.Logger
	builds *buildlog.Store
}

// New creates a notifier. builds may be nil to disable archiving.
func New(logger zerolog.Logger, builds *buildlog.Store) *LogNotifier {
	return &LogNotifier{logger: logger, builds: builds}
}

// Notify implements scheduler.Notifier.
func (n *LogNotifier) Notify(requester string, ev scheduler.Notification) {
	e := n.logger.Info()
	if ev.Kind == scheduler.KindQueueFull || ev.Kind == scheduler.KindCancelNotFound ||
		ev.Kind == scheduler.KindCancelInProgress {
		e = n.logger.Warn()
	}
	e = e.Str("to", requester).
		Str("event", string(ev.Kind)).
		Int64("job_id", ev.JobID)
	if ev.Branch != "" {
		e = e.Str("branch", ev.Branch)
	}
	if ev.CancelledBy != "" {
		e = e.Str("cancelled_by", ev.CancelledBy)
	}
	if ev.Kind == scheduler.KindBuildFinished {
		e = e.Bool("success", ev.Success)
	}
	e.Msg("notification")

	if ev.Kind != scheduler.KindBuildFinished || n.builds == nil {
		return
	}
	rec := buildlog.Record{
		JobID:      ev.JobID,
		Branch:     ev.Branch,
		Requester:  requester,
		Success:    ev.Success,
		FinishedAt: time.Now(),
	}
	if _, err := n.builds.Save(rec, ev.Stdout, ev.Stderr); err != nil {
		n.logger.Error().Err(err).Int64("job_id", ev.JobID).Msg("failed to save build record")
	}
}
