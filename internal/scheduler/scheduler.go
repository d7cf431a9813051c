// Package scheduler drains the build job queue one job at a time.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/dsjohal14/buildq/internal/libs/jobs"
	"github.com/rs/zerolog"
)

// Runner executes a build for a branch and reports the outcome.
// Any failure (non-zero exit, process error) is folded into the Result;
// Run never returns an error to the scheduler.
type Runner interface {
	Run(ctx context.Context, branch string) jobs.Result
}

// Kind identifies a notification event.
type Kind string

const (
	// KindQueueFull means a submission was rejected at capacity.
	KindQueueFull Kind = "queue_full"

	// KindQueuedBehind is a courtesy message for jobs accepted while
	// another build is running.
	KindQueuedBehind Kind = "queued_behind_running"

	// KindBuildStarted means the job reached the head and the runner
	// was dispatched.
	KindBuildStarted Kind = "build_started"

	// KindBuildFinished carries the build outcome, success or failure.
	KindBuildFinished Kind = "build_finished"

	// KindJobCancelled means a waiting job was cancelled.
	KindJobCancelled Kind = "job_cancelled"

	// KindCancelConfirmed means the cancelled job was drained from the
	// queue head and is gone for good.
	KindCancelConfirmed Kind = "cancel_confirmed"

	// KindCancelNotFound means a cancel request named an unknown job id.
	KindCancelNotFound Kind = "cancel_not_found"

	// KindCancelInProgress means a cancel request targeted the running
	// job, which cannot be stopped.
	KindCancelInProgress Kind = "cancel_in_progress"
)

// Notification is a structured status event. Rendering it to text is
// the notifier's concern, not the scheduler's.
type Notification struct {
	Kind        Kind
	JobID       int64
	Branch      string
	Success     bool
	Stdout      string
	Stderr      string
	CancelledBy string
}

// Notifier delivers notifications to whoever submitted or cancelled a
// job. Delivery is fire-and-forget: implementations must not block and
// the scheduler never retries.
type Notifier interface {
	Notify(requester string, n Notification)
}

// Scheduler owns the job queue and enforces the single-build invariant:
// at most one runner invocation is outstanding, always for the queue
// head. All queue mutations happen under one mutex; only the runner
// call itself runs outside it, on its own goroutine.
type Scheduler struct {
	mu     sync.Mutex
	queue  *jobs.Queue
	nextID int64

	runner   Runner
	notifier Notifier
	logger   zerolog.Logger
}

// New creates a scheduler with an empty queue admitting at most
// capacity active jobs.
func New(capacity int, runner Runner, notifier Notifier, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		queue:    jobs.NewQueue(capacity),
		nextID:   1,
		runner:   runner,
		notifier: notifier,
		logger:   logger,
	}
}

// Submit enqueues a build request for the branch and returns a copy of
// the job. If the queue is full the returned job is already cancelled
// and the requester has been notified.
func (s *Scheduler) Submit(branch, requester string) jobs.Job {
	s.mu.Lock()
	j := &jobs.Job{
		ID:        s.nextID,
		Branch:    branch,
		Requester: requester,
		Status:    jobs.StatusRequested,
		CreatedAt: time.Now(),
	}
	s.nextID++

	// Remember whether a build was already running before this append,
	// for the courtesy message below.
	h := s.queue.Head()
	busy := h != nil && h.Status == jobs.StatusInProgress

	accepted := s.queue.Append(j)
	snap := *j
	s.mu.Unlock()

	if !accepted {
		s.logger.Warn().Int64("job_id", snap.ID).Str("branch", branch).Msg("queue full, job rejected")
		s.notifier.Notify(requester, Notification{Kind: KindQueueFull, JobID: snap.ID, Branch: branch})
		return snap
	}

	s.logger.Info().Int64("job_id", snap.ID).Str("branch", branch).Str("requester", requester).Msg("job queued")
	if busy {
		s.notifier.Notify(requester, Notification{Kind: KindQueuedBehind, JobID: snap.ID, Branch: branch})
	}

	s.Drain()
	return snap
}

// Drain advances the queue: it removes cancelled heads, starts the next
// eligible job, and returns once a build is running or the queue is
// empty. It is idempotent and safe to call at any time.
func (s *Scheduler) Drain() {
	for {
		s.mu.Lock()
		h := s.queue.Head()
		if h == nil {
			s.mu.Unlock()
			return
		}

		switch h.Status {
		case jobs.StatusInProgress:
			// A build is already running; completion will re-drain.
			s.mu.Unlock()
			return

		case jobs.StatusCancelled:
			s.queue.PopHead()
			snap := *h
			s.mu.Unlock()
			s.logger.Info().Int64("job_id", snap.ID).Str("branch", snap.Branch).Msg("cancelled job drained")
			s.notifier.Notify(snap.Requester, Notification{
				Kind:        KindCancelConfirmed,
				JobID:       snap.ID,
				Branch:      snap.Branch,
				CancelledBy: snap.CancelledBy,
			})
			// Consider the new head on the next loop turn.

		default: // requested or queued
			h.Status = jobs.StatusInProgress
			snap := *h
			s.mu.Unlock()
			s.logger.Info().Int64("job_id", snap.ID).Str("branch", snap.Branch).Msg("build started")
			s.notifier.Notify(snap.Requester, Notification{Kind: KindBuildStarted, JobID: snap.ID, Branch: snap.Branch})
			go s.run(snap.ID, snap.Branch, snap.Requester)
			return
		}
	}
}

// run executes the build for the current head and finishes the job.
// It runs on its own goroutine so submissions, cancels, and listings
// stay responsive while the build is underway.
func (s *Scheduler) run(id int64, branch, requester string) {
	res := s.runner.Run(context.Background(), branch)

	s.mu.Lock()
	// The running job is always the head; nothing can remove or reorder
	// it while it is in progress.
	h := s.queue.Head()
	h.Result = &res
	h.Status = jobs.StatusFinished
	s.queue.PopHead()
	s.mu.Unlock()

	s.logger.Info().Int64("job_id", id).Str("branch", branch).Bool("success", res.Success).Msg("build finished")
	s.notifier.Notify(requester, Notification{
		Kind:    KindBuildFinished,
		JobID:   id,
		Branch:  branch,
		Success: res.Success,
		Stdout:  res.Stdout,
		Stderr:  res.Stderr,
	})

	s.Drain()
}

// CancelRequest cancels a waiting job by id on behalf of canceller.
// Cancelling the running job is rejected. Cancelling a waiting head
// does not advance the queue immediately; the job is skipped on the
// next drain.
func (s *Scheduler) CancelRequest(id int64, canceller string) jobs.CancelOutcome {
	s.mu.Lock()
	outcome, j := s.queue.CancelByID(id, canceller)
	var snap jobs.Job
	if j != nil {
		snap = *j
	}
	s.mu.Unlock()

	switch outcome {
	case jobs.CancelNotFound:
		s.notifier.Notify(canceller, Notification{Kind: KindCancelNotFound, JobID: id})
	case jobs.CancelInProgress:
		s.notifier.Notify(canceller, Notification{Kind: KindCancelInProgress, JobID: id, Branch: snap.Branch})
	case jobs.Cancelled:
		s.logger.Info().Int64("job_id", id).Str("cancelled_by", canceller).Msg("job cancelled")
		n := Notification{Kind: KindJobCancelled, JobID: id, Branch: snap.Branch, CancelledBy: canceller}
		s.notifier.Notify(snap.Requester, n)
		if canceller != snap.Requester {
			s.notifier.Notify(canceller, n)
		}
	}
	return outcome
}

// ListJobs returns copies of all jobs still in the queue, in submission
// order. Finished jobs have already been drained and do not appear.
func (s *Scheduler) ListJobs() []jobs.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Snapshot()
}
