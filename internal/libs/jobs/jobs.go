// Package jobs provides the build job entity and the FIFO job queue.
package jobs

import "time"

// Status represents the lifecycle state of a job.
type Status string

const (
	// StatusRequested means the job has been constructed but not yet
	// accepted by the queue.
	StatusRequested Status = "requested"

	// StatusQueued means the job is in the queue waiting for its turn.
	StatusQueued Status = "queued"

	// StatusInProgress means the build runner is executing the job.
	// At most one job is in this state, and it is always the queue head.
	StatusInProgress Status = "in_progress"

	// StatusCancelled means the job was cancelled before it started,
	// either by a cancel request or by a queue-full rejection.
	StatusCancelled Status = "cancelled"

	// StatusFinished means the build runner completed, successfully or
	// not. The outcome lives in the job's Result.
	StatusFinished Status = "finished"
)

// String returns the string representation of Status.
func (s Status) String() string {
	return string(s)
}

// Active reports whether the status counts against queue capacity.
func (s Status) Active() bool {
	return s == StatusQueued || s == StatusInProgress
}

// Terminal reports whether the status can never change again.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusFinished
}

// Result holds the outcome of a finished build.
type Result struct {
	Success bool
	Stdout  string
	Stderr  string
}

// Job represents one build request and its tracked lifecycle state.
// Jobs are owned by the Queue; callers outside the queue's lock should
// only hold copies taken via Snapshot.
type Job struct {
	ID        int64
	Branch    string
	Requester string
	Status    Status
	Result    *Result

	// CancelledBy records who issued the cancel, for notifications.
	CancelledBy string

	CreatedAt time.Time
}

// CancelOutcome is the result of a cancel-by-id request.
type CancelOutcome int

const (
	// CancelNotFound means no job with the given id is in the queue.
	CancelNotFound CancelOutcome = iota

	// CancelInProgress means the job is already running and cannot be
	// cancelled.
	CancelInProgress

	// Cancelled means the job was still waiting and is now cancelled.
	Cancelled
)

// Queue is an ordered FIFO sequence of jobs. Submission order is the
// only order; cancelled jobs stay in place until they reach the head
// and are drained. The queue enforces a capacity limit on active jobs
// (queued or in progress); cancelled jobs do not count against it.
//
// Queue is not safe for concurrent use; the scheduler serializes all
// access under its own lock.
type Queue struct {
	jobs     []*Job
	capacity int
}

// NewQueue creates a queue that admits at most capacity active jobs.
func NewQueue(capacity int) *Queue {
	return &Queue{
		jobs:     make([]*Job, 0),
		capacity: capacity,
	}
}

// activeCount counts jobs whose status is queued or in progress.
func (q *Queue) activeCount() int {
	n := 0
	for _, j := range q.jobs {
		if j.Status.Active() {
			n++
		}
	}
	return n
}

// Append adds the job to the tail with status queued and returns true.
// If the active-job count has already reached capacity, the job is
// marked cancelled, not inserted, and false is returned; notifying the
// requester is the caller's responsibility.
func (q *Queue) Append(j *Job) bool {
	if q.activeCount() >= q.capacity {
		j.Status = StatusCancelled
		return false
	}
	j.Status = StatusQueued
	q.jobs = append(q.jobs, j)
	return true
}

// CancelByID cancels the waiting job with the given id.
// Ids are unique, so at most one job matches.
func (q *Queue) CancelByID(id int64, cancelledBy string) (CancelOutcome, *Job) {
	for _, j := range q.jobs {
		if j.ID != id {
			continue
		}
		if j.Status == StatusInProgress {
			return CancelInProgress, j
		}
		j.Status = StatusCancelled
		j.CancelledBy = cancelledBy
		return Cancelled, j
	}
	return CancelNotFound, nil
}

// Head returns the first job without removing it, or nil if empty.
func (q *Queue) Head() *Job {
	if len(q.jobs) == 0 {
		return nil
	}
	return q.jobs[0]
}

// PopHead removes the first job. Callers guard against an empty queue.
func (q *Queue) PopHead() {
	q.jobs[0] = nil // release for GC
	q.jobs = q.jobs[1:]
}

// Len returns the number of jobs still in the sequence, cancelled
// included.
func (q *Queue) Len() int {
	return len(q.jobs)
}

// Snapshot returns copies of all jobs in queue order. The copies are
// detached from the queue and safe to read after the lock is released.
func (q *Queue) Snapshot() []Job {
	out := make([]Job, len(q.jobs))
	for i, j := range q.jobs {
		out[i] = *j
	}
	return out
}
