package jobs

import "testing"

func newJob(id int64, branch string) *Job {
	return &Job{ID: id, Branch: branch, Requester: "tester", Status: StatusRequested}
}

func TestNewQueue(t *testing.T) {
	q := NewQueue(4)
	if q == nil {
		t.Fatal("NewQueue() returned nil")
	}

	if q.Len() != 0 {
		t.Errorf("new queue should be empty, got %d jobs", q.Len())
	}

	if q.Head() != nil {
		t.Error("head of empty queue should be nil")
	}
}

func TestAppend(t *testing.T) {
	q := NewQueue(4)

	j := newJob(1, "main")
	if !q.Append(j) {
		t.Fatal("Append() rejected a job under capacity")
	}

	if j.Status != StatusQueued {
		t.Errorf("expected status queued, got %s", j.Status)
	}

	if q.Len() != 1 {
		t.Errorf("expected 1 job in queue, got %d", q.Len())
	}

	if q.Head() != j {
		t.Error("head should be the appended job")
	}
}

func TestAppendRejectsAtCapacity(t *testing.T) {
	q := NewQueue(2)

	q.Append(newJob(1, "a"))
	q.Append(newJob(2, "b"))

	j := newJob(3, "c")
	if q.Append(j) {
		t.Fatal("Append() accepted a job over capacity")
	}

	if j.Status != StatusCancelled {
		t.Errorf("rejected job should be cancelled, got %s", j.Status)
	}

	if q.Len() != 2 {
		t.Errorf("rejected job should not be inserted, got %d jobs", q.Len())
	}
}

func TestAppendIgnoresCancelledForCapacity(t *testing.T) {
	q := NewQueue(2)

	q.Append(newJob(1, "a"))
	q.Append(newJob(2, "b"))
	q.CancelByID(2, "tester")

	// The cancelled job still occupies a slot in the sequence but
	// frees capacity for a new job.
	if !q.Append(newJob(3, "c")) {
		t.Error("Append() should accept once a queued job is cancelled")
	}

	if q.Len() != 3 {
		t.Errorf("expected 3 jobs in sequence, got %d", q.Len())
	}
}

func TestCancelByID(t *testing.T) {
	q := NewQueue(4)
	q.Append(newJob(1, "a"))
	q.Append(newJob(2, "b"))

	outcome, j := q.CancelByID(2, "alice")
	if outcome != Cancelled {
		t.Fatalf("expected Cancelled, got %v", outcome)
	}
	if j.Status != StatusCancelled {
		t.Errorf("expected status cancelled, got %s", j.Status)
	}
	if j.CancelledBy != "alice" {
		t.Errorf("expected cancelledBy alice, got %s", j.CancelledBy)
	}

	// Order is untouched: the cancelled job stays in place.
	snap := q.Snapshot()
	if len(snap) != 2 || snap[0].ID != 1 || snap[1].ID != 2 {
		t.Errorf("cancel should not reorder the queue, got %+v", snap)
	}
}

func TestCancelByIDNotFound(t *testing.T) {
	q := NewQueue(4)
	q.Append(newJob(1, "a"))

	outcome, j := q.CancelByID(99, "alice")
	if outcome != CancelNotFound {
		t.Errorf("expected CancelNotFound, got %v", outcome)
	}
	if j != nil {
		t.Error("no job should be returned for an unknown id")
	}
}

func TestCancelByIDInProgress(t *testing.T) {
	q := NewQueue(4)
	j := newJob(1, "a")
	q.Append(j)
	j.Status = StatusInProgress

	outcome, got := q.CancelByID(1, "alice")
	if outcome != CancelInProgress {
		t.Errorf("expected CancelInProgress, got %v", outcome)
	}
	if got.Status != StatusInProgress {
		t.Errorf("running job must stay in_progress, got %s", got.Status)
	}
}

func TestPopHead(t *testing.T) {
	q := NewQueue(4)
	q.Append(newJob(1, "a"))
	q.Append(newJob(2, "b"))

	q.PopHead()

	if q.Len() != 1 {
		t.Fatalf("expected 1 job after pop, got %d", q.Len())
	}
	if q.Head().ID != 2 {
		t.Errorf("expected head id 2, got %d", q.Head().ID)
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	q := NewQueue(4)
	q.Append(newJob(1, "a"))

	snap := q.Snapshot()
	snap[0].Status = StatusFinished

	if q.Head().Status != StatusQueued {
		t.Error("mutating a snapshot must not affect the queue")
	}
}

func TestStatusPredicates(t *testing.T) {
	tests := []struct {
		status   Status
		active   bool
		terminal bool
	}{
		{StatusRequested, false, false},
		{StatusQueued, true, false},
		{StatusInProgress, true, false},
		{StatusCancelled, false, true},
		{StatusFinished, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			if tt.status.Active() != tt.active {
				t.Errorf("Active() = %v, expected %v", tt.status.Active(), tt.active)
			}
			if tt.status.Terminal() != tt.terminal {
				t.Errorf("Terminal() = %v, expected %v", tt.status.Terminal(), tt.terminal)
			}
		})
	}
}
