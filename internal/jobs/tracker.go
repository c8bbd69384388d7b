// Package jobs tracks asynchronous reel compositions. The webhook endpoint
// acknowledges immediately, so the status record here is the only way a
// caller can observe the eventual outcome.
package jobs

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"liminal-reels/internal/domain"
)

// Status is the lifecycle state of a composition job.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Job is one tracked composition.
type Job struct {
	ID        string    `json:"id"`
	Theme     string    `json:"theme"`
	Status    Status    `json:"status"`
	Output    string    `json:"output,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Finished jobs older than this are swept so the map does not grow without
// bound on a long-lived service.
const defaultRetention = time.Hour

// Tracker is an in-memory job store keyed by uuid. There is no persistence
// across restarts; finished records are evicted after the retention period.
type Tracker struct {
	mu        sync.RWMutex
	jobs      map[string]Job
	retention time.Duration
	now       func() time.Time
}

// NewTracker constructs an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		jobs:      make(map[string]Job),
		retention: defaultRetention,
		now:       time.Now,
	}
}

// Create registers a queued job and returns it. Stale finished jobs are
// swept here, so the map is bounded by the webhook volume of one retention
// window.
func (t *Tracker) Create(theme string) Job {
	now := t.now()
	job := Job{
		ID:        uuid.NewString(),
		Theme:     theme,
		Status:    StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	t.mu.Lock()
	t.sweepLocked(now)
	t.jobs[job.ID] = job
	t.mu.Unlock()
	return job
}

// sweepLocked evicts finished jobs past the retention period. Queued and
// running jobs are never evicted. Callers must hold the write lock.
func (t *Tracker) sweepLocked(now time.Time) {
	cutoff := now.Add(-t.retention)
	for id, job := range t.jobs {
		if job.Status != StatusDone && job.Status != StatusFailed {
			continue
		}
		if job.UpdatedAt.Before(cutoff) {
			delete(t.jobs, id)
		}
	}
}

// Start marks a job as running.
func (t *Tracker) Start(id string) {
	t.update(id, func(j *Job) {
		j.Status = StatusRunning
	})
}

// Complete marks a job as done and records the output filename.
func (t *Tracker) Complete(id, output string) {
	t.update(id, func(j *Job) {
		j.Status = StatusDone
		j.Output = output
	})
}

// Fail marks a job as failed and records the error text.
func (t *Tracker) Fail(id string, err error) {
	t.update(id, func(j *Job) {
		j.Status = StatusFailed
		if err != nil {
			j.Error = err.Error()
		}
	})
}

// Get returns a job by id.
func (t *Tracker) Get(id string) (Job, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	job, ok := t.jobs[id]
	if !ok {
		return Job{}, domain.ErrJobNotFound
	}
	return job, nil
}

func (t *Tracker) update(id string, fn func(*Job)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	job, ok := t.jobs[id]
	if !ok {
		return
	}
	fn(&job)
	job.UpdatedAt = t.now()
	t.jobs[id] = job
}
