package main

import (
	"sync"
	"time"
)

// JobStatus is the lifecycle state of a background job.
type JobStatus string

const (
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// Job tracks one background book build or rebuild for a project.
type Job struct {
	ID         string    `json:"id"`
	Project    string    `json:"project"`
	Kind       string    `json:"kind"`
	Status     JobStatus `json:"status"`
	Done       int       `json:"done"`
	Total      int       `json:"total"`
	Current    string    `json:"current,omitempty"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitzero"`
	mu         sync.Mutex
}

// Progress records that done of total steps are complete.
func (j *Job) Progress(done, total int, current string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Done, j.Total, j.Current = done, total, current
}

// Finish marks the job done, or failed when err is non-nil. Later calls
// are ignored.
func (j *Job) Finish(err error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.Status != JobRunning {
		return
	}
	j.FinishedAt = time.Now()
	j.Current = ""
	if err != nil {
		j.Status = JobFailed
		j.Error = err.Error()
		return
	}
	j.Status = JobDone
}

// Snapshot returns a copy safe to encode while the job keeps running.
func (j *Job) Snapshot() *Job {
	j.mu.Lock()
	defer j.mu.Unlock()

	return &Job{
		ID:         j.ID,
		Project:    j.Project,
		Kind:       j.Kind,
		Status:     j.Status,
		Done:       j.Done,
		Total:      j.Total,
		Current:    j.Current,
		Error:      j.Error,
		StartedAt:  j.StartedAt,
		FinishedAt: j.FinishedAt,
	}
}
