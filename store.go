package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bodul/wordsearch/internal/book"
	"github.com/bodul/wordsearch/internal/storage"
)

var errJobRunning = errors.New("a job is already running for this project")

// Store fronts the project files with an in-memory book cache, per-project
// write locks and the background job registry.
type Store struct {
	fs *storage.FS

	mu      sync.RWMutex
	books   map[string]*book.Book
	jobs    map[string]*Job
	running map[string]string // project -> running job id
	locks   map[string]*sync.Mutex
}

// NewStore creates a store over fs.
func NewStore(fs *storage.FS) *Store {
	return &Store{
		fs:      fs,
		books:   make(map[string]*book.Book),
		jobs:    make(map[string]*Job),
		running: make(map[string]string),
		locks:   make(map[string]*sync.Mutex),
	}
}

// Files returns the underlying project storage.
func (s *Store) Files() *storage.FS {
	return s.fs
}

// Lock serialises edits to one project and returns the unlock function.
func (s *Store) Lock(project string) func() {
	s.mu.Lock()
	l, ok := s.locks[project]
	if !ok {
		l = &sync.Mutex{}
		s.locks[project] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Book returns the project's book, loading it from disk on first use.
func (s *Store) Book(ctx context.Context, project string) (*book.Book, error) {
	s.mu.RLock()
	b := s.books[project]
	s.mu.RUnlock()
	if b != nil {
		return b, nil
	}

	b, err := s.fs.LoadBook(ctx, project)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.books[project] = b
	s.mu.Unlock()
	return b, nil
}

// SaveBook writes b to disk and caches it.
func (s *Store) SaveBook(ctx context.Context, project string, b *book.Book) error {
	if err := s.fs.SaveBook(ctx, project, b); err != nil {
		return err
	}
	s.mu.Lock()
	s.books[project] = b
	s.mu.Unlock()
	return nil
}

// DeleteProject removes the project from disk and drops its cached book.
func (s *Store) DeleteProject(ctx context.Context, project string) error {
	s.mu.RLock()
	_, busy := s.running[project]
	s.mu.RUnlock()
	if busy {
		return errJobRunning
	}
	if err := s.fs.Delete(ctx, project); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.books, project)
	s.mu.Unlock()
	return nil
}

// StartJob registers a running job for project. Only one job may run per
// project at a time.
func (s *Store) StartJob(project, kind string) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.running[project]; ok {
		return nil, fmt.Errorf("%w: %s", errJobRunning, id)
	}
	job := &Job{
		ID:        uuid.NewString(),
		Project:   project,
		Kind:      kind,
		Status:    JobRunning,
		StartedAt: time.Now(),
	}
	s.jobs[job.ID] = job
	s.running[project] = job.ID
	return job, nil
}

// FinishJob records the outcome and frees the project for the next job.
func (s *Store) FinishJob(job *Job, err error) {
	job.Finish(err)
	s.mu.Lock()
	if s.running[job.Project] == job.ID {
		delete(s.running, job.Project)
	}
	s.mu.Unlock()
}

// GetJob returns a job by ID, or nil if not found.
func (s *Store) GetJob(id string) *Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jobs[id]
}

// ListJobs returns the jobs of a project, most recent first.
func (s *Store) ListJobs(project string) []*Job {
	s.mu.RLock()
	list := make([]*Job, 0)
	for _, j := range s.jobs {
		if j.Project == project {
			list = append(list, j.Snapshot())
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(list, func(a, b *Job) int { return b.StartedAt.Compare(a.StartedAt) })
	return list
}
