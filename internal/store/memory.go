package store

import (
	"context"
	"sync"
	"time"

	"github.com/jonathan/coverletter-agent/internal/types"
)

// MemoryStore is a process-local RecordStore used by the CLI and tests.
type MemoryStore struct {
	mu       sync.Mutex
	nextID   int64
	jobs     map[int64]*types.GenerationJob
	runs     map[int64]*types.PipelineRun
	postings map[int64]*types.JobPosting
}

// NewMemoryStore creates an empty in-memory record store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:   1,
		jobs:     make(map[int64]*types.GenerationJob),
		runs:     make(map[int64]*types.PipelineRun),
		postings: make(map[int64]*types.JobPosting),
	}
}

func (s *MemoryStore) allocateID() int64 {
	id := s.nextID
	s.nextID++
	return id
}

// CreateJob stores a new generation job and assigns its id.
func (s *MemoryStore) CreateJob(_ context.Context, job *types.GenerationJob) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job.ID = s.allocateID()
	now := time.Now()
	job.CreatedAt = now
	job.UpdatedAt = now
	clone := *job
	s.jobs[job.ID] = &clone
	return job.ID, nil
}

// GetJob returns a copy of the job with the given id.
func (s *MemoryStore) GetJob(_ context.Context, id int64) (*types.GenerationJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *job
	return &clone, nil
}

// UpdateJob replaces a stored job.
func (s *MemoryStore) UpdateJob(_ context.Context, job *types.GenerationJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; !ok {
		return ErrNotFound
	}
	job.UpdatedAt = time.Now()
	clone := *job
	s.jobs[job.ID] = &clone
	return nil
}

// FindJobsForUser returns every job belonging to a user.
func (s *MemoryStore) FindJobsForUser(_ context.Context, userID int64) ([]*types.GenerationJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var jobs []*types.GenerationJob
	for _, job := range s.jobs {
		if job.UserID == userID {
			clone := *job
			jobs = append(jobs, &clone)
		}
	}
	return jobs, nil
}

// CreateRun stores a new pipeline run and assigns its id.
func (s *MemoryStore) CreateRun(_ context.Context, run *types.PipelineRun) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run.ID = s.allocateID()
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	clone := *run
	s.runs[run.ID] = &clone
	return run.ID, nil
}

// GetRun returns a copy of the run with the given id.
func (s *MemoryStore) GetRun(_ context.Context, id int64) (*types.PipelineRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *run
	return &clone, nil
}

// UpdateRun replaces a stored run.
func (s *MemoryStore) UpdateRun(_ context.Context, run *types.PipelineRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[run.ID]; !ok {
		return ErrNotFound
	}
	clone := *run
	s.runs[run.ID] = &clone
	return nil
}

// CreateJobPosting stores a job posting and assigns its id.
func (s *MemoryStore) CreateJobPosting(_ context.Context, posting *types.JobPosting) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	posting.ID = s.allocateID()
	clone := *posting
	s.postings[posting.ID] = &clone
	return posting.ID, nil
}

// GetJobPosting returns a copy of the posting with the given id.
func (s *MemoryStore) GetJobPosting(_ context.Context, id int64) (*types.JobPosting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	posting, ok := s.postings[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *posting
	return &clone, nil
}
