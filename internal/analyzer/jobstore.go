package analyzer

import (
	"sync"

	"StockRadar/internal/model"
)

// JobStore is the process-scoped record of analysis jobs. Save is a
// last-write-wins upsert; a job is written once on submit and overwritten
// once at finalization. Completed jobs are kept for the process lifetime.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]*model.AnalysisJob
}

func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[string]*model.AnalysisJob)}
}

// Save upserts a job by id.
func (s *JobStore) Save(job *model.AnalysisJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

// Get returns the current record for an id, or false when never submitted.
func (s *JobStore) Get(id string) (*model.AnalysisJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	return job, ok
}
