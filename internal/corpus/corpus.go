// Package corpus supplies job postings to the matching engine and tracks
// per-user saved jobs. The engine itself never owns the corpus; callers
// pick a provider (database-backed or in-memory) per deployment.
package corpus

import (
	"context"
	"strings"
	"sync"

	"github.com/jonathan/job-matcher/internal/types"
)

// Provider serves the job corpus for match requests.
type Provider interface {
	// Jobs returns the postings to match against, optionally narrowed to
	// one category. Order is stable across calls.
	Jobs(ctx context.Context, category string) ([]types.JobPosting, error)
	// SavedJobIDs returns the IDs of the jobs a user has saved.
	SavedJobIDs(ctx context.Context, userID string) (map[string]struct{}, error)
}

// Memory is an in-process Provider for tests and single-node deployments.
type Memory struct {
	mu    sync.RWMutex
	jobs  []types.JobPosting
	saved map[string]map[string]struct{} // userID -> job IDs
}

// NewMemory builds a provider over a fixed posting list.
func NewMemory(jobs []types.JobPosting) *Memory {
	return &Memory{
		jobs:  append([]types.JobPosting(nil), jobs...),
		saved: make(map[string]map[string]struct{}),
	}
}

// Jobs returns the postings in insertion order.
func (m *Memory) Jobs(_ context.Context, category string) ([]types.JobPosting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if category == "" {
		return append([]types.JobPosting(nil), m.jobs...), nil
	}
	var out []types.JobPosting
	for _, job := range m.jobs {
		if strings.EqualFold(job.Category, category) {
			out = append(out, job)
		}
	}
	return out, nil
}

// SavedJobIDs returns a copy of the user's saved set.
func (m *Memory) SavedJobIDs(_ context.Context, userID string) (map[string]struct{}, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]struct{}, len(m.saved[userID]))
	for id := range m.saved[userID] {
		out[id] = struct{}{}
	}
	return out, nil
}

// Save marks a job as saved for a user.
func (m *Memory) Save(userID, jobID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saved[userID] == nil {
		m.saved[userID] = make(map[string]struct{})
	}
	m.saved[userID][jobID] = struct{}{}
}

// Unsave removes a job from a user's saved set.
func (m *Memory) Unsave(userID, jobID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.saved[userID], jobID)
}

// AnnotateSaved flips IsSaved on the results matching the saved set. It is
// applied after cache retrieval so the flag always reflects the caller's
// live saved-jobs list.
func AnnotateSaved(results []types.MatchResult, saved map[string]struct{}) {
	if len(saved) == 0 {
		return
	}
	for i := range results {
		if _, ok := saved[results[i].JobID]; ok {
			results[i].IsSaved = true
		}
	}
}
