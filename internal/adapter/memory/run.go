package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/alanyang/ticket-router/internal/domain/assignment"
	portrun "github.com/alanyang/ticket-router/internal/port/run"
)

var _ portrun.Repository = (*RunRepository)(nil)

// RunRepository keeps runs in process memory. Used when no database is
// configured; contents are lost on restart.
type RunRepository struct {
	mu    sync.RWMutex
	byID  map[uuid.UUID]assignment.Run
	byKey map[string]uuid.UUID
}

func NewRunRepository() *RunRepository {
	return &RunRepository{
		byID:  make(map[uuid.UUID]assignment.Run),
		byKey: make(map[string]uuid.UUID),
	}
}

func (r *RunRepository) Create(_ context.Context, run assignment.Run) (assignment.Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if run.IdempotencyKey != "" {
		if id, ok := r.byKey[run.IdempotencyKey]; ok {
			return r.byID[id], nil
		}
		r.byKey[run.IdempotencyKey] = run.ID
	}
	records := make([]assignment.Record, len(run.Records))
	copy(records, run.Records)
	run.Records = records
	r.byID[run.ID] = run
	return run, nil
}

func (r *RunRepository) GetByID(_ context.Context, id uuid.UUID) (assignment.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.byID[id]
	if !ok {
		return assignment.Run{}, portrun.ErrNotFound
	}
	return run, nil
}

func (r *RunRepository) GetByIdempotencyKey(_ context.Context, key string) (assignment.Run, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byKey[key]
	if !ok {
		return assignment.Run{}, false, nil
	}
	return r.byID[id], true, nil
}

func (r *RunRepository) List(_ context.Context, filters assignment.ListFilters) ([]assignment.Run, error) {
	r.mu.RLock()
	runs := make([]assignment.Run, 0, len(r.byID))
	for _, run := range r.byID {
		runs = append(runs, run)
	}
	r.mu.RUnlock()

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	if filters.Limit > 0 && len(runs) > filters.Limit {
		runs = runs[:filters.Limit]
	}
	return runs, nil
}
