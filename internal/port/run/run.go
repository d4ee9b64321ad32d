package run

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/alanyang/ticket-router/internal/domain/assignment"
)

// ErrNotFound is returned by repositories when no run matches.
var ErrNotFound = errors.New("run not found")

// Repository stores completed runs and their records.
type Repository interface {
	Create(ctx context.Context, r assignment.Run) (assignment.Run, error)
	GetByID(ctx context.Context, id uuid.UUID) (assignment.Run, error)
	// GetByIdempotencyKey reports found=false, err=nil when no run holds key.
	GetByIdempotencyKey(ctx context.Context, key string) (r assignment.Run, found bool, err error)
	List(ctx context.Context, filters assignment.ListFilters) ([]assignment.Run, error)
}
