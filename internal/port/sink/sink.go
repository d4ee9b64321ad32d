package sink

import (
	"context"

	"github.com/google/uuid"

	"github.com/alanyang/ticket-router/internal/domain/assignment"
)

// Sink forwards the records of a finished run to a downstream consumer.
type Sink interface {
	Publish(ctx context.Context, runID uuid.UUID, records []assignment.Record) error
}
