package run

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"

	"github.com/google/uuid"

	"github.com/alanyang/ticket-router/internal/domain/agent"
	"github.com/alanyang/ticket-router/internal/domain/assignment"
	"github.com/alanyang/ticket-router/internal/domain/event"
	"github.com/alanyang/ticket-router/internal/domain/ticket"
	portbus "github.com/alanyang/ticket-router/internal/port/eventbus"
	portlocker "github.com/alanyang/ticket-router/internal/port/locker"
	portrun "github.com/alanyang/ticket-router/internal/port/run"
	portsink "github.com/alanyang/ticket-router/internal/port/sink"
	"github.com/alanyang/ticket-router/internal/service/assigner"
)

// DefaultListLimit caps List when the caller passes no positive limit.
const DefaultListLimit = 50

// lockKey serialises all batch runs, across processes when the locker is
// backed by postgres.
var lockKey = advisoryKey("assignment-run")

// Service executes assignment batches and records their outcome. The
// assignment algorithm itself lives in the assigner package and performs no I/O.
type Service struct {
	repo   portrun.Repository
	bus    portbus.EventBus
	locker portlocker.AdvisoryLocker
	sink   portsink.Sink
}

func NewService(repo portrun.Repository, bus portbus.EventBus, locker portlocker.AdvisoryLocker, sink portsink.Sink) *Service {
	return &Service{repo: repo, bus: bus, locker: locker, sink: sink}
}

// Submit assigns tickets to agents and stores the run. A non-empty
// idempotencyKey that already names a stored run returns that run without
// assigning again.
func (s *Service) Submit(ctx context.Context, idempotencyKey string, agents []agent.Agent, tickets []ticket.Ticket) (assignment.Run, error) {
	if idempotencyKey != "" {
		existing, found, err := s.repo.GetByIdempotencyKey(ctx, idempotencyKey)
		if err != nil {
			return assignment.Run{}, fmt.Errorf("check idempotency key: %w", err)
		}
		if found {
			slog.InfoContext(ctx, "run: idempotent resubmission", "run_id", existing.ID, "idempotency_key", idempotencyKey)
			return existing, nil
		}
	}

	var created assignment.Run
	err := s.locker.WithLock(ctx, lockKey, func(ctx context.Context) error {
		// Re-check under the lock: a concurrent submission with the same key
		// may have finished while we waited.
		if idempotencyKey != "" {
			existing, found, err := s.repo.GetByIdempotencyKey(ctx, idempotencyKey)
			if err != nil {
				return fmt.Errorf("check idempotency key: %w", err)
			}
			if found {
				created = existing
				return nil
			}
		}

		records := assigner.Assign(agents, tickets)
		r, err := s.repo.Create(ctx, assignment.NewRun(idempotencyKey, records))
		if err != nil {
			return fmt.Errorf("create run: %w", err)
		}
		created = r

		slog.InfoContext(ctx, "run: completed",
			"run_id", r.ID,
			"tickets", r.TicketCount,
			"assigned", r.AssignedCount,
		)
		s.announce(ctx, r)
		return nil
	})
	if err != nil {
		return assignment.Run{}, err
	}
	return created, nil
}

// announce publishes run events and forwards records to the sink. Failures
// are logged: the run is already stored.
func (s *Service) announce(ctx context.Context, r assignment.Run) {
	for _, rec := range r.Records {
		var agentID *string
		if rec.AssignedAgentID != nil {
			id := rec.AssignedAgentID.String()
			agentID = &id
		}
		if err := s.bus.Publish(ctx, event.ForTicket(r.ID, rec.TicketID.String(), agentID)); err != nil {
			slog.ErrorContext(ctx, "failed to publish ticket event", "run_id", r.ID, "ticket_id", rec.TicketID, "error", err)
		}
	}
	if err := s.bus.Publish(ctx, event.New(event.TypeRunCompleted, r.ID)); err != nil {
		slog.ErrorContext(ctx, "failed to publish RunCompleted event", "run_id", r.ID, "error", err)
	}

	if err := s.sink.Publish(ctx, r.ID, r.Records); err != nil {
		slog.ErrorContext(ctx, "failed to forward records to sink", "run_id", r.ID, "error", err)
	}
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (assignment.Run, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return assignment.Run{}, fmt.Errorf("get run: %w", err)
	}
	return r, nil
}

// List returns runs newest first.
func (s *Service) List(ctx context.Context, limit int) ([]assignment.Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	runs, err := s.repo.List(ctx, assignment.ListFilters{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// advisoryKey hashes a name to a stable int64 for pg_advisory_lock.
func advisoryKey(name string) int64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	return int64(h.Sum64())
}
