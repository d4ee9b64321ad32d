package run

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyang/ticket-router/internal/domain/assignment"
	"github.com/alanyang/ticket-router/internal/domain/ident"
	portrun "github.com/alanyang/ticket-router/internal/port/run"
)

var _ portrun.Repository = (*Repository)(nil)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts the run header and its records in one transaction. When a
// concurrent writer already stored the same idempotency key, the stored run is
// returned instead.
func (r *Repository) Create(ctx context.Context, run assignment.Run) (assignment.Run, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return assignment.Run{}, fmt.Errorf("beginning run transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	query := `
		INSERT INTO assignment_runs (id, idempotency_key, ticket_count, assigned_count, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (idempotency_key) DO NOTHING`

	tag, err := tx.Exec(ctx, query,
		run.ID, nilIfEmpty(run.IdempotencyKey), run.TicketCount, run.AssignedCount, run.CreatedAt,
	)
	if err != nil {
		return assignment.Run{}, fmt.Errorf("inserting run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		existing, found, err := r.GetByIdempotencyKey(ctx, run.IdempotencyKey)
		if err != nil {
			return assignment.Run{}, err
		}
		if !found {
			return assignment.Run{}, fmt.Errorf("run with idempotency key %q vanished", run.IdempotencyKey)
		}
		return existing, nil
	}

	batch := &pgx.Batch{}
	for i := range run.Records {
		rec := run.Records[i]
		batch.Queue(`
			INSERT INTO assignment_records (run_id, position, ticket_id, assigned_agent_id, rationale)
			VALUES ($1, $2, $3, $4, $5)`,
			run.ID, i, idParam(&rec.TicketID), idParam(rec.AssignedAgentID), rec.Rationale,
		)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return assignment.Run{}, fmt.Errorf("inserting records: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return assignment.Run{}, fmt.Errorf("committing run: %w", err)
	}
	return run, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (assignment.Run, error) {
	query := `
		SELECT id, idempotency_key, ticket_count, assigned_count, created_at
		FROM assignment_runs WHERE id = $1`

	run, err := scanRun(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return assignment.Run{}, portrun.ErrNotFound
		}
		return assignment.Run{}, fmt.Errorf("querying run: %w", err)
	}
	return r.withRecords(ctx, run)
}

func (r *Repository) GetByIdempotencyKey(ctx context.Context, key string) (assignment.Run, bool, error) {
	query := `
		SELECT id, idempotency_key, ticket_count, assigned_count, created_at
		FROM assignment_runs WHERE idempotency_key = $1`

	run, err := scanRun(r.pool.QueryRow(ctx, query, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return assignment.Run{}, false, nil
		}
		return assignment.Run{}, false, fmt.Errorf("checking idempotency key: %w", err)
	}
	run, err = r.withRecords(ctx, run)
	if err != nil {
		return assignment.Run{}, false, err
	}
	return run, true, nil
}

func (r *Repository) List(ctx context.Context, filters assignment.ListFilters) ([]assignment.Run, error) {
	query := `
		SELECT id, idempotency_key, ticket_count, assigned_count, created_at
		FROM assignment_runs ORDER BY created_at DESC`

	args := []interface{}{}
	if filters.Limit > 0 {
		query += " LIMIT $1"
		args = append(args, filters.Limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []assignment.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	for i := range runs {
		if runs[i], err = r.withRecords(ctx, runs[i]); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

func (r *Repository) withRecords(ctx context.Context, run assignment.Run) (assignment.Run, error) {
	query := `
		SELECT ticket_id, assigned_agent_id, rationale
		FROM assignment_records WHERE run_id = $1 ORDER BY position`

	rows, err := r.pool.Query(ctx, query, run.ID)
	if err != nil {
		return assignment.Run{}, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	run.Records = []assignment.Record{}
	for rows.Next() {
		var (
			ticketID []byte
			agentID  []byte
			rec      assignment.Record
		)
		if err := rows.Scan(&ticketID, &agentID, &rec.Rationale); err != nil {
			return assignment.Run{}, fmt.Errorf("scanning record: %w", err)
		}
		if err := json.Unmarshal(ticketID, &rec.TicketID); err != nil {
			return assignment.Run{}, fmt.Errorf("decoding ticket_id: %w", err)
		}
		if agentID != nil {
			var id ident.ID
			if err := json.Unmarshal(agentID, &id); err != nil {
				return assignment.Run{}, fmt.Errorf("decoding assigned_agent_id: %w", err)
			}
			rec.AssignedAgentID = &id
		}
		run.Records = append(run.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return assignment.Run{}, fmt.Errorf("iterating records: %w", err)
	}
	return run, nil
}

func scanRun(row pgx.Row) (assignment.Run, error) {
	var (
		run assignment.Run
		key *string
	)
	if err := row.Scan(&run.ID, &key, &run.TicketCount, &run.AssignedCount, &run.CreatedAt); err != nil {
		return assignment.Run{}, err
	}
	if key != nil {
		run.IdempotencyKey = *key
	}
	run.CreatedAt = run.CreatedAt.UTC()
	return run, nil
}

// idParam encodes an ID as its JSON token so jsonb keeps 1 and "1" apart.
// A nil id becomes SQL NULL.
func idParam(id *ident.ID) any {
	if id == nil {
		return nil
	}
	data, _ := id.MarshalJSON()
	return data
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
