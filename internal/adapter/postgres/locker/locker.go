package locker

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	portlocker "github.com/alanyang/ticket-router/internal/port/locker"
)

var _ portlocker.AdvisoryLocker = (*Locker)(nil)

// Locker serialises run submissions across server processes with session
// advisory locks. Lock and unlock must share one connection, so the whole
// critical section runs on a single acquired conn.
type Locker struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Locker {
	return &Locker{pool: pool}
}

func (l *Locker) WithLock(ctx context.Context, key int64, fn func(ctx context.Context) error) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection for advisory lock: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", key); err != nil {
		return fmt.Errorf("acquire advisory lock %d: %w", key, err)
	}
	// Background ctx: the unlock must run even if ctx was cancelled inside fn.
	defer conn.Exec(context.Background(), "SELECT pg_advisory_unlock($1)", key) //nolint:errcheck

	return fn(ctx)
}
