package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyang/ticket-router/internal/domain/event"
	porteventbus "github.com/alanyang/ticket-router/internal/port/eventbus"
)

var _ porteventbus.EventBus = (*EventBus)(nil)

// EventBus fans run and ticket events out across server processes through
// Postgres LISTEN/NOTIFY.
type EventBus struct {
	pool *pgxpool.Pool

	mu   sync.Mutex
	subs map[*subscription]struct{}
}

func New(pool *pgxpool.Pool) *EventBus {
	return &EventBus{
		pool: pool,
		subs: make(map[*subscription]struct{}),
	}
}

// Publish sends e with pg_notify on the channel that owns its type.
func (eb *EventBus) Publish(ctx context.Context, e event.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	channel := channelName(event.ChannelFor(e.Type))
	if _, err := eb.pool.Exec(ctx, "SELECT pg_notify($1, $2)", channel, string(payload)); err != nil {
		return fmt.Errorf("publishing event on channel %s: %w", channel, err)
	}
	return nil
}

// Subscribe holds a dedicated connection in LISTEN until the subscription is
// cancelled or ctx ends.
func (eb *EventBus) Subscribe(ctx context.Context, ch event.Channel, handler porteventbus.Handler) (porteventbus.Subscription, error) {
	conn, err := eb.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring connection for LISTEN: %w", err)
	}

	channel := channelName(ch)
	if _, err := conn.Exec(ctx, "LISTEN "+channel); err != nil {
		conn.Release()
		return nil, fmt.Errorf("executing LISTEN on channel %s: %w", channel, err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &subscription{bus: eb, cancel: cancel, done: make(chan struct{})}

	eb.mu.Lock()
	eb.subs[sub] = struct{}{}
	eb.mu.Unlock()

	go func() {
		defer func() {
			conn.Exec(context.Background(), "UNLISTEN "+channel) //nolint:errcheck
			conn.Release()
			close(sub.done)
		}()

		for {
			notification, err := conn.Conn().WaitForNotification(subCtx)
			if err != nil {
				if subCtx.Err() != nil {
					return
				}
				slog.Warn("waiting for notification", "channel", channel, "error", err)
				continue
			}

			var e event.Event
			if err := json.Unmarshal([]byte(notification.Payload), &e); err != nil {
				slog.Warn("dropping malformed event", "channel", channel, "error", err)
				continue
			}
			handler(subCtx, e)
		}
	}()

	return sub, nil
}

// Close cancels every live subscription and waits for its listener to exit.
func (eb *EventBus) Close() {
	eb.mu.Lock()
	subs := make([]*subscription, 0, len(eb.subs))
	for s := range eb.subs {
		subs = append(subs, s)
	}
	eb.mu.Unlock()

	for _, s := range subs {
		s.Unsubscribe()
	}
}

func channelName(ch event.Channel) string {
	return "ticket_router_" + string(ch)
}

type subscription struct {
	bus    *EventBus
	cancel context.CancelFunc
	done   chan struct{}
}

func (s *subscription) Unsubscribe() {
	s.cancel()
	<-s.done

	s.bus.mu.Lock()
	delete(s.bus.subs, s)
	s.bus.mu.Unlock()
}
