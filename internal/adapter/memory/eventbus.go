package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/alanyang/ticket-router/internal/domain/event"
	porteventbus "github.com/alanyang/ticket-router/internal/port/eventbus"
)

var _ porteventbus.EventBus = (*EventBus)(nil)

// EventBus delivers events to in-process subscribers synchronously, in
// subscription order.
type EventBus struct {
	mu   sync.RWMutex
	subs map[event.Channel][]*subscription
}

func NewEventBus() *EventBus {
	return &EventBus{
		subs: make(map[event.Channel][]*subscription),
	}
}

func (eb *EventBus) Publish(ctx context.Context, e event.Event) error {
	ch := event.ChannelFor(e.Type)

	eb.mu.RLock()
	subs := slices.Clone(eb.subs[ch])
	eb.mu.RUnlock()

	for _, s := range subs {
		s.handler(ctx, e)
	}
	return nil
}

func (eb *EventBus) Subscribe(_ context.Context, ch event.Channel, handler porteventbus.Handler) (porteventbus.Subscription, error) {
	sub := &subscription{bus: eb, ch: ch, handler: handler}

	eb.mu.Lock()
	eb.subs[ch] = append(eb.subs[ch], sub)
	eb.mu.Unlock()

	return sub, nil
}

type subscription struct {
	bus     *EventBus
	ch      event.Channel
	handler porteventbus.Handler
}

func (s *subscription) Unsubscribe() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	subs := s.bus.subs[s.ch]
	if i := slices.Index(subs, s); i >= 0 {
		s.bus.subs[s.ch] = slices.Delete(subs, i, i+1)
	}
}
