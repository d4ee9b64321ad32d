package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/alanyang/ticket-router/internal/domain/assignment"
	portsink "github.com/alanyang/ticket-router/internal/port/sink"
)

var (
	_ portsink.Sink = (*Publisher)(nil)
	_ portsink.Sink = Discard{}
)

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Message is the value written for each record.
type Message struct {
	RunID uuid.UUID `json:"run_id"`
	assignment.Record
}

// Publisher writes one message per record, keyed by ticket ID so every
// outcome for a ticket lands on the same partition.
type Publisher struct {
	writer MessageWriter
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return NewPublisherWithWriter(&kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{},
	})
}

func NewPublisherWithWriter(w MessageWriter) *Publisher {
	return &Publisher{writer: w}
}

func (p *Publisher) Publish(ctx context.Context, runID uuid.UUID, records []assignment.Record) error {
	if len(records) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(records))
	for _, rec := range records {
		data, err := json.Marshal(Message{RunID: runID, Record: rec})
		if err != nil {
			return fmt.Errorf("marshaling record %s: %w", rec.TicketID, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(rec.TicketID.String()),
			Value: data,
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("writing %d records to kafka: %w", len(msgs), err)
	}
	slog.DebugContext(ctx, "records sent to kafka", "run_id", runID, "count", len(msgs))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// Discard is the sink used when no brokers are configured.
type Discard struct{}

func (Discard) Publish(context.Context, uuid.UUID, []assignment.Record) error { return nil }
