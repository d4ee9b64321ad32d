package event

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeRunCompleted     Type = "run_completed"
	TypeTicketAssigned   Type = "ticket_assigned"
	TypeTicketUnassigned Type = "ticket_unassigned"
)

// Channel is a domain-scoped notification channel. All event types within a
// domain share one subscription.
type Channel string

const (
	ChannelRun    Channel = "run"
	ChannelTicket Channel = "ticket"
)

var typeToChannel = map[Type]Channel{
	TypeRunCompleted:     ChannelRun,
	TypeTicketAssigned:   ChannelTicket,
	TypeTicketUnassigned: ChannelTicket,
}

// ChannelFor returns the domain channel for a given event type.
func ChannelFor(t Type) Channel { return typeToChannel[t] }

// Event carries identifiers only. Subscribers fetch the run for full state.
type Event struct {
	Type      Type      `json:"type"`
	RunID     uuid.UUID `json:"run_id"`
	TicketID  string    `json:"ticket_id,omitempty"`
	AgentID   string    `json:"agent_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func New(eventType Type, runID uuid.UUID) Event {
	return Event{
		Type:      eventType,
		RunID:     runID,
		Timestamp: time.Now().UTC(),
	}
}

// ForTicket builds the per-ticket event for one record of a run.
func ForTicket(runID uuid.UUID, ticketID string, agentID *string) Event {
	e := New(TypeTicketUnassigned, runID)
	e.TicketID = ticketID
	if agentID != nil {
		e.Type = TypeTicketAssigned
		e.AgentID = *agentID
	}
	return e
}
