package assignment

import (
	"time"

	"github.com/google/uuid"

	"github.com/alanyang/ticket-router/internal/domain/ident"
)

// RationaleNoAgent is recorded when no available agent existed for a ticket.
const RationaleNoAgent = "No available agent"

// Record is the outcome for a single ticket. AssignedAgentID is nil when no
// available agent existed.
type Record struct {
	TicketID        ident.ID  `json:"ticket_id"`
	AssignedAgentID *ident.ID `json:"assigned_agent_id"`
	Rationale       string    `json:"rationale"`
}

func (r Record) Assigned() bool { return r.AssignedAgentID != nil }

// Run is one processed batch together with its records, in processing order.
type Run struct {
	ID             uuid.UUID `json:"id"`
	IdempotencyKey string    `json:"idempotency_key,omitempty"`
	TicketCount    int       `json:"ticket_count"`
	AssignedCount  int       `json:"assigned_count"`
	Records        []Record  `json:"records"`
	CreatedAt      time.Time `json:"created_at"`
}

func NewRun(idempotencyKey string, records []Record) Run {
	assigned := 0
	for _, r := range records {
		if r.Assigned() {
			assigned++
		}
	}
	if records == nil {
		records = []Record{}
	}
	return Run{
		ID:             uuid.New(),
		IdempotencyKey: idempotencyKey,
		TicketCount:    len(records),
		AssignedCount:  assigned,
		Records:        records,
		CreatedAt:      time.Now().UTC(),
	}
}

type ListFilters struct {
	Limit int
}
