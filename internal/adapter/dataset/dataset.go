package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alanyang/ticket-router/internal/domain/agent"
	"github.com/alanyang/ticket-router/internal/domain/assignment"
	"github.com/alanyang/ticket-router/internal/domain/ident"
	"github.com/alanyang/ticket-router/internal/domain/ticket"
)

var (
	ErrMissingAgentID  = errors.New("dataset: agent_id is required")
	ErrMissingTicketID = errors.New("dataset: ticket_id is required")
)

// Dataset is one batch: the agents and tickets to assign.
type Dataset struct {
	Agents  []agent.Agent   `json:"agents"`
	Tickets []ticket.Ticket `json:"tickets"`
}

type rawDataset struct {
	Agents  []json.RawMessage `json:"agents"`
	Tickets []json.RawMessage `json:"tickets"`
}

// Decode reads a {"agents": [...], "tickets": [...]} document. Missing arrays
// decode as empty; a record without its identifier rejects the whole batch.
func Decode(r io.Reader) (Dataset, error) {
	var raw rawDataset
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Dataset{}, fmt.Errorf("decoding dataset: %w", err)
	}
	return FromRaw(raw.Agents, raw.Tickets)
}

// FromRaw decodes already-split agent and ticket documents.
func FromRaw(rawAgents, rawTickets []json.RawMessage) (Dataset, error) {
	ds := Dataset{
		Agents:  make([]agent.Agent, 0, len(rawAgents)),
		Tickets: make([]ticket.Ticket, 0, len(rawTickets)),
	}

	for i, data := range rawAgents {
		var head struct {
			ID *ident.ID `json:"agent_id"`
		}
		if err := json.Unmarshal(data, &head); err != nil {
			return Dataset{}, fmt.Errorf("decoding agent %d: %w", i, err)
		}
		if head.ID == nil {
			return Dataset{}, fmt.Errorf("agent %d: %w", i, ErrMissingAgentID)
		}
		var a agent.Agent
		if err := json.Unmarshal(data, &a); err != nil {
			return Dataset{}, fmt.Errorf("decoding agent %d: %w", i, err)
		}
		ds.Agents = append(ds.Agents, a)
	}

	for i, data := range rawTickets {
		var head struct {
			ID *ident.ID `json:"ticket_id"`
		}
		if err := json.Unmarshal(data, &head); err != nil {
			return Dataset{}, fmt.Errorf("decoding ticket %d: %w", i, err)
		}
		if head.ID == nil {
			return Dataset{}, fmt.Errorf("ticket %d: %w", i, ErrMissingTicketID)
		}
		var t ticket.Ticket
		if err := json.Unmarshal(data, &t); err != nil {
			return Dataset{}, fmt.Errorf("decoding ticket %d: %w", i, err)
		}
		ds.Tickets = append(ds.Tickets, t)
	}

	return ds, nil
}

func ReadFile(path string) (Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// WriteJSON writes {"assignments": [...]} indented by two spaces.
func WriteJSON(w io.Writer, records []assignment.Record) error {
	if records == nil {
		records = []assignment.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(struct {
		Assignments []assignment.Record `json:"assignments"`
	}{records}); err != nil {
		return fmt.Errorf("encoding assignments: %w", err)
	}
	return nil
}

func WriteFile(path string, records []assignment.Record) error {
	return writeFile(path, func(w io.Writer) error { return WriteJSON(w, records) })
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
