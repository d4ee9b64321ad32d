package ticket

import (
	"github.com/alanyang/ticket-router/internal/domain/ident"
	"github.com/alanyang/ticket-router/internal/domain/tag"
)

// Ticket is an incoming support request. CreationTimestamp is used only to
// order a batch.
type Ticket struct {
	ID                ident.ID `json:"ticket_id"`
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	CreationTimestamp float64  `json:"creation_timestamp"`
}

// Tags returns the ticket's tag set built from its title and description.
func (t *Ticket) Tags() tag.Set {
	return tag.Extract(t.Title, t.Description)
}
