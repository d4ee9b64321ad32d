package assigner

import (
	"github.com/alanyang/ticket-router/internal/domain/agent"
	"github.com/alanyang/ticket-router/internal/domain/ident"
)

// LoadTracker holds the live load of every agent in a batch. It is seeded from
// each agent's supplied CurrentLoad and only ever incremented.
type LoadTracker struct {
	loads map[ident.ID]int
}

func NewLoadTracker(agents []agent.Agent) *LoadTracker {
	loads := make(map[ident.ID]int, len(agents))
	for _, a := range agents {
		loads[a.ID] = a.CurrentLoad
	}
	return &LoadTracker{loads: loads}
}

// Load returns the live load of the agent, or 0 for an unknown ID.
func (l *LoadTracker) Load(id ident.ID) int {
	return l.loads[id]
}

// Increment records one more assignment for the agent and returns the new load.
func (l *LoadTracker) Increment(id ident.ID) int {
	l.loads[id]++
	return l.loads[id]
}
