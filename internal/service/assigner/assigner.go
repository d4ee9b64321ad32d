package assigner

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/alanyang/ticket-router/internal/domain/agent"
	"github.com/alanyang/ticket-router/internal/domain/assignment"
	"github.com/alanyang/ticket-router/internal/domain/tag"
	"github.com/alanyang/ticket-router/internal/domain/ticket"
	"github.com/alanyang/ticket-router/internal/service/scorer"
)

// LivePenalty is subtracted per unit of live load, in addition to the
// snapshot penalty the scorer already applies.
const LivePenalty = 0.5

// Assigner runs one batch. It owns the live load tracker for that batch and
// must not be shared across goroutines.
type Assigner struct {
	agents []agent.Agent
	loads  *LoadTracker
}

func New(agents []agent.Agent) *Assigner {
	return &Assigner{
		agents: agents,
		loads:  NewLoadTracker(agents),
	}
}

// Loads exposes the live load tracker.
func (a *Assigner) Loads() *LoadTracker { return a.loads }

// Assign is a one-shot run over a fresh tracker.
func Assign(agents []agent.Agent, tickets []ticket.Ticket) []assignment.Record {
	return New(agents).Run(tickets)
}

// Run assigns every ticket in ascending CreationTimestamp order (stable on
// ties) and returns one record per ticket in that order. Each ticket sees the
// load increments of all tickets processed before it.
func (a *Assigner) Run(tickets []ticket.Ticket) []assignment.Record {
	ordered := make([]ticket.Ticket, len(tickets))
	copy(ordered, tickets)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreationTimestamp < ordered[j].CreationTimestamp
	})

	records := make([]assignment.Record, 0, len(ordered))
	for i := range ordered {
		records = append(records, a.assignOne(&ordered[i]))
	}
	return records
}

func (a *Assigner) assignOne(t *ticket.Ticket) assignment.Record {
	tags := t.Tags()

	var (
		best        *agent.Agent
		bestScore   = math.Inf(-1)
		bestMatched []tag.Tag
	)
	for i := range a.agents {
		candidate := &a.agents[i]
		if !candidate.IsAvailable() {
			continue
		}
		score, matched := scorer.Score(*candidate, tags)
		score -= float64(a.loads.Load(candidate.ID)) * LivePenalty
		// Strict comparison: the earliest agent keeps a tie.
		if score > bestScore {
			best, bestScore, bestMatched = candidate, score, matched
		}
	}

	if best == nil {
		return assignment.Record{
			TicketID:  t.ID,
			Rationale: assignment.RationaleNoAgent,
		}
	}

	load := a.loads.Increment(best.ID)
	agentID := best.ID
	return assignment.Record{
		TicketID:        t.ID,
		AssignedAgentID: &agentID,
		Rationale:       rationale(bestMatched, best.ExperienceLevel, load),
	}
}

// rationale prints experience in its shortest decimal form without an
// exponent, so 5.0 renders as "5" and 2.5 as "2.5".
func rationale(matched []tag.Tag, experience float64, load int) string {
	skills := "None"
	if len(matched) > 0 {
		skills = strings.Join(tag.Strings(matched), ", ")
	}
	return "Matched skills: " + skills +
		"; Agent experience: " + strconv.FormatFloat(experience, 'f', -1, 64) +
		"; Current load after assignment: " + strconv.Itoa(load)
}
