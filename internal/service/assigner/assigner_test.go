package assigner_test

import (
	"fmt"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyang/ticket-router/internal/domain/agent"
	"github.com/alanyang/ticket-router/internal/domain/assignment"
	"github.com/alanyang/ticket-router/internal/domain/ident"
	"github.com/alanyang/ticket-router/internal/domain/ticket"
	"github.com/alanyang/ticket-router/internal/service/assigner"
)

func available(id string, exp float64, skills ...agent.Skill) agent.Agent {
	return agent.Agent{
		ID:                 ident.New(id),
		AvailabilityStatus: "available",
		Skills:             skills,
		ExperienceLevel:    exp,
	}
}

func agentID(t *testing.T, r assignment.Record) string {
	t.Helper()
	require.NotNil(t, r.AssignedAgentID, "ticket %s should be assigned", r.TicketID)
	return r.AssignedAgentID.String()
}

// ── Scenarios ───────────────────────────────────────────────────────────────

func TestAssign_SingleBillingTicket(t *testing.T) {
	agents := []agent.Agent{available("A1", 5, agent.Skill{Name: "Billing", Level: 2})}
	tickets := []ticket.Ticket{{ID: ident.New("T1"), Title: "Billing issue", CreationTimestamp: 1}}

	got := assigner.Assign(agents, tickets)

	require.Len(t, got, 1)
	assert.Equal(t, ident.New("T1"), got[0].TicketID)
	assert.Equal(t, "A1", agentID(t, got[0]))
	assert.Equal(t, "Matched skills: billing; Agent experience: 5; Current load after assignment: 1", got[0].Rationale)
}

func TestAssign_LivePenaltyAppliesToLaterTickets(t *testing.T) {
	// A1 wins the first ticket by 0.25. Its live load then costs it 0.5 on
	// the second ticket, so A2 takes it.
	agents := []agent.Agent{
		available("A1", 5.25),
		available("A2", 5),
	}
	tickets := []ticket.Ticket{
		{ID: ident.New("T1"), Title: "first", CreationTimestamp: 1},
		{ID: ident.New("T2"), Title: "second", CreationTimestamp: 2},
	}

	got := assigner.Assign(agents, tickets)

	require.Len(t, got, 2)
	assert.Equal(t, "A1", agentID(t, got[0]))
	assert.Equal(t, "A2", agentID(t, got[1]))
}

func TestAssign_SoleAgentTakesEveryTicket(t *testing.T) {
	agents := []agent.Agent{available("A1", 5, agent.Skill{Name: "Billing", Level: 2})}
	tickets := []ticket.Ticket{
		{ID: ident.New("T1"), Title: "Billing issue", CreationTimestamp: 1},
		{ID: ident.New("T2"), Title: "Billing issue", CreationTimestamp: 2},
	}

	a := assigner.New(agents)
	got := a.Run(tickets)

	require.Len(t, got, 2)
	assert.Equal(t, "A1", agentID(t, got[0]))
	assert.Equal(t, "A1", agentID(t, got[1]))
	assert.Contains(t, got[1].Rationale, "Current load after assignment: 2")
	assert.Equal(t, 2, a.Loads().Load(ident.New("A1")))
}

func TestAssign_TieGoesToEarlierAgent(t *testing.T) {
	agents := []agent.Agent{
		available("B", 3, agent.Skill{Name: "vpn", Level: 1}),
		available("A", 3, agent.Skill{Name: "vpn", Level: 1}),
	}
	tickets := []ticket.Ticket{{ID: ident.New("T1"), Title: "vpn down"}}

	got := assigner.Assign(agents, tickets)
	assert.Equal(t, "B", agentID(t, got[0]))
}

func TestAssign_BothLoadPenaltiesApply(t *testing.T) {
	// A1: 10 - 2*2 - 2*0.5 = 5. A2: 5.5 - 0 - 0 = 5.5.
	a1 := available("A1", 10)
	a1.CurrentLoad = 2
	agents := []agent.Agent{a1, available("A2", 5.5)}

	got := assigner.Assign(agents, []ticket.Ticket{{ID: ident.New("T1")}})
	assert.Equal(t, "A2", agentID(t, got[0]))
}

func TestAssign_SeedsTrackerFromCurrentLoad(t *testing.T) {
	a1 := available("A1", 1)
	a1.CurrentLoad = 4

	a := assigner.New([]agent.Agent{a1})
	got := a.Run([]ticket.Ticket{{ID: ident.New("T1")}})

	assert.Contains(t, got[0].Rationale, "Current load after assignment: 5")
	assert.Equal(t, 5, a.Loads().Load(ident.New("A1")))
}

func TestAssign_NoMatchedSkillsRationale(t *testing.T) {
	agents := []agent.Agent{available("A1", 2.5)}
	got := assigner.Assign(agents, []ticket.Ticket{{ID: ident.New("T1"), Title: "printer jam"}})

	assert.Equal(t, "Matched skills: None; Agent experience: 2.5; Current load after assignment: 1", got[0].Rationale)
}

func TestAssign_RationaleExperienceFormat(t *testing.T) {
	tests := []struct {
		exp  float64
		want string
	}{
		{exp: 5.0, want: "5"},
		{exp: 2.5, want: "2.5"},
		{exp: 0, want: "0"},
		{exp: 0.1, want: "0.1"},
		{exp: 12.75, want: "12.75"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := assigner.Assign([]agent.Agent{available("A1", tt.exp)}, []ticket.Ticket{{ID: ident.New("T1")}})
			require.Len(t, got, 1)
			assert.Equal(t, "Matched skills: None; Agent experience: "+tt.want+"; Current load after assignment: 1", got[0].Rationale)
		})
	}
}

func TestAssign_MultipleMatchedSkillsRationale(t *testing.T) {
	agents := []agent.Agent{available("A1", 1,
		agent.Skill{Name: "Refund", Level: 1},
		agent.Skill{Name: "Billing", Level: 1},
	)}
	got := assigner.Assign(agents, []ticket.Ticket{{ID: ident.New("T1"), Title: "refund", Description: "billing"}})

	assert.Equal(t, "Matched skills: billing, refund; Agent experience: 1; Current load after assignment: 1", got[0].Rationale)
}

func TestAssign_SkipsUnavailableRegardlessOfScore(t *testing.T) {
	expert := agent.Agent{
		ID:                 ident.New("EXPERT"),
		AvailabilityStatus: "busy",
		Skills:             agent.Skills{{Name: "billing", Level: 100}},
		ExperienceLevel:    100,
	}
	agents := []agent.Agent{expert, available("JUNIOR", 0)}

	got := assigner.Assign(agents, []ticket.Ticket{{ID: ident.New("T1"), Title: "billing"}})
	assert.Equal(t, "JUNIOR", agentID(t, got[0]))
}

func TestAssign_NoAvailableAgents(t *testing.T) {
	agents := []agent.Agent{
		{ID: ident.New("A1"), AvailabilityStatus: "offline", ExperienceLevel: 9},
		{ID: ident.New("A2")},
	}
	tickets := []ticket.Ticket{{ID: ident.New("T1")}, {ID: ident.New("T2")}}

	got := assigner.Assign(agents, tickets)

	require.Len(t, got, 2)
	for _, r := range got {
		assert.Nil(t, r.AssignedAgentID)
		assert.Equal(t, "No available agent", r.Rationale)
	}
}

func TestAssign_EmptyAgentList(t *testing.T) {
	got := assigner.Assign(nil, []ticket.Ticket{{ID: ident.New("T1")}})
	require.Len(t, got, 1)
	assert.False(t, got[0].Assigned())
	assert.Equal(t, assignment.RationaleNoAgent, got[0].Rationale)
}

func TestAssign_EmptyTicketList(t *testing.T) {
	got := assigner.Assign([]agent.Agent{available("A1", 1)}, nil)
	assert.Empty(t, got)
}

func TestAssign_OrdersByTimestampStable(t *testing.T) {
	tickets := []ticket.Ticket{
		{ID: ident.New("late"), CreationTimestamp: 30},
		{ID: ident.New("tie-first"), CreationTimestamp: 10},
		{ID: ident.New("missing")},
		{ID: ident.New("tie-second"), CreationTimestamp: 10},
	}

	got := assigner.Assign([]agent.Agent{available("A1", 1)}, tickets)

	ids := make([]ident.ID, len(got))
	for i, r := range got {
		ids[i] = r.TicketID
	}
	assert.Equal(t, []ident.ID{ident.New("missing"), ident.New("tie-first"), ident.New("tie-second"), ident.New("late")}, ids)
}

func TestAssign_DoesNotMutateInputs(t *testing.T) {
	agents := []agent.Agent{available("A1", 1)}
	tickets := []ticket.Ticket{{ID: ident.New("T2"), CreationTimestamp: 2}, {ID: ident.New("T1"), CreationTimestamp: 1}}

	assigner.Assign(agents, tickets)

	assert.Equal(t, 0, agents[0].CurrentLoad)
	assert.Equal(t, ident.New("T2"), tickets[0].ID)
}

// ── Properties over generated batches ──────────────────────────────────────

var skillPool = []string{"Billing", "Refund", "VPN", "Network-Ops", "Password Reset", "Printer", "SSO", "Email"}

func generateBatch(seed int64) ([]agent.Agent, []ticket.Ticket) {
	f := gofakeit.New(seed)

	agents := make([]agent.Agent, f.Number(0, 6))
	for i := range agents {
		skills := agent.Skills{}
		for j := 0; j < f.Number(0, 3); j++ {
			skills = append(skills, agent.Skill{
				Name:  f.RandomString(skillPool),
				Level: float64(f.Number(0, 5)),
			})
		}
		agents[i] = agent.Agent{
			ID:                 ident.New(fmt.Sprintf("A%d", i)),
			AvailabilityStatus: f.RandomString([]string{"available", "Available", "busy", ""}),
			Skills:             skills,
			ExperienceLevel:    float64(f.Number(0, 10)),
			CurrentLoad:        f.Number(0, 3),
		}
	}

	tickets := make([]ticket.Ticket, f.Number(0, 25))
	for i := range tickets {
		tickets[i] = ticket.Ticket{
			ID:                ident.New(fmt.Sprintf("T%d", i)),
			Title:             f.RandomString(skillPool) + " " + f.Word(),
			Description:       f.Sentence(f.Number(0, 10)),
			CreationTimestamp: float64(f.Number(0, 5)),
		}
	}
	return agents, tickets
}

func TestAssign_Deterministic(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		agents, tickets := generateBatch(seed)
		first := assigner.Assign(agents, tickets)
		second := assigner.Assign(agents, tickets)
		assert.Equal(t, first, second, "seed %d", seed)
	}
}

func TestAssign_Completeness(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		agents, tickets := generateBatch(seed)
		got := assigner.Assign(agents, tickets)

		require.Len(t, got, len(tickets), "seed %d", seed)
		seen := make(map[ident.ID]bool, len(got))
		for _, r := range got {
			seen[r.TicketID] = true
		}
		for _, tk := range tickets {
			assert.True(t, seen[tk.ID], "seed %d: ticket %s missing", seed, tk.ID)
		}

		// Timestamps never decrease across the output.
		byID := make(map[ident.ID]float64, len(tickets))
		for _, tk := range tickets {
			byID[tk.ID] = tk.CreationTimestamp
		}
		for i := 1; i < len(got); i++ {
			assert.LessOrEqual(t, byID[got[i-1].TicketID], byID[got[i].TicketID], "seed %d", seed)
		}
	}
}

func TestAssign_LoadMonotonicity(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		agents, tickets := generateBatch(seed)
		a := assigner.New(agents)
		records := a.Run(tickets)

		counts := map[ident.ID]int{}
		for _, r := range records {
			if r.AssignedAgentID != nil {
				counts[*r.AssignedAgentID]++
			}
		}
		for _, ag := range agents {
			assert.Equal(t, ag.CurrentLoad+counts[ag.ID], a.Loads().Load(ag.ID), "seed %d agent %s", seed, ag.ID)
		}
	}
}

func TestAssign_AllUnassignedWhenNoneAvailable(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		agents, tickets := generateBatch(seed)
		for i := range agents {
			agents[i].AvailabilityStatus = "away"
		}
		for _, r := range assigner.Assign(agents, tickets) {
			assert.Nil(t, r.AssignedAgentID)
			assert.Equal(t, assignment.RationaleNoAgent, r.Rationale)
		}
	}
}
