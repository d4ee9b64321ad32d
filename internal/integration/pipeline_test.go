//go:build integration

package integration_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyang/ticket-router/internal/adapter/kafka"
	pgeventbus "github.com/alanyang/ticket-router/internal/adapter/postgres/eventbus"
	pglocker "github.com/alanyang/ticket-router/internal/adapter/postgres/locker"
	pgrun "github.com/alanyang/ticket-router/internal/adapter/postgres/run"
	"github.com/alanyang/ticket-router/internal/domain/agent"
	"github.com/alanyang/ticket-router/internal/domain/assignment"
	"github.com/alanyang/ticket-router/internal/domain/event"
	"github.com/alanyang/ticket-router/internal/domain/ident"
	"github.com/alanyang/ticket-router/internal/domain/ticket"
	runsvc "github.com/alanyang/ticket-router/internal/service/run"
	"github.com/alanyang/ticket-router/internal/testutil"
)

// ── test harness ──────────────────────────────────────────────────────────────

type testServices struct {
	bus    *pgeventbus.EventBus
	runSvc *runsvc.Service
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()
	pool := testutil.SetupTestDB(t)

	bus := pgeventbus.New(pool)
	t.Cleanup(bus.Close)

	return &testServices{
		bus:    bus,
		runSvc: runsvc.NewService(pgrun.New(pool), bus, pglocker.New(pool), kafka.Discard{}),
	}
}

func agents() []agent.Agent {
	return []agent.Agent{
		{ID: ident.New("a1"), AvailabilityStatus: "available", Skills: agent.Skills{{Name: "Billing", Level: 2}}, ExperienceLevel: 5},
		{ID: ident.New("a2"), AvailabilityStatus: "available", Skills: agent.Skills{{Name: "Network", Level: 3}}, ExperienceLevel: 1},
		{ID: ident.New("a3"), AvailabilityStatus: "offline", Skills: agent.Skills{{Name: "Billing", Level: 9}}, ExperienceLevel: 9},
	}
}

func tickets() []ticket.Ticket {
	return []ticket.Ticket{
		{ID: ident.New("t2"), Title: "Network down", CreationTimestamp: 20},
		{ID: ident.New("t1"), Title: "Billing question", CreationTimestamp: 10},
	}
}

func agentOf(t *testing.T, r assignment.Record) ident.ID {
	t.Helper()
	require.NotNil(t, r.AssignedAgentID, "ticket %s unassigned", r.TicketID)
	return *r.AssignedAgentID
}

// ── scenarios ─────────────────────────────────────────────────────────────────

func TestScenario1_SubmitPersistsAndReloads(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	run, err := s.runSvc.Submit(ctx, "", agents(), tickets())
	require.NoError(t, err)
	require.Len(t, run.Records, 2)
	assert.Equal(t, ident.New("t1"), run.Records[0].TicketID)
	assert.Equal(t, ident.New("a1"), agentOf(t, run.Records[0]))
	assert.Equal(t, ident.New("a2"), agentOf(t, run.Records[1]))

	got, err := s.runSvc.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.Records, got.Records)
	assert.Equal(t, 2, got.AssignedCount)
}

func TestScenario2_IdempotentResubmission(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	key := "scenario2-" + uuid.NewString()

	first, err := s.runSvc.Submit(ctx, key, agents(), tickets())
	require.NoError(t, err)
	second, err := s.runSvc.Submit(ctx, key, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, second.Records, 2)
}

func TestScenario3_ConcurrentSameKeyStoresOneRun(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	key := "scenario3-" + uuid.NewString()

	ids := make([]uuid.UUID, 4)
	var wg sync.WaitGroup
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := s.runSvc.Submit(ctx, key, agents(), tickets())
			assert.NoError(t, err)
			ids[i] = r.ID
		}(i)
	}
	wg.Wait()

	for _, id := range ids[1:] {
		assert.Equal(t, ids[0], id)
	}
}

func TestScenario4_NoAvailableAgent(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	offline := []agent.Agent{{ID: ident.New("z"), AvailabilityStatus: "offline"}}
	run, err := s.runSvc.Submit(ctx, "", offline, tickets())
	require.NoError(t, err)

	got, err := s.runSvc.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Zero(t, got.AssignedCount)
	for _, r := range got.Records {
		assert.Nil(t, r.AssignedAgentID)
		assert.Equal(t, assignment.RationaleNoAgent, r.Rationale)
	}
}

func TestScenario5_RunCompletedNotified(t *testing.T) {
	s := newTestServices(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan event.Event, 16)
	sub, err := s.bus.Subscribe(ctx, event.ChannelRun, func(_ context.Context, e event.Event) {
		received <- e
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	run, err := s.runSvc.Submit(context.Background(), "", agents(), tickets())
	require.NoError(t, err)

	deadline := time.After(5 * time.Second)
	for {
		select {
		case e := <-received:
			if e.RunID == run.ID {
				assert.Equal(t, event.TypeRunCompleted, e.Type)
				return
			}
		case <-deadline:
			t.Fatal("run_completed notification not received")
		}
	}
}
