package wire

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	kafkasink "github.com/alanyang/ticket-router/internal/adapter/kafka"
	"github.com/alanyang/ticket-router/internal/adapter/memory"
	pgdb "github.com/alanyang/ticket-router/internal/adapter/postgres"
	pgeventbus "github.com/alanyang/ticket-router/internal/adapter/postgres/eventbus"
	pglocker "github.com/alanyang/ticket-router/internal/adapter/postgres/locker"
	pgrun "github.com/alanyang/ticket-router/internal/adapter/postgres/run"
	"github.com/alanyang/ticket-router/internal/config"
	porteventbus "github.com/alanyang/ticket-router/internal/port/eventbus"
	portlocker "github.com/alanyang/ticket-router/internal/port/locker"
	portrun "github.com/alanyang/ticket-router/internal/port/run"
	portsink "github.com/alanyang/ticket-router/internal/port/sink"
	runsvc "github.com/alanyang/ticket-router/internal/service/run"
	"github.com/alanyang/ticket-router/internal/transport"
	mcptransport "github.com/alanyang/ticket-router/internal/transport/mcp"
)

// App holds the top-level resources needed to run and gracefully stop the server.
type App struct {
	Server    *http.Server
	RunSvc    *runsvc.Service
	MCPServer *mcptransport.Server

	closers []func()
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// Build is the composition root: the only place concrete types are wired to their
// interface dependencies.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{}

	// ── Storage ──────────────────────────────────────────────────────────────
	var (
		repo     portrun.Repository
		eventBus porteventbus.EventBus
		locker   portlocker.AdvisoryLocker
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgdb.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		bus := pgeventbus.New(pool)
		app.closers = append(app.closers, pool.Close, bus.Close)

		repo, eventBus, locker = pgrun.New(pool), bus, pglocker.New(pool)
		slog.Info("database connected", "max_conns", pool.Stat().MaxConns())
	} else {
		slog.Warn("database_url not set, runs are kept in memory")
		repo, eventBus, locker = memory.NewRunRepository(), memory.NewEventBus(), memory.NewLocker()
	}

	// ── Sink ─────────────────────────────────────────────────────────────────
	var sink portsink.Sink = kafkasink.Discard{}
	if cfg.Kafka.Enabled() {
		pub := kafkasink.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		app.closers = append(app.closers, func() {
			if err := pub.Close(); err != nil {
				slog.Error("closing kafka publisher", "error", err)
			}
		})
		sink = pub
		slog.Info("forwarding assignments to kafka", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}

	// ── Services ─────────────────────────────────────────────────────────────
	app.RunSvc = runsvc.NewService(repo, eventBus, locker, sink)
	app.MCPServer = mcptransport.New(app.RunSvc)

	// ── Transport ────────────────────────────────────────────────────────────
	router := transport.NewRouter(ctx, cfg.HTTP, app.RunSvc, app.MCPServer.Handler(), eventBus)
	app.Server = &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	slog.Info("application wired", "port", cfg.Port)
	return app, nil
}
