package transport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alanyang/ticket-router/internal/config"
	"github.com/alanyang/ticket-router/internal/domain/event"
	porteventbus "github.com/alanyang/ticket-router/internal/port/eventbus"
	runsvc "github.com/alanyang/ticket-router/internal/service/run"

	runhandler "github.com/alanyang/ticket-router/internal/transport/run"
	wshandler "github.com/alanyang/ticket-router/internal/transport/ws"
)

func NewRouter(
	ctx context.Context,
	httpCfg config.HTTPConfig,
	runSvc *runsvc.Service,
	mcpHandler http.Handler,
	eventBus porteventbus.EventBus,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(RequestLogger())
	r.Use(CORSMiddleware())

	api := r.Group("/api")

	runhandler.Register(api.Group("/runs"), runSvc, RateLimit(httpCfg.RateLimitPerSecond, httpCfg.Burst))

	hub := wshandler.NewHub()
	hub.Register(api.Group("/ws"))

	// One subscription per channel; clients filter on event.Type.
	for _, ch := range []event.Channel{event.ChannelRun, event.ChannelTicket} {
		c := ch
		if _, err := eventBus.Subscribe(ctx, c, func(_ context.Context, e event.Event) {
			hub.Broadcast(e)
		}); err != nil {
			slog.Error("failed to subscribe channel to WS hub", "channel", c, "error", err)
		}
	}

	if mcpHandler != nil {
		r.Any("/mcp", gin.WrapH(mcpHandler))
	}

	return r
}
