package mcp

import (
	"context"
	"log/slog"
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"

	runsvc "github.com/alanyang/ticket-router/internal/service/run"
)

// Server wraps the mcp-go MCPServer and its StreamableHTTPServer.
// Tools are registered in tools.go, prompts in prompts.go.
type Server struct {
	mcpSrv  *mcpserver.MCPServer
	httpSrv *mcpserver.StreamableHTTPServer
}

func New(runSvc *runsvc.Service) *Server {
	hooks := &mcpserver.Hooks{}
	hooks.OnRegisterSession = append(hooks.OnRegisterSession, func(ctx context.Context, session mcpserver.ClientSession) {
		slog.InfoContext(ctx, "mcp: session opened", "session_id", session.SessionID())
	})
	hooks.OnUnregisterSession = append(hooks.OnUnregisterSession, func(ctx context.Context, session mcpserver.ClientSession) {
		slog.InfoContext(ctx, "mcp: session closed", "session_id", session.SessionID())
	})

	mcpSrv := mcpserver.NewMCPServer(
		"ticket-router",
		"1.0.0",
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithPromptCapabilities(true),
		mcpserver.WithHooks(hooks),
	)

	RegisterTools(mcpSrv, runSvc)
	RegisterPrompts(mcpSrv, runSvc)

	return &Server{
		mcpSrv:  mcpSrv,
		httpSrv: mcpserver.NewStreamableHTTPServer(mcpSrv),
	}
}

// Handler serves the streamable HTTP endpoint.
func (s *Server) Handler() http.Handler {
	return s.httpSrv
}
