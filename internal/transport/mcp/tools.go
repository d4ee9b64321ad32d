package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	mcpmcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/alanyang/ticket-router/internal/adapter/dataset"
	runsvc "github.com/alanyang/ticket-router/internal/service/run"
)

// RegisterTools registers all MCP tools on the server.
func RegisterTools(s *mcpserver.MCPServer, runSvc *runsvc.Service) {
	s.AddTool(mcpmcp.NewTool("assign_tickets",
		mcpmcp.WithDescription("Assign a batch of support tickets to agents. Tickets are processed oldest first; each goes to the available agent with the highest skill score. Returns the stored run with one record per ticket."),
		mcpmcp.WithString("agents", mcpmcp.Required(), mcpmcp.Description(`JSON array of agents: [{"agent_id", "availability_status", "skills": {name: level}, "experience_level", "current_load"}]`)),
		mcpmcp.WithString("tickets", mcpmcp.Required(), mcpmcp.Description(`JSON array of tickets: [{"ticket_id", "title", "description", "creation_timestamp"}]`)),
		mcpmcp.WithString("idempotency_key", mcpmcp.Description("Optional key. Resubmitting with the same key returns the original run.")),
	), assignTicketsHandler(runSvc))

	s.AddTool(mcpmcp.NewTool("get_run",
		mcpmcp.WithDescription("Fetch a stored assignment run with all of its records."),
		mcpmcp.WithString("run_id", mcpmcp.Required(), mcpmcp.Description("Run UUID returned by assign_tickets")),
	), getRunHandler(runSvc))

	s.AddTool(mcpmcp.NewTool("list_runs",
		mcpmcp.WithDescription("List recent assignment runs, newest first."),
		mcpmcp.WithNumber("limit", mcpmcp.Description("Maximum number of runs (default 50)")),
	), listRunsHandler(runSvc))
}

// ── Tool handlers ─────────────────────────────────────────────────────────

func assignTicketsHandler(runSvc *runsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		var rawAgents, rawTickets []json.RawMessage
		if err := json.Unmarshal([]byte(mcpmcp.ParseString(req, "agents", "")), &rawAgents); err != nil {
			return mcpmcp.NewToolResultText("error: agents must be a JSON array"), nil
		}
		if err := json.Unmarshal([]byte(mcpmcp.ParseString(req, "tickets", "")), &rawTickets); err != nil {
			return mcpmcp.NewToolResultText("error: tickets must be a JSON array"), nil
		}

		ds, err := dataset.FromRaw(rawAgents, rawTickets)
		if err != nil {
			return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err)), nil
		}

		key := mcpmcp.ParseString(req, "idempotency_key", "")
		r, err := runSvc.Submit(ctx, key, ds.Agents, ds.Tickets)
		if err != nil {
			return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err)), nil
		}
		return jsonResult(r)
	}
}

func getRunHandler(runSvc *runsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		id, err := uuid.Parse(mcpmcp.ParseString(req, "run_id", ""))
		if err != nil {
			return mcpmcp.NewToolResultText("error: invalid run_id"), nil
		}

		r, err := runSvc.GetByID(ctx, id)
		if err != nil {
			return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err)), nil
		}
		return jsonResult(r)
	}
}

func listRunsHandler(runSvc *runsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		limit := mcpmcp.ParseInt(req, "limit", 0)

		runs, err := runSvc.List(ctx, limit)
		if err != nil {
			return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err)), nil
		}
		return jsonResult(runs)
	}
}

func jsonResult(v any) (*mcpmcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal tool result: %w", err)
	}
	return mcpmcp.NewToolResultText(string(data)), nil
}
