package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	mcpmcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/alanyang/ticket-router/internal/domain/assignment"
	runsvc "github.com/alanyang/ticket-router/internal/service/run"
)

// RegisterPrompts registers the review_run prompt, which hands a stored run
// to the model as a plain-text table.
func RegisterPrompts(s *mcpserver.MCPServer, runSvc *runsvc.Service) {
	s.AddPrompt(
		mcpmcp.NewPrompt("review_run",
			mcpmcp.WithPromptDescription("Review the assignments of a stored run and flag tickets that were left unassigned or matched no skills."),
			mcpmcp.WithArgument("run_id",
				mcpmcp.ArgumentDescription("Run UUID returned by assign_tickets."),
				mcpmcp.RequiredArgument(),
			),
		),
		reviewRunHandler(runSvc),
	)
}

func reviewRunHandler(runSvc *runsvc.Service) mcpserver.PromptHandlerFunc {
	return func(ctx context.Context, req mcpmcp.GetPromptRequest) (*mcpmcp.GetPromptResult, error) {
		id, err := uuid.Parse(req.Params.Arguments["run_id"])
		if err != nil {
			return nil, fmt.Errorf("invalid run_id: %w", err)
		}

		r, err := runSvc.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		return mcpmcp.NewGetPromptResult(
			fmt.Sprintf("Review of run %s", r.ID),
			[]mcpmcp.PromptMessage{
				mcpmcp.NewPromptMessage(
					mcpmcp.RoleUser,
					mcpmcp.TextContent{
						Type: "text",
						Text: renderRun(r),
					},
				),
			},
		), nil
	}
}

func renderRun(r assignment.Run) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run %s assigned %d of %d tickets.\n", r.ID, r.AssignedCount, r.TicketCount)
	b.WriteString("Point out unassigned tickets and assignments with no matched skills, and suggest which agent skills are missing.\n\n")
	for _, rec := range r.Records {
		agentID := "-"
		if rec.AssignedAgentID != nil {
			agentID = rec.AssignedAgentID.String()
		}
		fmt.Fprintf(&b, "%s\t%s\t%s\n", rec.TicketID, agentID, rec.Rationale)
	}
	return b.String()
}
