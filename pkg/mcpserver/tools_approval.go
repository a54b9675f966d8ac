package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/LunkiBR/n8n-mcp-lite/pkg/approval"
	"github.com/LunkiBR/n8n-mcp-lite/pkg/toolschema"
)

// registerApprovalTools wires the supplemented set-approval-mode tool
// (spec.md §6.5 names it in the catalogue without detailing it; see
// SPEC_FULL.md §6).
func registerApprovalTools(s *Server, deps *Deps) {
	s.RegisterTool("set_approval_mode", "Toggle whether mutating tools require a two-phase approval round-trip.",
		toolschema.Schema{
			Type:       "object",
			Required:   []string{"mode"},
			Properties: map[string]toolschema.Schema{"mode": {Type: "string", Enum: []any{"require_approval", "auto_approve"}}},
		},
		func(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
			mode, err := mustString(args, "mode")
			if err != nil {
				return nil, err
			}
			var m approval.Mode
			switch mode {
			case "require_approval":
				m = approval.ModeRequireApproval
			case "auto_approve":
				m = approval.ModeAutoApprove
			default:
				return nil, fmt.Errorf("unknown mode %q", mode)
			}
			deps.Gate.SetMode(m)
			deps.Audit.Record(approval.Entry{Operation: "set_approval_mode", Description: string(m), Outcome: approval.OutcomeAuto})
			return jsonResult(map[string]any{"mode": m})
		})
}
