package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/LunkiBR/n8n-mcp-lite/pkg/toolschema"
)

// registerVersioningTools wires list-snapshots and rollback.
func registerVersioningTools(s *Server, deps *Deps) {
	s.RegisterTool("list_snapshots", "List saved snapshots for a workflow, newest first.",
		toolschema.Schema{
			Type:       "object",
			Required:   []string{"workflowId"},
			Properties: map[string]toolschema.Schema{"workflowId": stringProp, "limit": intProp()},
		},
		func(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
			id, err := mustString(args, "workflowId")
			if err != nil {
				return nil, err
			}
			limit := 0
			if l, ok := args["limit"].(float64); ok && l > 0 {
				limit = int(l)
			}
			metas, err := deps.Snapshots.List(id, limit)
			if err != nil {
				return nil, err
			}
			return jsonResult(metas)
		})

	s.RegisterTool("rollback_workflow", "Restore a workflow to a previously saved snapshot, after saving a fresh safety snapshot of the current state.",
		toolschema.Schema{
			Type:       "object",
			Required:   []string{"workflowId", "snapshotId"},
			Properties: map[string]toolschema.Schema{"workflowId": stringProp, "snapshotId": stringProp, "approve": approveProp},
		},
		func(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
			id, err := mustString(args, "workflowId")
			if err != nil {
				return nil, err
			}
			snapID, err := mustString(args, "snapshotId")
			if err != nil {
				return nil, err
			}

			out, err := withApproval(ctx, deps, "rollback_workflow", id, fmt.Sprintf("roll workflow %q back to snapshot %q", id, snapID), args,
				func(ctx context.Context) (any, error) {
					current, err := deps.Engine.GetWorkflow(ctx, id)
					if err != nil {
						return nil, err
					}
					rollback, err := deps.Snapshots.PrepareRollback(current, snapID)
					if err != nil {
						return nil, err
					}
					return deps.Engine.UpdateWorkflow(ctx, id, rollback.Workflow)
				})
			if err != nil {
				return nil, err
			}
			return jsonResult(out)
		})
}
