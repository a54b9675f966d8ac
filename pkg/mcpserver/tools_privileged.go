package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/LunkiBR/n8n-mcp-lite/pkg/layout"
	"github.com/LunkiBR/n8n-mcp-lite/pkg/preflight"
	"github.com/LunkiBR/n8n-mcp-lite/pkg/snapshot"
	"github.com/LunkiBR/n8n-mcp-lite/pkg/surgicaledit"
	"github.com/LunkiBR/n8n-mcp-lite/pkg/toolschema"
	"github.com/LunkiBR/n8n-mcp-lite/pkg/workflow"
)

var approveProp = toolschema.Schema{Type: "string"}

// saveSnapshot records a pre/post-mutation snapshot, logging (not
// propagating) a write failure — a snapshot miss must never block the
// mutation it was meant to protect.
func saveSnapshot(deps *Deps, raw *workflow.RawWorkflow, trigger snapshot.Trigger, description string) {
	if _, err := deps.Snapshots.Save(raw, trigger, description); err != nil {
		serverLog.Printf("failed to save %s snapshot for workflow %s: %v", trigger, raw.ID, err)
	}
}

// registerWriteTools wires create, update-full, update-surgical, and
// delete, each gated by the two-phase approval commit. Create and both
// updates run a preflight pass that blocks the write on any error; the
// updates and delete snapshot the current workflow before writing, and
// create snapshots the newly created workflow afterwards.
func registerWriteTools(s *Server, deps *Deps) {
	s.RegisterTool("create_workflow", "Create a new workflow from a lite representation. Blocked if preflight reports any error.",
		toolschema.Schema{
			Type:     "object",
			Required: []string{"workflow"},
			Properties: map[string]toolschema.Schema{
				"workflow": {Type: "object"},
				"approve":  approveProp,
			},
		},
		func(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
			var lite workflow.LiteWorkflow
			if err := decodeInto(args["workflow"], &lite); err != nil {
				return nil, fmt.Errorf("decode workflow: %w", err)
			}
			if res := runPreflight(&lite, deps); !res.Pass {
				return jsonResult(blockedResult("create_workflow", res))
			}

			out, err := withApproval(ctx, deps, "create_workflow", "", fmt.Sprintf("create workflow %q (%d nodes)", lite.Name, len(lite.Nodes)), args,
				func(ctx context.Context) (any, error) {
					raw, err := workflow.Reconstruct(&lite, nil)
					if err != nil {
						return nil, err
					}
					created, err := deps.Engine.CreateWorkflow(ctx, raw)
					if err != nil {
						return nil, err
					}
					saveSnapshot(deps, created, snapshot.TriggerPreCreate, "post-create baseline")
					return created, nil
				})
			if err != nil {
				return nil, err
			}
			return jsonResult(out)
		})

	s.RegisterTool("update_workflow_full", "Replace a workflow's entire node/connection set from a lite representation. Blocked if preflight reports any error.",
		toolschema.Schema{
			Type:     "object",
			Required: []string{"id", "workflow"},
			Properties: map[string]toolschema.Schema{
				"id":       stringProp,
				"workflow": {Type: "object"},
				"approve":  approveProp,
			},
		},
		func(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
			id, err := mustString(args, "id")
			if err != nil {
				return nil, err
			}
			var lite workflow.LiteWorkflow
			if err := decodeInto(args["workflow"], &lite); err != nil {
				return nil, fmt.Errorf("decode workflow: %w", err)
			}
			if res := runPreflight(&lite, deps); !res.Pass {
				return jsonResult(blockedResult("update_workflow_full", res))
			}

			out, err := withApproval(ctx, deps, "update_workflow_full", id, fmt.Sprintf("replace workflow %q (%d nodes)", id, len(lite.Nodes)), args,
				func(ctx context.Context) (any, error) {
					current, err := deps.Engine.GetWorkflow(ctx, id)
					if err != nil {
						return nil, err
					}
					saveSnapshot(deps, current, snapshot.TriggerPreUpdateWorkflow, "pre-update-full safety snapshot")
					raw, err := workflow.Reconstruct(&lite, current)
					if err != nil {
						return nil, err
					}
					return deps.Engine.UpdateWorkflow(ctx, id, raw)
				})
			if err != nil {
				return nil, err
			}
			return jsonResult(out)
		})

	s.RegisterTool("update_workflow_surgical", "Apply a batch of typed operations (add/remove/update node, add/remove connection, rename, enable/disable) to a workflow fetched just-in-time. The batch is atomic: the first failing operation aborts the whole batch.",
		toolschema.Schema{
			Type:     "object",
			Required: []string{"id", "operations"},
			Properties: map[string]toolschema.Schema{
				"id":         stringProp,
				"operations": {Type: "array", Items: &toolschema.Schema{Type: "object"}},
				"approve":    approveProp,
			},
		},
		func(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
			id, err := mustString(args, "id")
			if err != nil {
				return nil, err
			}
			var ops []surgicaledit.Op
			if err := decodeInto(args["operations"], &ops); err != nil {
				return nil, fmt.Errorf("decode operations: %w", err)
			}

			out, err := withApproval(ctx, deps, "update_workflow_surgical", id, fmt.Sprintf("apply %d operation(s) to workflow %q", len(ops), id), args,
				func(ctx context.Context) (any, error) {
					current, err := deps.Engine.GetWorkflow(ctx, id)
					if err != nil {
						return nil, err
					}
					lite, err := workflow.Compress(current, workflow.CompressOptions{})
					if err != nil {
						return nil, err
					}
					edited, newNodes, err := surgicaledit.Apply(lite, ops)
					if err != nil {
						return nil, err
					}
					if res := runPreflight(edited, deps); !res.Pass {
						return blockedResult("update_workflow_surgical", res), nil
					}

					saveSnapshot(deps, current, snapshot.TriggerPreUpdateNodes, "pre-surgical-edit safety snapshot")
					raw, err := workflow.Reconstruct(edited, current)
					if err != nil {
						return nil, err
					}
					placeNewNodes(raw, edited.Connections, newNodes)
					return deps.Engine.UpdateWorkflow(ctx, id, raw)
				})
			if err != nil {
				return nil, err
			}
			return jsonResult(out)
		})

	s.RegisterTool("delete_workflow", "Delete a workflow, after saving a safety snapshot.",
		toolschema.Schema{
			Type:       "object",
			Required:   []string{"id"},
			Properties: map[string]toolschema.Schema{"id": stringProp, "approve": approveProp},
		},
		func(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
			id, err := mustString(args, "id")
			if err != nil {
				return nil, err
			}
			out, err := withApproval(ctx, deps, "delete_workflow", id, fmt.Sprintf("delete workflow %q", id), args,
				func(ctx context.Context) (any, error) {
					current, err := deps.Engine.GetWorkflow(ctx, id)
					if err != nil {
						return nil, err
					}
					saveSnapshot(deps, current, snapshot.TriggerPreDelete, "pre-delete safety snapshot")
					if err := deps.Engine.DeleteWorkflow(ctx, id); err != nil {
						return nil, err
					}
					return map[string]any{"deleted": true, "id": id}, nil
				})
			if err != nil {
				return nil, err
			}
			return jsonResult(out)
		})
}

// registerActivationTools wires activate/deactivate.
func registerActivationTools(s *Server, deps *Deps) {
	for _, active := range []bool{true, false} {
		active := active
		name := "activate_workflow"
		verb := "activate"
		if !active {
			name = "deactivate_workflow"
			verb = "deactivate"
		}
		s.RegisterTool(name, fmt.Sprintf("%s a workflow.", verb),
			toolschema.Schema{Type: "object", Required: []string{"id"}, Properties: map[string]toolschema.Schema{"id": stringProp, "approve": approveProp}},
			func(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
				id, err := mustString(args, "id")
				if err != nil {
					return nil, err
				}
				out, err := withApproval(ctx, deps, name, id, fmt.Sprintf("%s workflow %q", verb, id), args,
					func(ctx context.Context) (any, error) {
						if err := deps.Engine.SetActive(ctx, id, active); err != nil {
							return nil, err
						}
						return map[string]any{"id": id, "active": active}, nil
					})
				if err != nil {
					return nil, err
				}
				return jsonResult(out)
			})
	}
}

// runPreflight compresses are already done by the caller when edited is a
// *workflow.LiteWorkflow; this overload runs the pipeline given one.
func runPreflight(lite *workflow.LiteWorkflow, deps *Deps) preflight.Result {
	lookup := knowledgeLookup(deps)
	return preflight.Run(lite.Nodes, lite.Connections, lookup)
}

// placeNewNodes fills in editor positions for nodes a surgical edit added.
// Reconstruct only carries position forward for nodes that existed in the
// prior raw workflow, so a freshly added node lands at the zero position
// until laid out here.
func placeNewNodes(raw *workflow.RawWorkflow, connections []workflow.LiteConnection, newNodes []string) {
	if len(newNodes) == 0 {
		return
	}
	points := layout.Assign(connections, newNodes)
	for i := range raw.Nodes {
		if p, ok := points[raw.Nodes[i].Name]; ok {
			raw.Nodes[i].Position = [2]float64{p.X, p.Y}
		}
	}
}

func blockedResult(tool string, res preflight.Result) map[string]any {
	return map[string]any{
		"blocked":    true,
		"tool":       tool,
		"errors":     res.Errors,
		"warnings":   res.Warnings,
		"summary":    res.Summary,
		"durationMs": res.DurationMS,
	}
}
