package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/LunkiBR/n8n-mcp-lite/pkg/focus"
	"github.com/LunkiBR/n8n-mcp-lite/pkg/toolschema"
	"github.com/LunkiBR/n8n-mcp-lite/pkg/workflow"
)

var stringProp = toolschema.Schema{Type: "string"}

func intProp() toolschema.Schema { return toolschema.Schema{Type: "integer"} }

// registerReadTools wires list, scan, get, get-raw, focus, and expand-focus.
func registerReadTools(s *Server, deps *Deps) {
	s.RegisterTool("list_workflows", "List every workflow known to the engine, with id/name/active.",
		toolschema.Schema{Type: "object"},
		func(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
			items, err := deps.Engine.ListWorkflows(ctx)
			if err != nil {
				return nil, err
			}
			return jsonResult(items)
		})

	s.RegisterTool("scan_workflow", "Topologically-ordered one-line-per-node overview of a workflow, with segment detection and a token estimate.",
		toolschema.Schema{Type: "object", Required: []string{"id"}, Properties: map[string]toolschema.Schema{"id": stringProp}},
		func(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
			id, err := mustString(args, "id")
			if err != nil {
				return nil, err
			}
			raw, err := deps.Engine.GetWorkflow(ctx, id)
			if err != nil {
				return nil, err
			}
			scan, err := focus.BuildScan(raw)
			if err != nil {
				return nil, err
			}
			return jsonResult(scan)
		})

	s.RegisterTool("get_workflow", "Fetch a workflow's compact (lite) representation.",
		toolschema.Schema{Type: "object", Required: []string{"id"}, Properties: map[string]toolschema.Schema{"id": stringProp}},
		func(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
			id, err := mustString(args, "id")
			if err != nil {
				return nil, err
			}
			raw, err := deps.Engine.GetWorkflow(ctx, id)
			if err != nil {
				return nil, err
			}
			lite, err := workflow.Compress(raw, workflow.CompressOptions{})
			if err != nil {
				return nil, err
			}
			return jsonResult(lite)
		})

	s.RegisterTool("get_workflow_raw", "Fetch a workflow's full, unmodified engine-native JSON document.",
		toolschema.Schema{Type: "object", Required: []string{"id"}, Properties: map[string]toolschema.Schema{"id": stringProp}},
		func(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
			id, err := mustString(args, "id")
			if err != nil {
				return nil, err
			}
			raw, err := deps.Engine.GetWorkflow(ctx, id)
			if err != nil {
				return nil, err
			}
			return jsonResult(raw)
		})

	s.RegisterTool("focus_workflow", "Build a focused view around one or more nodes, a router branch, or a node range — full detail for the focused set, one-line dormant summaries for the rest.",
		toolschema.Schema{
			Type:     "object",
			Required: []string{"id"},
			Properties: map[string]toolschema.Schema{
				"id":          stringProp,
				"names":       {Type: "array", Items: &stringProp},
				"router":      stringProp,
				"outputIndex": intProp(),
				"maxDepth":    intProp(),
				"from":        stringProp,
				"to":          stringProp,
				"executionId": stringProp,
			},
		},
		func(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
			return handleFocus(ctx, deps, args)
		})

	s.RegisterTool("expand_focus", "Re-run focus_workflow with a wider selection (alias kept for callers following up on a prior focus call).",
		toolschema.Schema{
			Type:     "object",
			Required: []string{"id"},
			Properties: map[string]toolschema.Schema{
				"id":          stringProp,
				"names":       {Type: "array", Items: &stringProp},
				"router":      stringProp,
				"outputIndex": intProp(),
				"maxDepth":    intProp(),
				"from":        stringProp,
				"to":          stringProp,
				"executionId": stringProp,
			},
		},
		func(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
			return handleFocus(ctx, deps, args)
		})
}

func handleFocus(ctx context.Context, deps *Deps, args map[string]any) (*mcp.CallToolResult, error) {
	id, err := mustString(args, "id")
	if err != nil {
		return nil, err
	}
	raw, err := deps.Engine.GetWorkflow(ctx, id)
	if err != nil {
		return nil, err
	}

	sel := focus.Selection{}
	if names, ok := args["names"].([]any); ok {
		for _, n := range names {
			if s, ok := n.(string); ok {
				sel.Names = append(sel.Names, s)
			}
		}
	}
	if router, ok := args["router"].(string); ok && router != "" {
		maxDepth := 0
		if md, ok := args["maxDepth"].(float64); ok {
			maxDepth = int(md)
		}
		sel.Branch = &focus.BranchSelection{Router: router, MaxDepth: maxDepth}
		if oi, ok := args["outputIndex"].(float64); ok {
			sel.Branch.OutputIndex = int(oi)
		}
	}
	if from, ok := args["from"].(string); ok && from != "" {
		to, _ := args["to"].(string)
		sel.Range = &focus.RangeSelection{From: from, To: to}
	}

	execJSON := ""
	if execID, ok := args["executionId"].(string); ok && execID != "" {
		raw, err := deps.Engine.GetExecution(ctx, execID, true)
		if err != nil {
			return nil, err
		}
		execJSON = string(raw)
	}

	view, err := focus.BuildFocus(raw, sel, execJSON)
	if err != nil {
		return nil, err
	}
	return jsonResult(view)
}
