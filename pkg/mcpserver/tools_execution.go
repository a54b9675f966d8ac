package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/LunkiBR/n8n-mcp-lite/pkg/toolschema"
)

// registerExecutionTools wires list-executions, get-execution,
// trigger-webhook, and test-node.
func registerExecutionTools(s *Server, deps *Deps) {
	s.RegisterTool("list_executions", "List the most recent runs of a workflow, newest first.",
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
			limit := 20
			if l, ok := args["limit"].(float64); ok && l > 0 {
				limit = int(l)
			}
			runs, err := deps.Engine.ListExecutions(ctx, id, limit)
			if err != nil {
				return nil, err
			}
			return jsonResult(runs)
		})

	s.RegisterTool("get_execution", "Fetch one run's summary, optionally with its full result trace.",
		toolschema.Schema{
			Type:       "object",
			Required:   []string{"id"},
			Properties: map[string]toolschema.Schema{"id": stringProp, "includeData": {Type: "boolean"}},
		},
		func(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
			id, err := mustString(args, "id")
			if err != nil {
				return nil, err
			}
			includeData, _ := args["includeData"].(bool)
			raw, err := deps.Engine.GetExecution(ctx, id, includeData)
			if err != nil {
				return nil, err
			}
			return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: string(raw)}}}, nil
		})

	s.RegisterTool("trigger_webhook", "Fire a workflow's webhook trigger against the production or test path.",
		toolschema.Schema{
			Type:       "object",
			Required:   []string{"path"},
			Properties: map[string]toolschema.Schema{"path": stringProp, "test": {Type: "boolean"}, "payload": {Type: "object"}},
		},
		func(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
			path, err := mustString(args, "path")
			if err != nil {
				return nil, err
			}
			test, _ := args["test"].(bool)
			raw, err := deps.Engine.TriggerWebhook(ctx, path, test, args["payload"])
			if err != nil {
				return nil, err
			}
			return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: string(raw)}}}, nil
		})

	s.RegisterTool("test_node", "Trigger a workflow's test-path webhook with a sample payload, for exercising one node's behaviour before activating it in production.",
		toolschema.Schema{
			Type:       "object",
			Required:   []string{"path"},
			Properties: map[string]toolschema.Schema{"path": stringProp, "payload": {Type: "object"}},
		},
		func(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
			path, err := mustString(args, "path")
			if err != nil {
				return nil, err
			}
			payload := args["payload"]
			if payload == nil {
				payload = json.RawMessage(`{}`)
			}
			raw, err := deps.Engine.TriggerWebhook(ctx, path, true, payload)
			if err != nil {
				return nil, err
			}
			return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: string(raw)}}}, nil
		})
}
