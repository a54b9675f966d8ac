// Package mcpserver wraps the MCP Go SDK's server and tool-registration
// surface, enforcing toolschema validation ahead of every handler and
// translating panics and apierrors into the result shapes an MCP client
// expects.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/LunkiBR/n8n-mcp-lite/pkg/logger"
	"github.com/LunkiBR/n8n-mcp-lite/pkg/stringutil"
	"github.com/LunkiBR/n8n-mcp-lite/pkg/toolschema"
)

var serverLog = logger.New("mcpserver")

// mcpErrorData marshals v to JSON for a jsonrpc.Error's Data field,
// swallowing a marshal failure into a nil payload rather than letting error
// reporting itself fail.
func mcpErrorData(v any) json.RawMessage {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		serverLog.Printf("failed to marshal error data: %v", err)
		return nil
	}
	return data
}

// ToolFunc is the signature every registered tool handler implements. args
// is the already-schema-validated request payload.
type ToolFunc func(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error)

// Server wraps *mcp.Server with the catalogue this module registers.
type Server struct {
	inner *mcp.Server
}

// New constructs a Server with the given implementation name/version.
func New(name, version string) *Server {
	return &Server{inner: mcp.NewServer(&mcp.Implementation{Name: name, Version: version}, nil)}
}

// Inner returns the underlying *mcp.Server, for Run/transport wiring.
func (s *Server) Inner() *mcp.Server { return s.inner }

// RegisterTool adds one tool to the catalogue. schema is converted to a
// JSON-Schema document for the listing and also used to validate every
// incoming call before handler runs; a validation failure short-circuits
// with the formatted "Validation failed" text result without invoking
// handler.
func (s *Server) RegisterTool(toolName, description string, schema toolschema.Schema, handler ToolFunc) {
	mcp.AddTool(s.inner, &mcp.Tool{
		Name:        toolName,
		Description: description,
		InputSchema: ToJSONSchema(schema),
	}, func(ctx context.Context, req *mcp.CallToolRequest, args map[string]any) (*mcp.CallToolResult, any, error) {
		return runTool(ctx, toolName, schema, handler, args)
	})
}

// runTool holds RegisterTool's per-call logic as its own function so it can
// be exercised directly in tests without a live MCP transport: cancellation
// check, schema validation, the handler call guarded by recover, and error
// sanitization before the result reaches the client or the log.
func runTool(ctx context.Context, toolName string, schema toolschema.Schema, handler ToolFunc, args map[string]any) (res *mcp.CallToolResult, _ any, _ error) {
	defer func() {
		if r := recover(); r != nil {
			sanitized := stringutil.SanitizeErrorMessage(fmt.Sprintf("%v", r))
			serverLog.Printf("tool %q handler panicked: %s", toolName, sanitized)
			res = &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: "Error: " + sanitized}},
			}
		}
	}()

	select {
	case <-ctx.Done():
		return nil, nil, &jsonrpc.Error{
			Code:    jsonrpc.CodeInternalError,
			Message: "request cancelled",
			Data:    mcpErrorData(ctx.Err().Error()),
		}
	default:
	}

	if fieldErrs := toolschema.Validate(schema, args); len(fieldErrs) > 0 {
		serverLog.Printf("tool %q rejected: %d validation error(s)", toolName, len(fieldErrs))
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: toolschema.FormatErrors(toolName, fieldErrs)}},
		}, nil, nil
	}

	result, err := handler(ctx, args)
	if err != nil {
		sanitized := stringutil.SanitizeErrorMessage(err.Error())
		serverLog.Printf("tool %q handler error: %s", toolName, sanitized)
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: "Error: " + sanitized}},
		}, nil, nil
	}
	return result, nil, nil
}
