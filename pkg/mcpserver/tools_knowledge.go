package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/LunkiBR/n8n-mcp-lite/pkg/apierrors"
	"github.com/LunkiBR/n8n-mcp-lite/pkg/knowledge"
	"github.com/LunkiBR/n8n-mcp-lite/pkg/toolschema"
)

// registerKnowledgeTools wires the node-type catalogue query surface:
// search-nodes, get-node, search-patterns, get-pattern, get-payload-schema,
// get-quirks, search-expressions, list-providers.
func registerKnowledgeTools(s *Server, deps *Deps) {
	s.RegisterTool("search_nodes", "Search the node-type catalogue by keyword, with AND/OR/FUZZY token matching and an optional source filter.",
		toolschema.Schema{
			Type:       "object",
			Required:   []string{"query"},
			Properties: map[string]toolschema.Schema{"query": stringProp, "mode": stringProp, "limit": intProp(), "source": stringProp},
		},
		func(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
			query, err := mustString(args, "query")
			if err != nil {
				return nil, err
			}
			mode := knowledge.ModeOR
			if m, ok := args["mode"].(string); ok && m != "" {
				mode = knowledge.SearchMode(m)
			}
			limit := 0
			if l, ok := args["limit"].(float64); ok && l > 0 {
				limit = int(l)
			}
			source, _ := args["source"].(string)
			hits := deps.Knowledge.SearchNodes(query, mode, limit, source)
			return jsonResult(hits)
		})

	s.RegisterTool("get_node", "Resolve one node-type query (full type, compact form, or display name) to its catalogue entry.",
		toolschema.Schema{Type: "object", Required: []string{"query"}, Properties: map[string]toolschema.Schema{"query": stringProp}},
		func(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
			query, err := mustString(args, "query")
			if err != nil {
				return nil, err
			}
			n, ok := deps.Knowledge.GetNode(query)
			if !ok {
				return nil, apierrors.NewMissingEntity("node type", query)
			}
			return jsonResult(n)
		})

	s.RegisterTool("search_patterns", "Search the named workflow-pattern recipes by keyword.",
		toolschema.Schema{Type: "object", Required: []string{"query"}, Properties: map[string]toolschema.Schema{"query": stringProp}},
		func(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
			query, err := mustString(args, "query")
			if err != nil {
				return nil, err
			}
			return jsonResult(deps.Knowledge.SearchPatterns(query))
		})

	s.RegisterTool("get_pattern", "Fetch one named workflow-pattern recipe.",
		toolschema.Schema{Type: "object", Required: []string{"name"}, Properties: map[string]toolschema.Schema{"name": stringProp}},
		func(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
			name, err := mustString(args, "name")
			if err != nil {
				return nil, err
			}
			p, ok := deps.Knowledge.GetPattern(name)
			if !ok {
				return nil, apierrors.NewMissingEntity("pattern", name)
			}
			return jsonResult(p)
		})

	s.RegisterTool("get_payload_schema", "Fetch the known execution-output shape for a node type.",
		toolschema.Schema{Type: "object", Required: []string{"nodeType"}, Properties: map[string]toolschema.Schema{"nodeType": stringProp}},
		func(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
			nodeType, err := mustString(args, "nodeType")
			if err != nil {
				return nil, err
			}
			p, ok := deps.Knowledge.GetPayloadSchema(nodeType)
			if !ok {
				return nil, apierrors.NewMissingEntity("payload schema", nodeType)
			}
			return jsonResult(p)
		})

	s.RegisterTool("get_quirks", "Fetch known gotchas for a node type.",
		toolschema.Schema{Type: "object", Required: []string{"nodeType"}, Properties: map[string]toolschema.Schema{"nodeType": stringProp}},
		func(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
			nodeType, err := mustString(args, "nodeType")
			if err != nil {
				return nil, err
			}
			return jsonResult(deps.Knowledge.GetQuirks(nodeType))
		})

	s.RegisterTool("search_expressions", "Search the expression-language cookbook by keyword.",
		toolschema.Schema{Type: "object", Required: []string{"query"}, Properties: map[string]toolschema.Schema{"query": stringProp}},
		func(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
			query, err := mustString(args, "query")
			if err != nil {
				return nil, err
			}
			return jsonResult(deps.Knowledge.SearchExpressions(query))
		})

	s.RegisterTool("list_providers", "List the distinct node-catalogue sources (core, langchain, community packages, …) registered in the knowledge index.",
		toolschema.Schema{Type: "object"},
		func(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
			return jsonResult(deps.Knowledge.ListSources())
		})
}
