package mcpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LunkiBR/n8n-mcp-lite/pkg/engineclient"
	"github.com/LunkiBR/n8n-mcp-lite/pkg/workflow"
)

func engineDeps(t *testing.T, handler http.HandlerFunc) *Deps {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := engineclient.New(srv.URL, "", 0)
	require.NoError(t, err)
	return &Deps{Engine: c}
}

func sampleRawWorkflow() map[string]any {
	return map[string]any{
		"id":     "wf1",
		"name":   "hello",
		"active": false,
		"nodes": []any{
			map[string]any{"id": "1", "name": "Start", "type": "manualTrigger", "position": []float64{0, 0}},
			map[string]any{"id": "2", "name": "End", "type": "noOp", "position": []float64{100, 0}},
		},
		"connections": map[string]any{
			"Start": map[string]any{
				"main": []any{
					[]any{map[string]any{"node": "End", "type": "main", "index": 0}},
				},
			},
		},
	}
}

func TestHandleFocusSelectsNamedNodes(t *testing.T) {
	deps := engineDeps(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/workflows/wf1", r.URL.Path)
		json.NewEncoder(w).Encode(sampleRawWorkflow())
	})

	res, err := handleFocus(context.Background(), deps, map[string]any{
		"id":    "wf1",
		"names": []any{"End"},
	})
	require.NoError(t, err)
	require.Len(t, res.Content, 1)

	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected *mcp.TextContent, got %T", res.Content[0])

	var view workflow.FocusedWorkflowView
	require.NoError(t, json.Unmarshal([]byte(text.Text), &view))
	assert.NotEmpty(t, view.Nodes)
}

func TestHandleFocusRequiresID(t *testing.T) {
	deps := &Deps{}
	_, err := handleFocus(context.Background(), deps, map[string]any{})
	assert.Error(t, err)
}
