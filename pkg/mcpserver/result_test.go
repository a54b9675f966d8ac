package mcpserver

import (
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONResultWrapsIndentedJSON(t *testing.T) {
	res, err := jsonResult(map[string]any{"id": "wf1", "active": true})
	require.NoError(t, err)
	require.Len(t, res.Content, 1)

	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected *mcp.TextContent, got %T", res.Content[0])
	assert.NotEmpty(t, text.Text)
}

func TestDecodeIntoRemarshalsUntypedArgs(t *testing.T) {
	raw := any(map[string]any{"name": "A", "type": "noOp"})

	type node struct {
		Name string `json:"name"`
		Type string `json:"type"`
	}
	var n node
	require.NoError(t, decodeInto(raw, &n))
	assert.Equal(t, "A", n.Name)
	assert.Equal(t, "noOp", n.Type)
}
