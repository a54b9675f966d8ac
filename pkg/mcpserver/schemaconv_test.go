package mcpserver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LunkiBR/n8n-mcp-lite/pkg/toolschema"
)

func TestToJSONSchemaConvertsNestedShape(t *testing.T) {
	s := toolschema.Schema{
		Type:     "object",
		Required: []string{"id"},
		Properties: map[string]toolschema.Schema{
			"id":   {Type: "string"},
			"mode": {Type: "string", Enum: []any{"a", "b"}},
			"tags": {Type: "array", Items: &toolschema.Schema{Type: "string"}},
		},
	}

	out := ToJSONSchema(s)
	assert.Equal(t, "object", out.Type)
	assert.Equal(t, []string{"id"}, out.Required)
	assert.Equal(t, "string", out.Properties["id"].Type)
	assert.Len(t, out.Properties["mode"].Enum, 2)

	require.NotNil(t, out.Properties["tags"].Items)
	assert.Equal(t, "string", out.Properties["tags"].Items.Type)
}

func TestToJSONSchemaOmitsEmptyFields(t *testing.T) {
	out := ToJSONSchema(toolschema.Schema{Type: "string"})
	assert.Nil(t, out.Properties)
	assert.Nil(t, out.Items)
}
