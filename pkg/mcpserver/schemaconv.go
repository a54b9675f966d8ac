package mcpserver

import (
	"github.com/google/jsonschema-go/jsonschema"

	"github.com/LunkiBR/n8n-mcp-lite/pkg/toolschema"
)

// ToJSONSchema converts a toolschema.Schema — the data-driven shape every
// tool's arguments are declared in — into the *jsonschema.Schema the MCP
// SDK attaches to a tool's listing. The conversion is a plain structural
// walk, not reflection: tool schemas are runtime data here, not compile-time
// Go struct types, so the SDK's own reflection-based GenerateOutputSchema
// path doesn't fit this design and isn't used.
func ToJSONSchema(s toolschema.Schema) *jsonschema.Schema {
	out := &jsonschema.Schema{}
	if s.Type != "" {
		out.Type = s.Type
	}
	if len(s.Required) > 0 {
		out.Required = append([]string(nil), s.Required...)
	}
	if len(s.Enum) > 0 {
		out.Enum = append([]any(nil), s.Enum...)
	}
	out.Minimum = s.Minimum
	out.Maximum = s.Maximum

	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*jsonschema.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = ToJSONSchema(prop)
		}
	}
	if s.Items != nil {
		out.Items = ToJSONSchema(*s.Items)
	}
	return out
}
