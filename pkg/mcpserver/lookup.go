package mcpserver

import "github.com/LunkiBR/n8n-mcp-lite/pkg/knowledge"

func knowledgeLookup(deps *Deps) knowledge.PreflightLookup {
	return knowledge.PreflightLookup{Index: deps.Knowledge}
}
