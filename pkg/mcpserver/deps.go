package mcpserver

import (
	"github.com/LunkiBR/n8n-mcp-lite/pkg/approval"
	"github.com/LunkiBR/n8n-mcp-lite/pkg/engineclient"
	"github.com/LunkiBR/n8n-mcp-lite/pkg/knowledge"
	"github.com/LunkiBR/n8n-mcp-lite/pkg/snapshot"
)

// Deps bundles every backing package a tool handler may need. It is built
// once at startup and threaded through RegisterCatalogue.
type Deps struct {
	Engine    *engineclient.Client
	Snapshots *snapshot.Store
	Gate      *approval.Gate
	Audit     *approval.AuditLog
	Knowledge *knowledge.Index
}
