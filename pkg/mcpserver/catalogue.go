package mcpserver

// RegisterCatalogue wires the full tool catalogue onto s: read, write,
// activation, execution, versioning, knowledge, and approval groups —
// spec.md §6.5's 19-to-26-tool surface.
func RegisterCatalogue(s *Server, deps *Deps) {
	registerReadTools(s, deps)
	registerWriteTools(s, deps)
	registerActivationTools(s, deps)
	registerExecutionTools(s, deps)
	registerVersioningTools(s, deps)
	registerKnowledgeTools(s, deps)
	registerApprovalTools(s, deps)
}
