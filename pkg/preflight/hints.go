package preflight

import "github.com/LunkiBR/n8n-mcp-lite/pkg/workflow"

// validateLocationHints is preflight's seventh layer: flagging a
// parameter that is syntactically well-formed but placed at a path the
// node type's schema does not recognize at all (as opposed to missing or
// mis-valued). It is fully implemented and unit-tested but deliberately
// never called from Run.
//
// Without a knowledge-index schema exhaustive enough to enumerate every
// legal top-level parameter per node type, this check flags correctly-
// placed parameters as misplaced on virtually every real workflow — most
// node types in practice carry optional fields the index doesn't yet
// know about. Re-enable only once the schema's property coverage is
// complete enough that an unrecognized path reliably means "misplaced"
// rather than "not yet catalogued".
func validateLocationHints(nodes []workflow.LiteNode, lookup Lookup) []Finding {
	var findings []Finding
	for _, n := range nodes {
		ns, ok := lookup.NodeSchema(n.Type)
		if !ok {
			continue
		}
		known := knownPaths(ns)
		for path := range flattenParamPaths(n.Parameters, "") {
			if known[path] {
				continue
			}
			findings = append(findings, Finding{
				NodeName: n.Name,
				Field:    path,
				Type:     "unrecognized_property_location",
				Message:  "property path is not recognized for this node type",
				Severity: SeverityWarning,
			})
		}
	}
	return findings
}

func knownPaths(ns NodeSchema) map[string]bool {
	known := map[string]bool{}
	for _, req := range ns.Required {
		known[req.Path] = true
	}
	for path := range ns.EnumProperties {
		known[path] = true
	}
	for path := range ns.PropertyTypes {
		known[path] = true
	}
	if ro := ns.ResourceOperation; ro != nil {
		known[ro.ResourcePath] = true
		known[ro.OperationPath] = true
	}
	return known
}

func flattenParamPaths(v any, path string) map[string]bool {
	paths := map[string]bool{}
	m, ok := v.(map[string]any)
	if !ok {
		return paths
	}
	for k, val := range m {
		p := joinPath(path, k)
		paths[p] = true
		for sub := range flattenParamPaths(val, p) {
			paths[sub] = true
		}
	}
	return paths
}
