package knowledge

import "github.com/LunkiBR/n8n-mcp-lite/pkg/preflight"

// PreflightLookup adapts the Index to preflight.Lookup, so Run can
// resolve node types against the same catalogue SearchNodes/GetNode
// query.
type PreflightLookup struct {
	Index *Index
}

// NodeSchema implements preflight.Lookup.
func (l PreflightLookup) NodeSchema(nodeType string) (preflight.NodeSchema, bool) {
	n, ok := l.Index.GetNode(nodeType)
	if !ok {
		return preflight.NodeSchema{}, false
	}

	ns := preflight.NodeSchema{
		Type:           n.Type,
		Category:       n.Category,
		EnumProperties: n.EnumProperties,
		PropertyTypes:  n.PropertyTypes,
	}
	for _, req := range n.Required {
		ns.Required = append(ns.Required, preflight.RequiredProperty{Path: req.Path, Show: req.Show})
	}
	if ro := n.ResourceOperation; ro != nil {
		ns.ResourceOperation = &preflight.ResourceOperationSchema{
			ResourcePath:         ro.ResourcePath,
			OperationPath:        ro.OperationPath,
			Resources:            ro.Resources,
			OperationsByResource: ro.OperationsByResource,
		}
	}
	return ns, true
}
