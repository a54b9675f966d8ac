package workflow

import (
	"fmt"
	"sort"

	"github.com/LunkiBR/n8n-mcp-lite/pkg/logger"
)

var codecLog = logger.New("workflow:codec")

// MalformedError names the field that could not be resolved while
// compressing a raw workflow. The codec never silently drops data it
// cannot make sense of; it fails loudly instead.
type MalformedError struct {
	Field string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed raw workflow: %s", e.Field)
}

// CompressOptions tunes what Compress attaches to each lite node.
type CompressOptions struct {
	// InputHints, when non-nil, supplies a per-node field-name hint derived
	// from a prior execution trace (see pkg/focus). Absent nodes get no hint.
	InputHints map[string][]string
}

// Compress maps a raw workflow onto its lite projection: nodes topologically
// sorted when acyclic, connections flattened to quadruples, parameters
// cleaned, credentials reduced to display names, and tags flattened to
// names only.
func Compress(raw *RawWorkflow, opts CompressOptions) (*LiteWorkflow, error) {
	if raw == nil {
		return nil, &MalformedError{Field: "workflow"}
	}
	if raw.Nodes == nil {
		return nil, &MalformedError{Field: "nodes"}
	}

	codecLog.Printf("compressing workflow %q (%d nodes)", raw.Name, len(raw.Nodes))

	liteConns := CompressConnections(raw.Connections)

	names := make([]string, len(raw.Nodes))
	byName := make(map[string]RawNode, len(raw.Nodes))
	for i, n := range raw.Nodes {
		if n.Name == "" {
			return nil, &MalformedError{Field: fmt.Sprintf("nodes[%d].name", i)}
		}
		names[i] = n.Name
		byName[n.Name] = n
	}

	order := TopologicalSort(names, liteConns)

	liteNodes := make([]LiteNode, 0, len(order))
	for _, name := range order {
		n := byName[name]
		ln := LiteNode{
			Name:        n.Name,
			Type:        CompressType(n.Type),
			ID:          n.ID,
			Parameters:  CleanParams(n.Parameters),
			Credentials: CompressCredentials(n.Credentials),
			Disabled:    n.Disabled,
			OnError:     n.OnError,
			Notes:       n.Notes,
		}
		if n.TypeVersion != 1 {
			ln.TypeVersion = n.TypeVersion
		}
		if opts.InputHints != nil {
			if hint, ok := opts.InputHints[n.Name]; ok {
				ln.InputHint = hint
			}
		}
		liteNodes = append(liteNodes, ln)
	}

	var tags []string
	for _, t := range raw.Tags {
		tags = append(tags, t.Name)
	}

	return &LiteWorkflow{
		ID:          raw.ID,
		Name:        raw.Name,
		Active:      raw.Active,
		Nodes:       liteNodes,
		Connections: liteConns,
		Tags:        tags,
		Settings:    raw.Settings,
	}, nil
}

// Reconstruct maps a lite workflow back onto the raw form the engine
// expects. When original is non-nil (an update, as opposed to a create) it
// is consulted for type-version defaulting and credential-identifier
// restoration; bloat/passthrough fields and the tag ID list carry over from
// original verbatim.
func Reconstruct(lite *LiteWorkflow, original *RawWorkflow) (*RawWorkflow, error) {
	if lite == nil {
		return nil, &MalformedError{Field: "workflow"}
	}

	codecLog.Printf("reconstructing workflow %q (%d nodes)", lite.Name, len(lite.Nodes))

	var originalByName map[string]RawNode
	if original != nil {
		originalByName = make(map[string]RawNode, len(original.Nodes))
		for _, n := range original.Nodes {
			originalByName[n.Name] = n
		}
	}

	nodes := make([]RawNode, 0, len(lite.Nodes))
	for _, ln := range lite.Nodes {
		if ln.Name == "" {
			return nil, &MalformedError{Field: "nodes[].name"}
		}

		var orig *RawNode
		if o, ok := originalByName[ln.Name]; ok {
			orig = &o
		}

		rn := RawNode{
			ID:          ln.ID,
			Name:        ln.Name,
			Type:        ExpandType(ln.Type),
			TypeVersion: ResolveTypeVersion(ln, orig),
			Parameters:  ln.Parameters,
			Credentials: RestoreCredentials(ln, original),
			Disabled:    ln.Disabled,
			OnError:     ln.OnError,
			Notes:       ln.Notes,
		}
		if orig != nil {
			rn.Position = orig.Position
			if rn.ID == "" {
				rn.ID = orig.ID
			}
		}
		nodes = append(nodes, rn)
	}

	out := &RawWorkflow{
		ID:          lite.ID,
		Name:        lite.Name,
		Active:      lite.Active,
		Nodes:       nodes,
		Connections: ReconstructConnections(lite.Connections),
		Settings:    lite.Settings,
	}

	if original != nil {
		out.extra = original.extra
		byName := make(map[string]bool, len(lite.Tags))
		for _, t := range lite.Tags {
			byName[t] = true
		}
		for _, t := range original.Tags {
			if byName[t.Name] {
				out.Tags = append(out.Tags, t)
				delete(byName, t.Name)
			}
		}
		remaining := make([]string, 0, len(byName))
		for name := range byName {
			remaining = append(remaining, name)
		}
		sort.Strings(remaining)
		for _, name := range remaining {
			out.Tags = append(out.Tags, RawTag{Name: name})
		}
	} else {
		for _, t := range lite.Tags {
			out.Tags = append(out.Tags, RawTag{Name: t})
		}
	}

	return out, nil
}
