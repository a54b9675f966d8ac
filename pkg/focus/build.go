package focus

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/LunkiBR/n8n-mcp-lite/pkg/graph"
	"github.com/LunkiBR/n8n-mcp-lite/pkg/workflow"
)

// ScanResult is the response shape for the scan_workflow tool.
type ScanResult struct {
	ID               string                   `json:"id"`
	Name             string                   `json:"name"`
	Nodes            []workflow.ScanNode      `json:"nodes"`
	Connections      []workflow.LiteConnection `json:"connections"`
	Segments         []SegmentSummary         `json:"segments,omitempty"`
	EstimatedTokens  int                      `json:"estimatedTokens"`
	FocusRecommended bool                     `json:"focusRecommended"`
}

// SegmentSummary is a router branch's label plus member count, for the scan
// view (full membership belongs to the focus view, not the scan view).
type SegmentSummary struct {
	Label       string `json:"label"`
	MemberCount int    `json:"memberCount"`
}

const (
	focusRecommendTokens = 8000
	focusRecommendNodes  = 30
)

// BuildScan assembles the scan view: topological order, summaries, output
// counts, segment detection, and a rough token estimate.
func BuildScan(raw *workflow.RawWorkflow) (*ScanResult, error) {
	lite, err := workflow.Compress(raw, workflow.CompressOptions{})
	if err != nil {
		return nil, err
	}

	g := graph.Build(lite.Connections)

	outputCounts := map[string]int{}
	for src, edges := range g.Forward {
		seen := map[int]bool{}
		for _, e := range edges {
			seen[e.OutputIndex] = true
		}
		outputCounts[src] = len(seen)
	}

	nodes := make([]workflow.ScanNode, 0, len(lite.Nodes))
	tokenEstimate := 0
	for _, n := range lite.Nodes {
		sn := workflow.ScanNode{
			Name:     n.Name,
			Type:     n.Type,
			ID:       n.ID,
			Disabled: n.Disabled,
			Summary:  Summarize(n),
		}
		if c := outputCounts[n.Name]; c > 1 {
			sn.OutputCount = c
		}
		nodes = append(nodes, sn)

		paramBytes, _ := json.Marshal(n.Parameters)
		tokenEstimate += 20 + len(paramBytes)/4
	}

	segments := g.Segments(outputCounts)
	summaries := make([]SegmentSummary, 0, len(segments))
	for _, s := range segments {
		summaries = append(summaries, SegmentSummary{Label: s.Label, MemberCount: len(s.Members)})
	}

	recommended := tokenEstimate > focusRecommendTokens || len(lite.Nodes) > focusRecommendNodes

	return &ScanResult{
		ID:               lite.ID,
		Name:             lite.Name,
		Nodes:            nodes,
		Connections:      lite.Connections,
		Segments:         summaries,
		EstimatedTokens:  tokenEstimate,
		FocusRecommended: recommended,
	}, nil
}

// Selection describes how the caller chose the focused set: exactly one of
// Names, Branch, or Range must be populated.
type Selection struct {
	Names []string

	Branch *BranchSelection

	Range *RangeSelection
}

// BranchSelection focuses on the nodes reachable from one router output.
type BranchSelection struct {
	Router         string
	OutputIndex    int
	MaxDepth       int
	UpstreamLevels int
}

// RangeSelection focuses on the nodes between two endpoints.
type RangeSelection struct {
	From string
	To   string
}

// SelectionError names an invalid selection (unknown node, zero-hit branch
// or range).
type SelectionError struct {
	Reason string
}

func (e *SelectionError) Error() string { return e.Reason }

// BuildFocus classifies zones for the given selection, emits full-detail
// lite nodes for the focused set (optionally with ghost-payload hints),
// dormant records for everyone else, boundary crossings, and per-zone
// counts.
func BuildFocus(raw *workflow.RawWorkflow, sel Selection, executionJSON string) (*workflow.FocusedWorkflowView, error) {
	lite, err := workflow.Compress(raw, workflow.CompressOptions{})
	if err != nil {
		return nil, err
	}

	allNames := make([]string, len(lite.Nodes))
	byName := make(map[string]workflow.LiteNode, len(lite.Nodes))
	for i, n := range lite.Nodes {
		allNames[i] = n.Name
		byName[n.Name] = n
	}
	known := func(name string) bool { _, ok := byName[name]; return ok }

	g := graph.Build(lite.Connections)

	focusedSet, err := resolveSelection(g, sel, known)
	if err != nil {
		return nil, err
	}

	zones := g.ClassifyZones(allNames, focusedSet)

	var runs map[string]NodeRun
	if executionJSON != "" {
		runs = ParseExecutionTrace(executionJSON)
	}

	var focusedNodes []workflow.LiteNode
	var dormant []workflow.DormantNode
	zoneCounts := workflow.ZoneCounts{}

	for _, name := range allNames {
		n := byName[name]
		switch zones[name] {
		case graph.ZoneFocused:
			zoneCounts.Focused++
			if runs != nil {
				n.InputHint = GhostPayload(name, g, runs)
			}
			focusedNodes = append(focusedNodes, n)
		case graph.ZoneUpstream:
			zoneCounts.Upstream++
			dormant = append(dormant, buildDormant(n, "upstream", g, focusedSet, true))
		case graph.ZoneDownstream:
			zoneCounts.Downstream++
			dormant = append(dormant, buildDormant(n, "downstream", g, focusedSet, false))
		default:
			zoneCounts.Parallel++
			dormant = append(dormant, buildDormant(n, "parallel", g, focusedSet, false))
		}
	}

	var focusedConns []workflow.LiteConnection
	for _, c := range lite.Connections {
		if focusedSet[c.Source] && focusedSet[c.Target] {
			focusedConns = append(focusedConns, c)
		}
	}

	return &workflow.FocusedWorkflowView{
		ID:          lite.ID,
		Name:        lite.Name,
		TotalNodes:  len(allNames),
		Nodes:       focusedNodes,
		Connections: focusedConns,
		Dormant:     dormant,
		Boundaries:  graph.Boundaries(lite.Connections, focusedSet),
		Zones:       zoneCounts,
	}, nil
}

func buildDormant(n workflow.LiteNode, zone string, g *graph.Graph, focused map[string]bool, upstream bool) workflow.DormantNode {
	d := workflow.DormantNode{
		Name:    n.Name,
		Type:    n.Type,
		ID:      n.ID,
		Zone:    zone,
		Summary: Summarize(n),
	}
	if upstream {
		d.OutputHint = OutputHint(n)
		var targets []string
		for _, e := range g.Forward[n.Name] {
			if focused[e.Node] {
				targets = append(targets, e.Node)
			}
		}
		sort.Strings(targets)
		d.OutputsTo = targets
	}
	if zone == "downstream" {
		var sources []string
		for _, e := range g.Reverse[n.Name] {
			if focused[e.Node] {
				sources = append(sources, e.Node)
			}
		}
		sort.Strings(sources)
		d.InputsFrom = sources
	}
	return d
}

func resolveSelection(g *graph.Graph, sel Selection, known func(string) bool) (map[string]bool, error) {
	switch {
	case len(sel.Names) > 0:
		set := map[string]bool{}
		for _, n := range sel.Names {
			if !known(n) {
				return nil, &SelectionError{Reason: fmt.Sprintf("unknown node %q", n)}
			}
			set[n] = true
		}
		return set, nil

	case sel.Branch != nil:
		b := sel.Branch
		if !known(b.Router) {
			return nil, &SelectionError{Reason: fmt.Sprintf("unknown node %q", b.Router)}
		}
		set := g.FollowBranch(b.Router, b.OutputIndex, b.MaxDepth)
		if len(set) <= 1 {
			return nil, &SelectionError{Reason: fmt.Sprintf("output index %d of %q has no targets", b.OutputIndex, b.Router)}
		}
		if b.UpstreamLevels > 0 {
			for n := range g.BFSBackward([]string{b.Router}, b.UpstreamLevels, nil) {
				set[n] = true
			}
		}
		return set, nil

	case sel.Range != nil:
		r := sel.Range
		if !known(r.From) {
			return nil, &SelectionError{Reason: fmt.Sprintf("unknown node %q", r.From)}
		}
		if !known(r.To) {
			return nil, &SelectionError{Reason: fmt.Sprintf("unknown node %q", r.To)}
		}
		set := g.Range(r.From, r.To)
		if !g.BFSForward([]string{r.From}, 0, nil)[r.To] {
			return nil, &SelectionError{Reason: fmt.Sprintf("no path between %q and %q", r.From, r.To)}
		}
		return set, nil

	default:
		return nil, &SelectionError{Reason: "no focus selection provided"}
	}
}
