// Package graph implements the adjacency, traversal, branch-following,
// range-discovery, zone-classification, and boundary/segment computations
// that power the focus and scan builders.
package graph

import (
	"sort"

	"github.com/LunkiBR/n8n-mcp-lite/pkg/workflow"
)

// Edge is one adjacency entry: the other endpoint of a connection plus the
// indices and kind needed to reconstruct it.
type Edge struct {
	Node        string
	OutputIndex int
	InputIndex  int
	Type        string
}

// Graph is the forward and reverse adjacency built from a workflow's Lite
// Connections.
type Graph struct {
	Forward map[string][]Edge
	Reverse map[string][]Edge
}

// Build constructs forward (source -> targets) and reverse (target ->
// sources) adjacency from a connection list.
func Build(connections []workflow.LiteConnection) *Graph {
	g := &Graph{
		Forward: map[string][]Edge{},
		Reverse: map[string][]Edge{},
	}
	for _, c := range connections {
		kind := c.Type
		if kind == "" {
			kind = "main"
		}
		inputIdx := 0
		if c.InputIndex != nil {
			inputIdx = *c.InputIndex
		}
		g.Forward[c.Source] = append(g.Forward[c.Source], Edge{
			Node: c.Target, OutputIndex: c.OutputIndex, InputIndex: inputIdx, Type: kind,
		})
		g.Reverse[c.Target] = append(g.Reverse[c.Target], Edge{
			Node: c.Source, OutputIndex: c.OutputIndex, InputIndex: inputIdx, Type: kind,
		})
	}
	return g
}

func bfs(adj map[string][]Edge, starts []string, maxDepth int, exclude map[string]bool) map[string]bool {
	visited := map[string]bool{}
	type item struct {
		node  string
		depth int
	}
	queue := make([]item, 0, len(starts))
	for _, s := range starts {
		if exclude[s] {
			continue
		}
		queue = append(queue, item{s, 0})
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if visited[cur.node] {
			continue
		}
		visited[cur.node] = true

		if maxDepth > 0 && cur.depth >= maxDepth {
			continue
		}
		for _, e := range adj[cur.node] {
			if visited[e.Node] || exclude[e.Node] {
				continue
			}
			queue = append(queue, item{e.Node, cur.depth + 1})
		}
	}

	for n := range exclude {
		delete(visited, n)
	}
	return visited
}

// BFSForward visits every node reachable forward from any of starts, up to
// maxDepth hops (0 = unbounded), never revisiting a node and never entering
// an excluded one.
func (g *Graph) BFSForward(starts []string, maxDepth int, exclude map[string]bool) map[string]bool {
	return bfs(g.Forward, starts, maxDepth, exclude)
}

// BFSBackward is BFSForward over the reverse adjacency.
func (g *Graph) BFSBackward(starts []string, maxDepth int, exclude map[string]bool) map[string]bool {
	return bfs(g.Reverse, starts, maxDepth, exclude)
}

// FollowBranch collects the immediate targets of one specific output index
// off a branching source, then BFS-forwards from those targets following
// every output. The branching source itself is always included.
func (g *Graph) FollowBranch(source string, outputIndex int, maxDepth int) map[string]bool {
	var starts []string
	for _, e := range g.Forward[source] {
		if e.OutputIndex == outputIndex {
			starts = append(starts, e.Node)
		}
	}

	result := g.BFSForward(starts, maxDepth, nil)
	result[source] = true
	return result
}

// Range returns the nodes "between" start and end: the intersection of
// nodes forward-reachable from start and backward-reachable from end. Both
// endpoints are always included. If the intersection is empty and
// start != end, the result is just the two endpoints.
func (g *Graph) Range(start, end string) map[string]bool {
	forward := g.BFSForward([]string{start}, 0, nil)
	backward := g.BFSBackward([]string{end}, 0, nil)

	result := map[string]bool{}
	for n := range forward {
		if backward[n] {
			result[n] = true
		}
	}
	result[start] = true
	result[end] = true

	if len(result) <= 2 && start != end {
		return map[string]bool{start: true, end: true}
	}
	return result
}

// Zone classifies every node outside the focused set as downstream (forward
// reachable from the focused set — this takes precedence even when a node
// is also backward-reachable, so a convergence node shows as downstream),
// upstream (backward-reachable only), or parallel (neither).
type Zone string

const (
	ZoneFocused    Zone = "focused"
	ZoneUpstream   Zone = "upstream"
	ZoneDownstream Zone = "downstream"
	ZoneParallel   Zone = "parallel"
)

// ClassifyZones returns the zone of every node in allNodes.
func (g *Graph) ClassifyZones(allNodes []string, focused map[string]bool) map[string]Zone {
	downstream := g.BFSForward(keys(focused), 0, nil)
	upstream := g.BFSBackward(keys(focused), 0, nil)

	zones := make(map[string]Zone, len(allNodes))
	for _, n := range allNodes {
		switch {
		case focused[n]:
			zones[n] = ZoneFocused
		case downstream[n]:
			zones[n] = ZoneDownstream
		case upstream[n]:
			zones[n] = ZoneUpstream
		default:
			zones[n] = ZoneParallel
		}
	}
	return zones
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Segment is one branch of a router: the output index, a human label, and
// the branch-followed member set (excluding the router itself).
type Segment struct {
	Router      string
	OutputIndex int
	Label       string
	Members     map[string]bool
}

// Segments detects router nodes (any source with a connection at output
// index >= 1) and computes one segment per output index 0..max, skipping
// empty branches.
func (g *Graph) Segments(nodeOutputCounts map[string]int) []Segment {
	var routers []string
	for src, edges := range g.Forward {
		maxIdx := 0
		isRouter := false
		for _, e := range edges {
			if e.OutputIndex >= 1 {
				isRouter = true
			}
			if e.OutputIndex > maxIdx {
				maxIdx = e.OutputIndex
			}
		}
		if isRouter {
			routers = append(routers, src)
			_ = maxIdx
		}
	}
	sort.Strings(routers)

	var segments []Segment
	for _, router := range routers {
		maxIdx := 0
		for _, e := range g.Forward[router] {
			if e.OutputIndex > maxIdx {
				maxIdx = e.OutputIndex
			}
		}

		outputCount := maxIdx + 1
		for i := 0; i <= maxIdx; i++ {
			members := g.FollowBranch(router, i, 0)
			delete(members, router)
			if len(members) == 0 {
				continue
			}

			label := outputLabel(router, i, outputCount)
			segments = append(segments, Segment{
				Router:      router,
				OutputIndex: i,
				Label:       label,
				Members:     members,
			})
		}
	}
	return segments
}

func outputLabel(router string, index, outputCount int) string {
	if outputCount == 2 {
		if index == 0 {
			return router + ": true branch"
		}
		return router + ": false branch"
	}
	return router + ": output " + itoa(index)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	digits := []byte{}
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	return string(digits)
}

// Boundaries emits one entry for every connection whose endpoints straddle
// the focused set: "entry" when the source is outside and the target
// inside, "exit" in the opposite case. Connections with both endpoints on
// the same side of the frontier are omitted.
func Boundaries(connections []workflow.LiteConnection, focused map[string]bool) []workflow.Boundary {
	var out []workflow.Boundary
	for _, c := range connections {
		srcIn := focused[c.Source]
		tgtIn := focused[c.Target]
		if srcIn == tgtIn {
			continue
		}

		b := workflow.Boundary{Source: c.Source, Target: c.Target, Type: c.Type, OutputIndex: c.OutputIndex}
		if c.InputIndex != nil {
			b.InputIndex = *c.InputIndex
		}
		if !srcIn && tgtIn {
			b.Direction = "entry"
		} else {
			b.Direction = "exit"
		}
		out = append(out, b)
	}
	return out
}
