// Package layout assigns two-dimensional editor coordinates to a workflow's
// nodes: X from a BFS layer pass, Y from a DFS lane pass with
// convergence-aware recentring, then pixel-ification.
package layout

import (
	"sort"

	"github.com/LunkiBR/n8n-mcp-lite/pkg/graph"
	"github.com/LunkiBR/n8n-mcp-lite/pkg/workflow"
)

const (
	baseX      = 0
	baseY      = 0
	layerWidth = 250
	laneHeight = 200
)

// Point is a pixel coordinate.
type Point struct {
	X float64
	Y float64
}

// Assign computes a Point for every name in nodeNames, given the workflow's
// connections. The result always has one entry per input name, even on a
// cyclic graph: the layer pass is bounded by an iteration cap proportional
// to the square of the node count, so it terminates with a finite (if not
// meaningful) assignment rather than hanging.
func Assign(connections []workflow.LiteConnection, nodeNames []string) map[string]Point {
	g := graph.Build(connections)

	layers := assignLayers(g, nodeNames)
	lanes := assignLanes(g, nodeNames, layers)

	out := make(map[string]Point, len(nodeNames))
	for _, n := range nodeNames {
		out[n] = Point{
			X: float64(baseX + layers[n]*layerWidth),
			Y: float64(baseY + lanes[n]*laneHeight),
		}
	}
	return out
}

// assignLayers runs BFS from every root (no incoming adjacency); a node's
// layer is the max over predecessors of (predecessor layer + 1), re-queuing
// whenever a node's layer increases. Bounded by cap = N^2 (floor 64) so
// cyclic input still terminates.
func assignLayers(g *graph.Graph, nodeNames []string) map[string]int {
	layer := make(map[string]int, len(nodeNames))
	for _, n := range nodeNames {
		layer[n] = 0
	}

	var roots []string
	for _, n := range nodeNames {
		if len(g.Reverse[n]) == 0 {
			roots = append(roots, n)
		}
	}
	if len(roots) == 0 && len(nodeNames) > 0 {
		roots = append(roots, nodeNames[0])
	}
	sort.Strings(roots)

	cap := len(nodeNames) * len(nodeNames)
	if cap < 64 {
		cap = 64
	}

	queue := append([]string(nil), roots...)
	iterations := 0
	for len(queue) > 0 && iterations < cap {
		n := queue[0]
		queue = queue[1:]
		iterations++

		for _, e := range g.Forward[n] {
			candidate := layer[n] + 1
			if candidate > layer[e.Node] {
				layer[e.Node] = candidate
				queue = append(queue, e.Node)
			}
		}
	}

	return layer
}

// assignLanes runs DFS from each disconnected root, placing each new root
// two lanes below the running maximum. At a branching node, children spread
// symmetrically around the parent's lane (offset = index - (count-1)/2);
// non-branching nodes inherit the parent's lane. After the DFS pass,
// convergence nodes (in-degree > 1) are recomputed as the mean of their
// incoming lanes and that adjustment is propagated forward through any
// single-parent chain.
func assignLanes(g *graph.Graph, nodeNames []string, layer map[string]int) map[string]float64 {
	lane := make(map[string]float64, len(nodeNames))
	visited := make(map[string]bool, len(nodeNames))

	var roots []string
	for _, n := range nodeNames {
		if len(g.Reverse[n]) == 0 {
			roots = append(roots, n)
		}
	}
	if len(roots) == 0 && len(nodeNames) > 0 {
		roots = nodeNames
	}
	sort.Strings(roots)

	nextRootLane := 0.0
	cap := len(nodeNames) * len(nodeNames)
	if cap < 64 {
		cap = 64
	}
	budget := cap

	for _, root := range roots {
		if visited[root] {
			continue
		}
		lane[root] = nextRootLane
		maxLane := dfsLane(g, root, nextRootLane, lane, visited, &budget)
		if maxLane > nextRootLane {
			nextRootLane = maxLane + 2
		} else {
			nextRootLane += 2
		}
	}

	// Any node the DFS never reached (pure cycle member with no root) still
	// needs a finite lane.
	for _, n := range nodeNames {
		if !visited[n] {
			lane[n] = nextRootLane
			nextRootLane += 2
		}
	}

	recentreConvergence(g, nodeNames, lane)

	return lane
}

func dfsLane(g *graph.Graph, node string, nodeLane float64, lane map[string]float64, visited map[string]bool, budget *int) float64 {
	if visited[node] || *budget <= 0 {
		return nodeLane
	}
	visited[node] = true
	*budget--
	lane[node] = nodeLane

	edges := append([]graph.Edge(nil), g.Forward[node]...)
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].OutputIndex != edges[j].OutputIndex {
			return edges[i].OutputIndex < edges[j].OutputIndex
		}
		return edges[i].Node < edges[j].Node
	})

	distinctOutputs := map[int]bool{}
	for _, e := range edges {
		distinctOutputs[e.OutputIndex] = true
	}

	maxLane := nodeLane
	if len(distinctOutputs) > 1 {
		count := len(distinctOutputs)
		idx := 0
		seen := map[int]bool{}
		for _, e := range edges {
			if visited[e.Node] {
				continue
			}
			var childIdx int
			if !seen[e.OutputIndex] {
				childIdx = idx
				seen[e.OutputIndex] = true
				idx++
			} else {
				childIdx = idx - 1
			}
			offset := float64(childIdx) - float64(count-1)/2
			childLane := nodeLane + offset
			got := dfsLane(g, e.Node, childLane, lane, visited, budget)
			if got > maxLane {
				maxLane = got
			}
		}
	} else {
		for _, e := range edges {
			if visited[e.Node] {
				continue
			}
			got := dfsLane(g, e.Node, nodeLane, lane, visited, budget)
			if got > maxLane {
				maxLane = got
			}
		}
	}
	return maxLane
}

func recentreConvergence(g *graph.Graph, nodeNames []string, lane map[string]float64) {
	for _, n := range nodeNames {
		incoming := g.Reverse[n]
		if len(incoming) <= 1 {
			continue
		}
		sum := 0.0
		for _, e := range incoming {
			sum += lane[e.Node]
		}
		newLane := sum / float64(len(incoming))
		delta := newLane - lane[n]
		if delta == 0 {
			continue
		}
		lane[n] = newLane
		propagateChain(g, n, delta, lane, map[string]bool{n: true})
	}
}

// propagateChain pushes a lane delta forward through any run of
// single-parent nodes following a recentred convergence node.
func propagateChain(g *graph.Graph, node string, delta float64, lane map[string]float64, visited map[string]bool) {
	for _, e := range g.Forward[node] {
		if visited[e.Node] {
			continue
		}
		if len(g.Reverse[e.Node]) != 1 {
			continue
		}
		visited[e.Node] = true
		lane[e.Node] += delta
		propagateChain(g, e.Node, delta, lane, visited)
	}
}
