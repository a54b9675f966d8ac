package workflow

// TopologicalSort orders node names by Kahn's algorithm over the adjacency
// induced by every connection kind (not just "main"). Nodes unreachable
// from any in-degree-zero start — because the graph is disconnected, or
// because a cycle keeps their in-degree from ever dropping to zero — are
// appended at the end in their input order, so a cyclic or partially
// disconnected input never crashes the sort, it just leaves the
// unresolvable subset unordered at the tail.
func TopologicalSort(nodeNames []string, connections []LiteConnection) []string {
	dependents := make(map[string][]string, len(nodeNames))
	inDegree := make(map[string]int, len(nodeNames))
	known := make(map[string]bool, len(nodeNames))

	for _, n := range nodeNames {
		known[n] = true
		inDegree[n] = 0
	}

	for _, c := range connections {
		if !known[c.Source] || !known[c.Target] {
			continue
		}
		dependents[c.Source] = append(dependents[c.Source], c.Target)
		inDegree[c.Target]++
	}

	queue := make([]string, 0, len(nodeNames))
	for _, n := range nodeNames {
		if inDegree[n] == 0 {
			queue = append(queue, n)
		}
	}

	visited := make(map[string]bool, len(nodeNames))
	ordered := make([]string, 0, len(nodeNames))

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if visited[n] {
			continue
		}
		visited[n] = true
		ordered = append(ordered, n)

		for _, dep := range dependents[n] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(ordered) < len(nodeNames) {
		for _, n := range nodeNames {
			if !visited[n] {
				ordered = append(ordered, n)
			}
		}
	}

	return ordered
}
