package workflow

import "sort"

// CompressConnections flattens the engine's three-level connection mapping
// into one LiteConnection per {source, output-kind, output-index, target}
// quadruple. Output iteration order is sorted by source name, then kind,
// then output-index, then target, to keep scan/focus output deterministic.
func CompressConnections(raw RawConnections) []LiteConnection {
	if len(raw) == 0 {
		return nil
	}

	sources := make([]string, 0, len(raw))
	for src := range raw {
		sources = append(sources, src)
	}
	sort.Strings(sources)

	var out []LiteConnection
	for _, src := range sources {
		kinds := raw[src]
		kindNames := make([]string, 0, len(kinds))
		for k := range kinds {
			kindNames = append(kindNames, k)
		}
		sort.Strings(kindNames)

		for _, kind := range kindNames {
			outputs := kinds[kind]
			for outputIdx, targets := range outputs {
				sortedTargets := append([]RawConnectionTarget(nil), targets...)
				sort.SliceStable(sortedTargets, func(i, j int) bool {
					if sortedTargets[i].Node != sortedTargets[j].Node {
						return sortedTargets[i].Node < sortedTargets[j].Node
					}
					return sortedTargets[i].Index < sortedTargets[j].Index
				})

				for _, t := range sortedTargets {
					lc := LiteConnection{
						Source:      src,
						Target:      t.Node,
						OutputIndex: outputIdx,
					}
					if kind != "main" {
						lc.Type = kind
					}
					if t.Index != 0 {
						idx := t.Index
						lc.InputIndex = &idx
					}
					out = append(out, lc)
				}
			}
		}
	}
	return out
}

// ReconstructConnections groups Lite Connections back into the engine's
// three-level mapping. For each (target, output-kind) pair, explicit
// InputIndex values reserve that slot; connections with a nil InputIndex
// (never specified — the common case after a JSON round-trip of what was
// compressed as index 0) are assigned the next free slot starting from
// that pair's high-water mark. This is what keeps two implicit branches
// converging on a merge node from colliding on port 0.
func ReconstructConnections(lite []LiteConnection) RawConnections {
	out := RawConnections{}
	if len(lite) == 0 {
		return out
	}

	type pairKey struct {
		target string
		kind   string
	}

	reserved := map[pairKey]map[int]bool{}
	assigned := make([]int, len(lite))

	// First pass: honor every explicit index, reserving its slot.
	for i, c := range lite {
		kind := c.Type
		if kind == "" {
			kind = "main"
		}
		key := pairKey{c.Target, kind}
		if reserved[key] == nil {
			reserved[key] = map[int]bool{}
		}
		if c.InputIndex != nil {
			idx := *c.InputIndex
			assigned[i] = idx
			reserved[key][idx] = true
		} else {
			assigned[i] = -1 // resolved in the second pass
		}
	}

	// Second pass: assign implicit connections the next free slot per pair,
	// in encounter order, advancing a high-water mark as slots fill.
	highWater := map[pairKey]int{}
	for i, c := range lite {
		if assigned[i] != -1 {
			continue
		}
		kind := c.Type
		if kind == "" {
			kind = "main"
		}
		key := pairKey{c.Target, kind}
		idx := highWater[key]
		for reserved[key][idx] {
			idx++
		}
		reserved[key][idx] = true
		highWater[key] = idx + 1
		assigned[i] = idx
	}

	for i, c := range lite {
		kind := c.Type
		if kind == "" {
			kind = "main"
		}
		if out[c.Source] == nil {
			out[c.Source] = map[string][][]RawConnectionTarget{}
		}
		slots := out[c.Source][kind]
		for len(slots) <= c.OutputIndex {
			slots = append(slots, nil)
		}
		slots[c.OutputIndex] = append(slots[c.OutputIndex], RawConnectionTarget{
			Node:  c.Target,
			Type:  kind,
			Index: assigned[i],
		})
		out[c.Source][kind] = slots
	}

	return out
}
