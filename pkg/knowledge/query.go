package knowledge

import (
	"sort"
	"strings"

	"github.com/LunkiBR/n8n-mcp-lite/pkg/workflow"
)

func lower(s string) string { return strings.ToLower(s) }

// GetNode resolves a query string to one node-type entry, trying in
// order: exact full type, compact-prefix form, case-insensitive display
// name, then the query with each recognised prefix re-prepended. Returns
// ok=false when unresolvable.
func (idx *Index) GetNode(query string) (NodeInfo, bool) {
	if n, ok := idx.nodesByType[query]; ok {
		return n, true
	}
	if n, ok := idx.nodesByType[workflow.ExpandType(query)]; ok {
		return n, true
	}
	for _, n := range idx.nodeList {
		if workflow.CompressType(n.Type) == query {
			return n, true
		}
	}
	if n, ok := idx.nodesByDisplay[lower(query)]; ok {
		return n, true
	}
	return NodeInfo{}, false
}

// SearchMode controls AND/OR token combination for SearchNodes.
type SearchMode string

const (
	ModeAND   SearchMode = "AND"
	ModeOR    SearchMode = "OR"
	ModeFUZZY SearchMode = "FUZZY"
)

// ScoredNode is one SearchNodes hit.
type ScoredNode struct {
	Node  NodeInfo
	Score int
}

// SearchNodes scores every catalogue entry against query's whitespace-
// separated tokens per the fixed point table (exact type 100, exact
// display 90, prefix 70, contains-in-display 50, contains-in-type 40,
// contains-in-search-tokens 20; FUZZY mode adds 15/12 for one-character
// deletions / adjacent-character swaps), filters by source when given,
// and returns hits sorted by score descending, capped at limit (0 =
// unbounded).
func (idx *Index) SearchNodes(query string, mode SearchMode, limit int, source string) []ScoredNode {
	tokens := strings.Fields(lower(query))
	if len(tokens) == 0 {
		return nil
	}

	var hits []ScoredNode
	for _, n := range idx.nodeList {
		if source != "" && n.Source != source {
			continue
		}

		total := 0
		matchedTokens := 0
		for _, tok := range tokens {
			score := tokenScore(tok, n, mode == ModeFUZZY)
			if score > 0 {
				matchedTokens++
			}
			total += score
		}

		switch mode {
		case ModeAND:
			if matchedTokens != len(tokens) {
				continue
			}
		default: // OR, FUZZY
			if matchedTokens == 0 {
				continue
			}
		}

		if total > 0 {
			hits = append(hits, ScoredNode{Node: n, Score: total})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

func tokenScore(tok string, n NodeInfo, fuzzy bool) int {
	lowerType := lower(n.Type)
	lowerDisplay := lower(n.DisplayName)

	best := 0
	note := func(s int) {
		if s > best {
			best = s
		}
	}

	if tok == lowerType || tok == lower(workflow.CompressType(n.Type)) {
		note(100)
	}
	if tok == lowerDisplay {
		note(90)
	}
	if strings.HasPrefix(lowerDisplay, tok) || strings.HasPrefix(lowerType, tok) {
		note(70)
	}
	if strings.Contains(lowerDisplay, tok) {
		note(50)
	}
	if strings.Contains(lowerType, tok) {
		note(40)
	}
	for _, st := range n.SearchTokens {
		if strings.Contains(lower(st), tok) {
			note(20)
			break
		}
	}

	if fuzzy && best == 0 {
		for _, word := range append(strings.Fields(lowerDisplay), n.SearchTokens...) {
			w := lower(word)
			if isOneDeletion(tok, w) {
				note(15)
			}
			if isAdjacentSwap(tok, w) {
				note(12)
			}
		}
	}

	return best
}

// isOneDeletion reports whether removing exactly one character from b
// (or from a) yields the other — i.e. they differ by a single deletion.
func isOneDeletion(a, b string) bool {
	if absDiff(len(a), len(b)) != 1 {
		return false
	}
	longer, shorter := a, b
	if len(b) > len(a) {
		longer, shorter = b, a
	}
	i, j, skipped := 0, 0, false
	for i < len(longer) && j < len(shorter) {
		if longer[i] == shorter[j] {
			i++
			j++
			continue
		}
		if skipped {
			return false
		}
		skipped = true
		i++
	}
	return true
}

// isAdjacentSwap reports whether a is b with one pair of adjacent
// characters transposed.
func isAdjacentSwap(a, b string) bool {
	if len(a) != len(b) || len(a) < 2 {
		return false
	}
	diffs := []int{}
	for i := 0; i < len(a); i++ {
		if a[i] != b[i] {
			diffs = append(diffs, i)
		}
	}
	if len(diffs) != 2 || diffs[1] != diffs[0]+1 {
		return false
	}
	i, j := diffs[0], diffs[1]
	return a[i] == b[j] && a[j] == b[i]
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

// ListSources returns every distinct node-catalogue Source value, sorted.
func (idx *Index) ListSources() []string {
	seen := map[string]bool{}
	for _, n := range idx.nodeList {
		if n.Source != "" {
			seen[n.Source] = true
		}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// SearchPatterns returns every pattern whose keywords or name contain
// query as a substring, case-insensitively.
func (idx *Index) SearchPatterns(query string) []Pattern {
	q := lower(query)
	var out []Pattern
	for _, p := range idx.patterns {
		if strings.Contains(lower(p.Name), q) {
			out = append(out, p)
			continue
		}
		for _, kw := range p.Keywords {
			if strings.Contains(lower(kw), q) {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// GetPattern returns one pattern by exact name.
func (idx *Index) GetPattern(name string) (Pattern, bool) {
	for _, p := range idx.patterns {
		if p.Name == name {
			return p, true
		}
	}
	return Pattern{}, false
}

// GetPayloadSchema returns the execution-output schema for a node type.
func (idx *Index) GetPayloadSchema(nodeType string) (PayloadSchema, bool) {
	if s, ok := idx.payloads[nodeType]; ok {
		return s, true
	}
	s, ok := idx.payloads[workflow.ExpandType(nodeType)]
	return s, ok
}

// GetQuirks returns every known quirk for a node type.
func (idx *Index) GetQuirks(nodeType string) []Quirk {
	if q, ok := idx.quirks[nodeType]; ok {
		return q
	}
	return idx.quirks[workflow.ExpandType(nodeType)]
}

// SearchExpressions returns every cookbook entry whose keywords, name, or
// syntax contain query as a substring, case-insensitively.
func (idx *Index) SearchExpressions(query string) []ExpressionEntry {
	q := lower(query)
	var out []ExpressionEntry
	for _, e := range idx.expressions {
		if strings.Contains(lower(e.Name), q) || strings.Contains(lower(e.Syntax), q) {
			out = append(out, e)
			continue
		}
		for _, kw := range e.Keywords {
			if strings.Contains(lower(kw), q) {
				out = append(out, e)
				break
			}
		}
	}
	return out
}
