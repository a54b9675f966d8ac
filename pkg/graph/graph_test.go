package graph

import (
	"testing"

	"github.com/LunkiBR/n8n-mcp-lite/pkg/workflow"
)

func ptr(i int) *int { return &i }

func TestZoneClassificationLinearChain(t *testing.T) {
	names := []string{"N1", "N2", "N3", "N4", "N5", "N6", "N7", "N8", "N9", "N10"}
	var conns []workflow.LiteConnection
	for i := 0; i < len(names)-1; i++ {
		conns = append(conns, workflow.LiteConnection{Source: names[i], Target: names[i+1]})
	}

	g := Build(conns)
	focused := map[string]bool{"N5": true}
	zones := g.ClassifyZones(names, focused)

	upstream, downstream, parallel := 0, 0, 0
	for _, n := range names {
		switch zones[n] {
		case ZoneUpstream:
			upstream++
		case ZoneDownstream:
			downstream++
		case ZoneParallel:
			parallel++
		}
	}
	if upstream != 4 || downstream != 5 || parallel != 0 {
		t.Fatalf("expected upstream=4 downstream=5 parallel=0, got upstream=%d downstream=%d parallel=%d", upstream, downstream, parallel)
	}

	boundaries := Boundaries(conns, focused)
	if len(boundaries) != 2 {
		t.Fatalf("expected exactly 2 boundaries, got %d: %+v", len(boundaries), boundaries)
	}
}

func TestRangeWithConvergence(t *testing.T) {
	conns := []workflow.LiteConnection{
		{Source: "A", Target: "B"},
		{Source: "A", Target: "C"},
		{Source: "B", Target: "D"},
		{Source: "C", Target: "D"},
		{Source: "D", Target: "E"},
	}
	g := Build(conns)
	r := g.Range("A", "D")

	for _, n := range []string{"A", "B", "C", "D"} {
		if !r[n] {
			t.Fatalf("expected %s in range, got %+v", n, r)
		}
	}
	if r["E"] {
		t.Fatalf("E should not be in range, got %+v", r)
	}

	names := []string{"A", "B", "C", "D", "E"}
	zones := g.ClassifyZones(names, r)
	if zones["E"] != ZoneDownstream {
		t.Fatalf("expected E downstream, got %s", zones["E"])
	}
}

func TestFollowBranchDisambiguatesOutputs(t *testing.T) {
	conns := []workflow.LiteConnection{
		{Source: "IF", Target: "TrueNode", OutputIndex: 0},
		{Source: "IF", Target: "FalseNode", OutputIndex: 1},
	}
	g := Build(conns)

	trueBranch := g.FollowBranch("IF", 0, 0)
	if !trueBranch["TrueNode"] || trueBranch["FalseNode"] {
		t.Fatalf("true branch membership wrong: %+v", trueBranch)
	}

	falseBranch := g.FollowBranch("IF", 1, 0)
	if !falseBranch["FalseNode"] || falseBranch["TrueNode"] {
		t.Fatalf("false branch membership wrong: %+v", falseBranch)
	}
}

func TestSegmentsLabelsIfAsTrueFalse(t *testing.T) {
	conns := []workflow.LiteConnection{
		{Source: "IF", Target: "A", OutputIndex: 0},
		{Source: "IF", Target: "B", OutputIndex: 1},
	}
	g := Build(conns)
	segments := g.Segments(nil)
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	for _, s := range segments {
		if s.OutputIndex == 0 && s.Label != "IF: true branch" {
			t.Fatalf("expected true branch label, got %q", s.Label)
		}
		if s.OutputIndex == 1 && s.Label != "IF: false branch" {
			t.Fatalf("expected false branch label, got %q", s.Label)
		}
	}
}
