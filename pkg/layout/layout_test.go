package layout

import (
	"testing"

	"github.com/LunkiBR/n8n-mcp-lite/pkg/workflow"
)

func TestAssignLivenessOnCycle(t *testing.T) {
	names := []string{"A", "B", "C"}
	conns := []workflow.LiteConnection{
		{Source: "A", Target: "B"},
		{Source: "B", Target: "C"},
		{Source: "C", Target: "A"},
	}

	points := Assign(conns, names)
	if len(points) != len(names) {
		t.Fatalf("expected a point per node, got %d", len(points))
	}
	for _, n := range names {
		p := points[n]
		if p.X < 0 || p.Y < 0 {
			t.Fatalf("expected non-negative finite coordinate for %s, got %+v", n, p)
		}
	}
}

func TestAssignLinearChainIncreasesX(t *testing.T) {
	names := []string{"A", "B", "C"}
	conns := []workflow.LiteConnection{
		{Source: "A", Target: "B"},
		{Source: "B", Target: "C"},
	}
	points := Assign(conns, names)
	if !(points["A"].X < points["B"].X && points["B"].X < points["C"].X) {
		t.Fatalf("expected strictly increasing X along the chain, got %+v", points)
	}
}
