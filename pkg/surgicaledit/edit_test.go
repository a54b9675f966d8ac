package surgicaledit

import (
	"errors"
	"testing"

	"github.com/LunkiBR/n8n-mcp-lite/pkg/apierrors"
	"github.com/LunkiBR/n8n-mcp-lite/pkg/workflow"
)

func sample() *workflow.LiteWorkflow {
	return &workflow.LiteWorkflow{
		ID:   "wf1",
		Name: "sample",
		Nodes: []workflow.LiteNode{
			{Name: "A", Type: "noOp", ID: "a1"},
			{Name: "B", Type: "noOp", ID: "b1"},
		},
		Connections: []workflow.LiteConnection{
			{Source: "A", Target: "B"},
		},
	}
}

func TestAddNodeThenConnect(t *testing.T) {
	out, added, err := Apply(sample(), []Op{
		{Kind: OpAddNode, Node: workflow.LiteNode{Name: "C", Type: "noOp"}},
		{Kind: OpAddConnection, Connection: workflow.LiteConnection{Source: "B", Target: "C"}},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(out.Nodes) != 3 || len(out.Connections) != 2 {
		t.Fatalf("unexpected result: %+v", out)
	}
	if len(added) != 1 || added[0] != "C" {
		t.Fatalf("expected C reported as new, got %v", added)
	}
	if out.Nodes[2].ID == "" {
		t.Fatal("expected a generated ID for a node added without one")
	}
}

func TestAddDuplicateNodeNameConflicts(t *testing.T) {
	_, _, err := Apply(sample(), []Op{
		{Kind: OpAddNode, Node: workflow.LiteNode{Name: "A", Type: "noOp"}},
	})
	if !errors.Is(err, apierrors.ErrOperationConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRemoveNodeDropsItsConnections(t *testing.T) {
	out, _, err := Apply(sample(), []Op{
		{Kind: OpRemoveNode, Name: "B"},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(out.Nodes) != 1 || len(out.Connections) != 0 {
		t.Fatalf("unexpected result: %+v", out)
	}
}

func TestRenameNodeRewritesConnections(t *testing.T) {
	out, _, err := Apply(sample(), []Op{
		{Kind: OpRenameNode, Name: "A", NewName: "A2"},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.Nodes[0].Name != "A2" || out.Connections[0].Source != "A2" {
		t.Fatalf("rename did not propagate: %+v", out)
	}
}

func TestBatchAbortsAtomically(t *testing.T) {
	orig := sample()
	_, _, err := Apply(orig, []Op{
		{Kind: OpSetDisabled, Name: "A", Disabled: true},
		{Kind: OpRemoveNode, Name: "unknown-node"},
	})
	if !errors.Is(err, apierrors.ErrMissingEntity) {
		t.Fatalf("expected missing-entity error, got %v", err)
	}
	if orig.Nodes[0].Disabled {
		t.Fatal("original workflow must not be mutated by a failed batch")
	}
}
