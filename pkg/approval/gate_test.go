package approval

import (
	"errors"
	"testing"
	"time"

	"github.com/LunkiBR/n8n-mcp-lite/pkg/apierrors"
)

func TestCreateThenConsume(t *testing.T) {
	g := NewGate(ModeRequireApproval)
	op := g.Create("wf1", "update_node_surgical", "rename node A to B", map[string]string{"a": "b"})

	got, err := g.Consume(op.Token)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if got.WorkflowID != "wf1" || got.Operation != "update_node_surgical" {
		t.Fatalf("unexpected pending op: %+v", got)
	}

	if _, err := g.Consume(op.Token); !errors.Is(err, apierrors.ErrMissingEntity) {
		t.Fatalf("expected missing entity on replay, got %v", err)
	}
}

func TestConsumeUnknownToken(t *testing.T) {
	g := NewGate(ModeRequireApproval)
	if _, err := g.Consume("bogus"); !errors.Is(err, apierrors.ErrMissingEntity) {
		t.Fatalf("expected missing entity, got %v", err)
	}
}

func TestConsumeExpiredToken(t *testing.T) {
	g := NewGate(ModeRequireApproval)
	op := g.Create("wf1", "delete_workflow", "", nil)

	g.mu.Lock()
	stale := g.pending[op.Token]
	stale.ExpiresAt = time.Now().Add(-time.Minute)
	g.pending[op.Token] = stale
	g.mu.Unlock()

	if _, err := g.Consume(op.Token); !errors.Is(err, apierrors.ErrOperationConflict) {
		t.Fatalf("expected conflict on expired token, got %v", err)
	}
}

func TestSetModeSwitchesGate(t *testing.T) {
	g := NewGate(ModeRequireApproval)
	g.SetMode(ModeAutoApprove)
	if g.Mode() != ModeAutoApprove {
		t.Fatalf("expected auto-approve, got %s", g.Mode())
	}
}
