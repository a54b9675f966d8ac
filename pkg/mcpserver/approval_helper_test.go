package mcpserver

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LunkiBR/n8n-mcp-lite/pkg/approval"
)

func gatedDeps(t *testing.T, mode approval.Mode) *Deps {
	t.Helper()
	return &Deps{
		Gate:  approval.NewGate(mode),
		Audit: approval.NewAuditLog(filepath.Join(t.TempDir(), "audit.jsonl")),
	}
}

func TestWithApprovalStagesThenRunsOnMatchingToken(t *testing.T) {
	deps := gatedDeps(t, approval.ModeRequireApproval)
	ran := false
	run := func(ctx context.Context) (any, error) {
		ran = true
		return "done", nil
	}

	out, err := withApproval(context.Background(), deps, "delete_workflow", "wf1", "delete wf1", map[string]any{}, run)
	require.NoError(t, err)
	assert.False(t, ran, "run must not execute before approval")

	pending, ok := out.(guardedResult)
	require.True(t, ok, "expected a guardedResult, got %T", out)
	assert.True(t, pending.Pending)
	assert.NotEmpty(t, pending.ApproveToken)

	out, err = withApproval(context.Background(), deps, "delete_workflow", "wf1", "delete wf1",
		map[string]any{"approve": pending.ApproveToken}, run)
	require.NoError(t, err)
	assert.True(t, ran, "run should execute once the matching token is presented")
	assert.Equal(t, "done", out)
}

func TestWithApprovalRejectsUnknownToken(t *testing.T) {
	deps := gatedDeps(t, approval.ModeRequireApproval)
	run := func(ctx context.Context) (any, error) {
		t.Fatal("run must not execute for an unknown token")
		return nil, nil
	}

	_, err := withApproval(context.Background(), deps, "delete_workflow", "wf1", "delete wf1",
		map[string]any{"approve": "not-a-real-token"}, run)
	assert.Error(t, err)
}

func TestWithApprovalAutoApproveRunsImmediately(t *testing.T) {
	deps := gatedDeps(t, approval.ModeAutoApprove)
	ran := false
	run := func(ctx context.Context) (any, error) {
		ran = true
		return "done", nil
	}

	out, err := withApproval(context.Background(), deps, "delete_workflow", "wf1", "delete wf1", map[string]any{}, run)
	require.NoError(t, err)
	assert.True(t, ran, "run should execute immediately in auto-approve mode")
	assert.Equal(t, "done", out)
}
