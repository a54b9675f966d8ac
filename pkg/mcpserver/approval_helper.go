package mcpserver

import (
	"context"
	"fmt"

	"github.com/LunkiBR/n8n-mcp-lite/pkg/apierrors"
	"github.com/LunkiBR/n8n-mcp-lite/pkg/approval"
)

// guardedResult is what a pending (not-yet-approved) mutation returns to
// the caller instead of performing the mutation.
type guardedResult struct {
	Pending      bool   `json:"pending"`
	ApproveToken string `json:"approveToken"`
	Description  string `json:"description"`
}

// withApproval implements spec.md §4.9's two-phase commit: when the gate is
// disabled the mutation runs immediately. When enabled, a call without an
// "approve" argument is staged as a pending operation and returns its
// token instead of running; a call carrying a valid "approve" token for
// this same operation consumes it and runs the mutation. Every attempt is
// audited regardless of outcome.
func withApproval(ctx context.Context, deps *Deps, toolName, workflowID, description string, args map[string]any, run func(ctx context.Context) (any, error)) (any, error) {
	approveTok, _ := args["approve"].(string)

	if deps.Gate.Mode() == approval.ModeAutoApprove {
		result, err := run(ctx)
		deps.Audit.Record(approval.Entry{
			Token:       "",
			WorkflowID:  workflowID,
			Operation:   toolName,
			Description: description,
			Outcome:     approval.OutcomeAuto,
		})
		return result, err
	}

	if approveTok == "" {
		op := deps.Gate.Create(workflowID, toolName, description, args)
		deps.Audit.Record(approval.Entry{
			Token:       op.Token,
			WorkflowID:  workflowID,
			Operation:   toolName,
			Description: description,
			Outcome:     approval.OutcomeRejected,
			Reason:      "awaiting approval",
		})
		return guardedResult{Pending: true, ApproveToken: op.Token, Description: description}, nil
	}

	op, err := deps.Gate.Consume(approveTok)
	if err == nil && (op.Operation != toolName || op.WorkflowID != workflowID) {
		err = apierrors.NewConflict(toolName, "approve token was issued for a different operation")
	}
	if err != nil {
		outcome := approval.OutcomeRejected
		if isExpired(err) {
			outcome = approval.OutcomeExpired
		}
		deps.Audit.Record(approval.Entry{
			Token:       approveTok,
			WorkflowID:  workflowID,
			Operation:   toolName,
			Description: description,
			Outcome:     outcome,
			Reason:      err.Error(),
		})
		return nil, err
	}

	result, runErr := run(ctx)
	deps.Audit.Record(approval.Entry{
		Token:       op.Token,
		WorkflowID:  workflowID,
		Operation:   toolName,
		Description: description,
		Outcome:     approval.OutcomeApproved,
	})
	return result, runErr
}

func isExpired(err error) bool {
	var conflict *apierrors.ConflictError
	if ce, ok := err.(*apierrors.ConflictError); ok {
		conflict = ce
	}
	return conflict != nil && conflict.Op == "approve_operation"
}

func mustString(args map[string]any, key string) (string, error) {
	v, ok := args[key].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("%q is required", key)
	}
	return v, nil
}
