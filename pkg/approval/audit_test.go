package approval

import (
	"path/filepath"
	"testing"
)

func TestAuditLogRecordAndTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	a := NewAuditLog(path)

	op := PendingOperation{Token: "tok1", WorkflowID: "wf1", Operation: "delete_workflow"}
	a.RecordApproval(op, OutcomeApproved, "")
	a.RecordApproval(PendingOperation{Token: "tok2", WorkflowID: "wf1", Operation: "activate_workflow"}, OutcomeRejected, "declined by operator")

	entries, err := a.Tail(0)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Token != "tok1" || entries[0].Outcome != OutcomeApproved {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Reason != "declined by operator" {
		t.Fatalf("unexpected second entry reason: %q", entries[1].Reason)
	}
}

func TestAuditLogRecordSanitizesDescriptionAndReason(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	a := NewAuditLog(path)

	op := PendingOperation{Token: "tok1", WorkflowID: "wf1", Operation: "update_workflow_full", Description: "node references N8N_API_KEY"}
	a.RecordApproval(op, OutcomeRejected, "missing DeploySecret credential")

	entries, err := a.Tail(0)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if got := entries[0].Description; got == op.Description {
		t.Fatalf("expected Description to be sanitized, got unchanged value %q", got)
	}
	if got := entries[0].Reason; got == "missing DeploySecret credential" {
		t.Fatalf("expected Reason to be sanitized, got unchanged value %q", got)
	}
}

func TestAuditLogTailOnMissingFile(t *testing.T) {
	a := NewAuditLog(filepath.Join(t.TempDir(), "nope", "audit.jsonl"))
	entries, err := a.Tail(0)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if entries != nil {
		t.Fatalf("expected nil entries, got %+v", entries)
	}
}
