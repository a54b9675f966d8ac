package approval

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/LunkiBR/n8n-mcp-lite/pkg/logger"
	"github.com/LunkiBR/n8n-mcp-lite/pkg/stringutil"
)

var auditLog = logger.New("approval:audit")

// Outcome is the final disposition of a pending operation.
type Outcome string

const (
	OutcomeApproved Outcome = "approved"
	OutcomeRejected Outcome = "rejected"
	OutcomeExpired  Outcome = "expired"
	OutcomeAuto     Outcome = "auto-approved"
)

// Entry is one audit record, written as a single JSON line.
type Entry struct {
	Timestamp   time.Time `json:"timestamp"`
	Token       string    `json:"token"`
	WorkflowID  string    `json:"workflowId"`
	Operation   string    `json:"operation"`
	Description string    `json:"description"`
	Outcome     Outcome   `json:"outcome"`
	Reason      string    `json:"reason,omitempty"`
}

// AuditLog appends Entry records to a JSON-lines file. Write failures are
// logged and swallowed rather than surfaced to callers: a mutation that
// already succeeded against the engine must not be reported as failed
// just because its audit trail couldn't be written.
type AuditLog struct {
	mu   sync.Mutex
	path string
}

// NewAuditLog constructs an AuditLog writing to path. The parent directory
// is created on demand by Record, not here.
func NewAuditLog(path string) *AuditLog {
	return &AuditLog{path: path}
}

// Record appends entry to the log. Description and Reason pass through
// SanitizeErrorMessage first: both are free-text fields that often echo a
// node's error output or an operator's rejection note, and either can
// contain a credential reference's key name.
func (a *AuditLog) Record(entry Entry) {
	entry.Description = stringutil.SanitizeErrorMessage(entry.Description)
	entry.Reason = stringutil.SanitizeErrorMessage(entry.Reason)

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(a.path), 0o755); err != nil {
		auditLog.Printf("failed to create audit log directory: %v", err)
		return
	}

	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		auditLog.Printf("failed to open audit log: %v", err)
		return
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		auditLog.Printf("failed to marshal audit entry: %v", err)
		return
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		auditLog.Printf("failed to write audit entry: %v", err)
	}
}

// RecordApproval is a convenience wrapper around Record for the common
// case of logging a PendingOperation's resolution.
func (a *AuditLog) RecordApproval(op PendingOperation, outcome Outcome, reason string) {
	a.Record(Entry{
		Timestamp:   time.Now().UTC(),
		Token:       op.Token,
		WorkflowID:  op.WorkflowID,
		Operation:   op.Operation,
		Description: op.Description,
		Outcome:     outcome,
		Reason:      reason,
	})
}

// Tail reads up to limit most-recent entries (0 = unbounded) from the
// log, in file order (oldest first) truncated from the front.
func (a *AuditLog) Tail(limit int) ([]Entry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	data, err := os.ReadFile(a.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var entries []Entry
	dec := json.NewDecoder(bytes.NewReader(data))
	for {
		var e Entry
		if err := dec.Decode(&e); err != nil {
			break
		}
		entries = append(entries, e)
	}

	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}
