// Package approval implements the two-phase commit gate that stands
// between a proposed mutation and its execution against the engine, plus
// the append-only audit trail of what was approved, rejected, or expired.
package approval

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/LunkiBR/n8n-mcp-lite/pkg/apierrors"
)

// Mode controls whether the gate requires human confirmation at all.
type Mode string

const (
	ModeRequireApproval Mode = "require-approval"
	ModeAutoApprove     Mode = "auto-approve"
)

const pendingExpiry = 10 * time.Minute

// PendingOperation is a mutation awaiting confirmation.
type PendingOperation struct {
	Token       string
	WorkflowID  string
	Operation   string
	Description string
	Payload     any
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

func (p PendingOperation) expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// Gate tracks pending operations in memory, keyed by an opaque ULID token.
// Tokens are never persisted across process restarts: a restart discards
// all outstanding approvals, which is intentional — a server that lost
// its operator mid-confirmation should not silently resume mutating.
type Gate struct {
	mu      sync.Mutex
	mode    Mode
	pending map[string]PendingOperation
}

// NewGate constructs a Gate in the given starting mode.
func NewGate(mode Mode) *Gate {
	return &Gate{mode: mode, pending: make(map[string]PendingOperation)}
}

// Mode returns the gate's current mode.
func (g *Gate) Mode() Mode {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mode
}

// SetMode switches the gate's mode, e.g. in response to set_approval_mode.
func (g *Gate) SetMode(m Mode) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mode = m
}

// Create registers a new pending operation and returns its token. Expired
// entries are purged lazily on every call rather than via a background
// goroutine, keeping the gate's lifecycle tied entirely to request
// handling.
func (g *Gate) Create(workflowID, operation, description string, payload any) PendingOperation {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	g.purgeExpiredLocked(now)

	op := PendingOperation{
		Token:       ulid.Make().String(),
		WorkflowID:  workflowID,
		Operation:   operation,
		Description: description,
		Payload:     payload,
		CreatedAt:   now,
		ExpiresAt:   now.Add(pendingExpiry),
	}
	g.pending[op.Token] = op
	return op
}

// Consume looks up a pending operation by token, removing it on any
// outcome (approve or reject) so a token can never be replayed. Returns
// apierrors.ErrMissingEntity for an unknown token and apierrors.ErrOperationConflict
// for one that has expired.
func (g *Gate) Consume(token string) (PendingOperation, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	op, ok := g.pending[token]
	g.purgeExpiredLocked(now)
	if !ok {
		return PendingOperation{}, apierrors.NewMissingEntity("pending operation", token)
	}
	delete(g.pending, token)

	if op.expired(now) {
		return PendingOperation{}, apierrors.NewConflict("approve_operation", "token expired, re-issue the mutation")
	}
	return op, nil
}

// Peek returns a pending operation without consuming it, for inspection
// (e.g. listing what's outstanding). Returns false if unknown or expired.
func (g *Gate) Peek(token string) (PendingOperation, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	op, ok := g.pending[token]
	if !ok || op.expired(now) {
		return PendingOperation{}, false
	}
	return op, true
}

func (g *Gate) purgeExpiredLocked(now time.Time) {
	for token, op := range g.pending {
		if op.expired(now) {
			delete(g.pending, token)
		}
	}
}
