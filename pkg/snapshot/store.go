// Package snapshot implements the durable, per-workflow capped ring of
// pre-mutation snapshots on the local filesystem.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/LunkiBR/n8n-mcp-lite/pkg/apierrors"
	"github.com/LunkiBR/n8n-mcp-lite/pkg/fileutil"
	"github.com/LunkiBR/n8n-mcp-lite/pkg/logger"
	"github.com/LunkiBR/n8n-mcp-lite/pkg/workflow"
)

var snapLog = logger.New("snapshot:store")

const maxSnapshotsPerWorkflow = 20

// Trigger names why a snapshot was taken.
type Trigger string

const (
	TriggerPreCreate       Trigger = "pre-create"
	TriggerPreUpdateWorkflow Trigger = "pre-update-workflow"
	TriggerPreUpdateNodes  Trigger = "pre-update-nodes"
	TriggerPreDelete       Trigger = "pre-delete"
	TriggerManual          Trigger = "manual"
)

// Meta is one snapshot's index entry.
type Meta struct {
	ID           string    `json:"id"`
	WorkflowID   string    `json:"workflowId"`
	WorkflowName string    `json:"workflowName"`
	Timestamp    time.Time `json:"timestamp"`
	Trigger      Trigger   `json:"trigger"`
	Description  string    `json:"description"`
}

// Snapshot is a Meta plus the captured raw workflow JSON.
type Snapshot struct {
	Meta
	Workflow *workflow.RawWorkflow `json:"workflow"`
}

// Store manages the directory-per-workflow snapshot tree under Root.
type Store struct {
	Root string
}

// New constructs a Store rooted at root. DefaultRoot should be used unless
// the caller has an explicit configured path.
func New(root string) *Store {
	return &Store{Root: root}
}

// DefaultRoot computes the snapshot root relative to the running
// executable's install location, never the process's launch directory
// (which may be unwritable on some hosts).
func DefaultRoot() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable path: %w", err)
	}
	return filepath.Join(filepath.Dir(exe), "snapshots"), nil
}

func (s *Store) workflowDir(workflowID string) string {
	return filepath.Join(s.Root, workflowID)
}

func (s *Store) indexPath(workflowID string) string {
	return filepath.Join(s.workflowDir(workflowID), "_index.json")
}

func (s *Store) snapshotPath(workflowID, id string) string {
	return filepath.Join(s.workflowDir(workflowID), id+".json")
}

func (s *Store) readIndex(workflowID string) ([]Meta, error) {
	data, err := os.ReadFile(s.indexPath(workflowID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var entries []Meta
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Store) writeIndex(workflowID string, entries []Meta) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return fileutil.WriteFileAtomic(s.indexPath(workflowID), data, 0o644)
}

// Save writes a new snapshot of raw, prepends it to the workflow's index in
// newest-first order, then prunes the index and the corresponding files
// down to the most recent 20.
func (s *Store) Save(raw *workflow.RawWorkflow, trigger Trigger, description string) (Meta, error) {
	if err := os.MkdirAll(s.workflowDir(raw.ID), 0o755); err != nil {
		return Meta{}, fmt.Errorf("create snapshot directory: %w", err)
	}

	meta := Meta{
		ID:           ulid.Make().String(),
		WorkflowID:   raw.ID,
		WorkflowName: raw.Name,
		Timestamp:    time.Now().UTC(),
		Trigger:      trigger,
		Description:  description,
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return Meta{}, fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := fileutil.WriteFileAtomic(s.snapshotPath(raw.ID, meta.ID), data, 0o644); err != nil {
		return Meta{}, fmt.Errorf("write snapshot file: %w", err)
	}

	entries, err := s.readIndex(raw.ID)
	if err != nil {
		snapLog.Printf("failed to read snapshot index for %s: %v", raw.ID, err)
		entries = nil
	}
	entries = append([]Meta{meta}, entries...)

	var dropped []Meta
	if len(entries) > maxSnapshotsPerWorkflow {
		dropped = entries[maxSnapshotsPerWorkflow:]
		entries = entries[:maxSnapshotsPerWorkflow]
	}

	if err := s.writeIndex(raw.ID, entries); err != nil {
		snapLog.Printf("failed to write snapshot index for %s: %v", raw.ID, err)
	}

	for _, d := range dropped {
		if err := os.Remove(s.snapshotPath(raw.ID, d.ID)); err != nil && !os.IsNotExist(err) {
			snapLog.Printf("failed to prune snapshot %s: %v", d.ID, err)
		}
	}

	return meta, nil
}

// List returns metadata only, newest first, optionally capped at limit (0 =
// unbounded).
func (s *Store) List(workflowID string, limit int) ([]Meta, error) {
	entries, err := s.readIndex(workflowID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Get returns metadata plus a parsed copy of the stored raw JSON, or nil
// when the snapshot is missing.
func (s *Store) Get(workflowID, id string) (*Snapshot, error) {
	entries, err := s.readIndex(workflowID)
	if err != nil {
		return nil, err
	}
	var meta *Meta
	for i := range entries {
		if entries[i].ID == id {
			meta = &entries[i]
			break
		}
	}
	if meta == nil {
		return nil, nil
	}

	path := s.snapshotPath(workflowID, id)
	if !fileutil.FileExists(path) {
		// Index entry survived a file that didn't, e.g. a GC race or a
		// manually edited index; treat it the same as no snapshot found.
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw workflow.RawWorkflow
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse stored snapshot %s: %w", id, err)
	}

	return &Snapshot{Meta: *meta, Workflow: &raw}, nil
}

// RollbackResult reports what a rollback did.
type RollbackResult struct {
	SafetySnapshot Meta
	RestoredNodes  int
	Workflow       *workflow.RawWorkflow
}

// GC re-applies the twenty-newest prune across every workflow directory
// under Root, for workflows whose index drifted out of step with the
// directory on disk (a snapshot file copied in manually, or a prune that
// Save logged but couldn't complete). Returns the number of files removed.
func (s *Store) GC() (int, error) {
	if !fileutil.DirExists(s.Root) {
		return 0, nil
	}
	dirs, err := os.ReadDir(s.Root)
	if err != nil {
		return 0, fmt.Errorf("read snapshot root: %w", err)
	}

	removed := 0
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		workflowID := d.Name()
		entries, err := s.readIndex(workflowID)
		if err != nil {
			snapLog.Printf("gc: failed to read index for %s: %v", workflowID, err)
			continue
		}
		if len(entries) == 0 {
			// A directory Save created (MkdirAll) but never got to
			// populate, e.g. a process killed between mkdir and the first
			// write. Nothing to prune; clear the stale directory instead.
			if fileutil.IsDirEmpty(s.workflowDir(workflowID)) {
				if err := os.Remove(s.workflowDir(workflowID)); err != nil && !os.IsNotExist(err) {
					snapLog.Printf("gc: failed to remove empty workflow directory %s: %v", workflowID, err)
				}
			}
			continue
		}
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Timestamp.After(entries[j].Timestamp)
		})
		if len(entries) <= maxSnapshotsPerWorkflow {
			continue
		}
		dropped := entries[maxSnapshotsPerWorkflow:]
		entries = entries[:maxSnapshotsPerWorkflow]
		if err := s.writeIndex(workflowID, entries); err != nil {
			snapLog.Printf("gc: failed to write index for %s: %v", workflowID, err)
			continue
		}
		for _, dr := range dropped {
			if err := os.Remove(s.snapshotPath(workflowID, dr.ID)); err != nil && !os.IsNotExist(err) {
				snapLog.Printf("gc: failed to remove snapshot %s: %v", dr.ID, err)
				continue
			}
			removed++
		}
	}
	return removed, nil
}

// PrepareRollback saves a fresh safety snapshot of current (trigger:
// manual), then returns the stored snapshot's workflow content ready for
// the caller to PUT to the engine. The caller issues the engine call;
// this store only owns the local filesystem side.
func (s *Store) PrepareRollback(current *workflow.RawWorkflow, snapshotID string) (*RollbackResult, error) {
	stored, err := s.Get(current.ID, snapshotID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, apierrors.NewMissingEntity("snapshot", snapshotID)
	}

	safety, err := s.Save(current, TriggerManual, fmt.Sprintf("safety snapshot before rollback to %s", snapshotID))
	if err != nil {
		snapLog.Printf("failed to save safety snapshot before rollback: %v", err)
	}

	return &RollbackResult{
		SafetySnapshot: safety,
		RestoredNodes:  len(stored.Workflow.Nodes),
		Workflow:       stored.Workflow,
	}, nil
}
