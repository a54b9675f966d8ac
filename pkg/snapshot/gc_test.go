package snapshot

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LunkiBR/n8n-mcp-lite/pkg/workflow"
)

func TestGCIsNoOpWhenRootMissing(t *testing.T) {
	s := New(t.TempDir() + "/does-not-exist")
	removed, err := s.GC()
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestGCIsNoOpOnAlreadyPrunedStore(t *testing.T) {
	s := New(t.TempDir())
	raw := &workflow.RawWorkflow{ID: "wf1", Name: "hello"}
	for i := 0; i < 3; i++ {
		_, err := s.Save(raw, TriggerManual, "")
		require.NoError(t, err)
	}

	removed, err := s.GC()
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

// TestGCPrunesIndexDriftedPastCap reproduces an index that has drifted past
// the cap with entries whose files are still on disk (e.g. copied back in
// from a backup) — a state that lasts until the next Save for that
// workflow truncates the index, and that GC clears without one.
func TestGCPrunesIndexDriftedPastCap(t *testing.T) {
	s := New(t.TempDir())
	raw := &workflow.RawWorkflow{ID: "wf1", Name: "hello"}

	meta, err := s.Save(raw, TriggerManual, "")
	require.NoError(t, err)
	entries, err := s.readIndex("wf1")
	require.NoError(t, err)

	// Fabricate extra entries whose files exist on disk but were never
	// pruned by Save, to simulate a drifted index.
	for i := 0; i < maxSnapshotsPerWorkflow+3; i++ {
		extra := meta
		extra.ID = meta.ID + "-extra" + string(rune('a'+i))
		extra.Timestamp = extra.Timestamp.Add(time.Duration(-i-1) * time.Minute)
		data, err := json.Marshal(raw)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(s.snapshotPath("wf1", extra.ID), data, 0o644))
		entries = append(entries, extra)
	}
	require.NoError(t, s.writeIndex("wf1", entries))

	removed, err := s.GC()
	require.NoError(t, err)
	assert.Equal(t, 4, removed)

	list, err := s.List("wf1", 0)
	require.NoError(t, err)
	assert.Len(t, list, maxSnapshotsPerWorkflow)
}

// TestGCRemovesStaleEmptyWorkflowDirectory reproduces a directory Save
// created via MkdirAll but never populated, e.g. a process killed between
// mkdir and the first snapshot write.
func TestGCRemovesStaleEmptyWorkflowDirectory(t *testing.T) {
	s := New(t.TempDir())
	require.NoError(t, os.MkdirAll(s.workflowDir("orphan"), 0o755))

	removed, err := s.GC()
	require.NoError(t, err)
	assert.Equal(t, 0, removed, "an empty stale directory has no snapshot files to count as removed")
	assert.False(t, fileExists(s.workflowDir("orphan")))
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
