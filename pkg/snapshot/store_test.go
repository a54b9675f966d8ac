package snapshot

import (
	"testing"

	"github.com/LunkiBR/n8n-mcp-lite/pkg/workflow"
)

func TestSaveAndGetRoundTrip(t *testing.T) {
	s := New(t.TempDir())
	raw := &workflow.RawWorkflow{ID: "wf1", Name: "hello"}

	meta, err := s.Save(raw, TriggerPreUpdateWorkflow, "before edit")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Get("wf1", meta.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("expected snapshot, got nil")
	}
	if got.Workflow.Name != "hello" {
		t.Fatalf("unexpected workflow name: %q", got.Workflow.Name)
	}
}

func TestSavePrunesToCap(t *testing.T) {
	s := New(t.TempDir())
	raw := &workflow.RawWorkflow{ID: "wf1", Name: "hello"}

	var ids []string
	for i := 0; i < maxSnapshotsPerWorkflow+5; i++ {
		meta, err := s.Save(raw, TriggerManual, "")
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
		ids = append(ids, meta.ID)
	}

	list, err := s.List("wf1", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != maxSnapshotsPerWorkflow {
		t.Fatalf("expected %d entries, got %d", maxSnapshotsPerWorkflow, len(list))
	}

	oldest := ids[0]
	if got, err := s.Get("wf1", oldest); err != nil || got != nil {
		t.Fatalf("expected pruned snapshot to be gone, got=%v err=%v", got, err)
	}

	newest := ids[len(ids)-1]
	if got, err := s.Get("wf1", newest); err != nil || got == nil {
		t.Fatalf("expected newest snapshot to survive, got=%v err=%v", got, err)
	}
}

func TestGetUnknownSnapshotReturnsNil(t *testing.T) {
	s := New(t.TempDir())
	got, err := s.Get("nope", "nope")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}
