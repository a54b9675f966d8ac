package engineclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/LunkiBR/n8n-mcp-lite/pkg/apierrors"
)

func TestGetWorkflowDecodesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/workflows/wf1" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{"id": "wf1", "name": "hello", "nodes": []any{}})
	}))
	defer srv.Close()

	c, err := New(srv.URL, "", 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	raw, err := c.GetWorkflow(context.Background(), "wf1")
	if err != nil {
		t.Fatalf("GetWorkflow: %v", err)
	}
	if raw.ID != "wf1" || raw.Name != "hello" {
		t.Fatalf("unexpected workflow: %+v", raw)
	}
}

func TestNonSuccessStatusBecomesEngineError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"not found"}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL, "", 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = c.GetWorkflow(context.Background(), "missing")
	var engErr *apierrors.EngineError
	if !errors.As(err, &engErr) {
		t.Fatalf("expected EngineError, got %v (%T)", err, err)
	}
	if engErr.Status != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", engErr.Status)
	}
}

func TestSetActiveHitsCorrectPath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := New(srv.URL, "key123", 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.SetActive(context.Background(), "wf1", true); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if gotPath != "/api/v1/workflows/wf1/activate" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
}
