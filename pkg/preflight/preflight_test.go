package preflight

import (
	"testing"

	"github.com/LunkiBR/n8n-mcp-lite/pkg/workflow"
)

type fakeLookup struct {
	schemas map[string]NodeSchema
}

func (f fakeLookup) NodeSchema(nodeType string) (NodeSchema, bool) {
	s, ok := f.schemas[nodeType]
	return s, ok
}

func httpLookup() fakeLookup {
	return fakeLookup{schemas: map[string]NodeSchema{
		"httpRequest": {
			Type: "httpRequest",
			Required: []RequiredProperty{
				{Path: "url"},
			},
		},
	}}
}

func TestMissingRequiredPropertyIsError(t *testing.T) {
	nodes := []workflow.LiteNode{
		{Name: "HTTP", Type: "httpRequest", Parameters: map[string]any{}},
	}
	result := Run(nodes, nil, httpLookup())
	if result.Pass {
		t.Fatal("expected failure for missing required url")
	}
	found := false
	for _, e := range result.Errors {
		if e.Type == "missing_required" && e.Field == "url" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected missing_required finding, got %+v", result.Errors)
	}
}

func TestMissingPrefixExpressionIsError(t *testing.T) {
	lookup := fakeLookup{schemas: map[string]NodeSchema{"noOp": {Type: "noOp"}}}
	nodes := []workflow.LiteNode{
		{Name: "N1", Type: "noOp", Parameters: map[string]any{"text": "{{$json.name}}"}},
	}
	result := Run(nodes, nil, lookup)
	if result.Pass {
		t.Fatal("expected failure for missing-prefix expression")
	}

	nodes[0].Parameters["text"] = "={{$json.name}}"
	result2 := Run(nodes, nil, lookup)
	if !result2.Pass {
		t.Fatalf("expected pass once '=' prefix added, got errors: %+v", result2.Errors)
	}
}

func TestIdempotencePass(t *testing.T) {
	lookup := httpLookup()
	nodes := []workflow.LiteNode{
		{Name: "HTTP", Type: "httpRequest", Parameters: map[string]any{"url": "https://example.com", "method": "GET"}},
	}
	r1 := Run(nodes, nil, lookup)
	r2 := Run(nodes, nil, lookup)
	if len(r1.Errors) != len(r2.Errors) || len(r1.Warnings) != len(r2.Warnings) {
		t.Fatalf("preflight is not idempotent: %+v vs %+v", r1, r2)
	}
}

func TestCredentialExposureIsWarningNotError(t *testing.T) {
	lookup := fakeLookup{schemas: map[string]NodeSchema{"noOp": {Type: "noOp"}}}
	apiKey := "sk-" + strRepeat("A", 30)
	nodes := []workflow.LiteNode{
		{Name: "N1", Type: "noOp", Parameters: map[string]any{"apiKey": apiKey}},
	}
	result := Run(nodes, nil, lookup)
	if !result.Pass {
		t.Fatalf("credential exposure must not block: %+v", result.Errors)
	}
	found := false
	for _, w := range result.Warnings {
		if w.Type == "credential-exposure" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected credential-exposure warning, got %+v", result.Warnings)
	}
}

func strRepeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}

func TestDuplicateNodeNameIsError(t *testing.T) {
	lookup := fakeLookup{schemas: map[string]NodeSchema{"noOp": {Type: "noOp"}}}
	nodes := []workflow.LiteNode{
		{Name: "Dup", Type: "noOp", Parameters: map[string]any{}},
		{Name: "Dup", Type: "noOp", Parameters: map[string]any{}},
	}
	result := Run(nodes, nil, lookup)
	if result.Pass {
		t.Fatal("expected failure for duplicate node names")
	}
}

func TestUnknownConnectionEndpointIsError(t *testing.T) {
	lookup := fakeLookup{schemas: map[string]NodeSchema{"noOp": {Type: "noOp"}}}
	nodes := []workflow.LiteNode{
		{Name: "N1", Type: "noOp", Parameters: map[string]any{}},
	}
	conns := []workflow.LiteConnection{{Source: "N1", Target: "Ghost"}}
	result := Run(nodes, conns, lookup)
	if result.Pass {
		t.Fatal("expected failure for unknown connection target")
	}
}

func TestIsolatedNonTriggerNodeIsWarning(t *testing.T) {
	lookup := fakeLookup{schemas: map[string]NodeSchema{"noOp": {Type: "noOp"}}}
	nodes := []workflow.LiteNode{
		{Name: "N1", Type: "noOp", Parameters: map[string]any{}},
		{Name: "N2", Type: "noOp", Parameters: map[string]any{}},
	}
	result := Run(nodes, nil, lookup)
	found := false
	for _, w := range result.Warnings {
		if w.Type == "isolated_node" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected isolated_node warning, got %+v", result.Warnings)
	}
}

func TestValidateLocationHintsNeverCalledFromRun(t *testing.T) {
	lookup := fakeLookup{schemas: map[string]NodeSchema{
		"noOp": {Type: "noOp", Required: []RequiredProperty{{Path: "known"}}},
	}}
	nodes := []workflow.LiteNode{
		{Name: "N1", Type: "noOp", Parameters: map[string]any{"known": "x", "mystery": "y"}},
	}
	hints := validateLocationHints(nodes, lookup)
	if len(hints) != 1 || hints[0].Field != "mystery" {
		t.Fatalf("expected one hint for 'mystery', got %+v", hints)
	}

	result := Run(nodes, nil, lookup)
	for _, w := range result.Warnings {
		if w.Type == "unrecognized_property_location" {
			t.Fatal("Run must never call validateLocationHints")
		}
	}
}

func TestRunReportsDuration(t *testing.T) {
	nodes := []workflow.LiteNode{{Name: "N1", Type: "noOp"}}
	result := Run(nodes, nil, fakeLookup{})
	if result.DurationMS < 0 {
		t.Fatalf("expected a non-negative duration, got %d", result.DurationMS)
	}
}
