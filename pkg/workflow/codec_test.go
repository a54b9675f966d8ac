package workflow

import "testing"

func mergeScenarioRaw() *RawWorkflow {
	return &RawWorkflow{
		ID:     "wf1",
		Name:   "merge-scenario",
		Active: true,
		Nodes: []RawNode{
			{ID: "1", Name: "A", Type: "n8n-nodes-base.noOp"},
			{ID: "2", Name: "B", Type: "n8n-nodes-base.noOp"},
			{ID: "3", Name: "IF", Type: "n8n-nodes-base.if", TypeVersion: 2},
			{ID: "4", Name: "Merge", Type: "n8n-nodes-base.merge"},
		},
		Connections: RawConnections{
			"A": {"main": [][]RawConnectionTarget{
				{{Node: "IF", Type: "main", Index: 0}},
			}},
			"IF": {"main": [][]RawConnectionTarget{
				{{Node: "B", Type: "main", Index: 0}},
				{{Node: "Merge", Type: "main", Index: 1}},
			}},
			"B": {"main": [][]RawConnectionTarget{
				{{Node: "Merge", Type: "main", Index: 0}},
			}},
		},
	}
}

func TestCodecRoundTripScenarioA(t *testing.T) {
	raw := mergeScenarioRaw()

	lite, err := Compress(raw, CompressOptions{})
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}

	// Simulate what the wire format does: an explicit index of 0 is omitted
	// on the way out and comes back as nil (implicit) on the way in.
	rebuilt, err := Reconstruct(lite, raw)
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}

	mergeMain := rebuilt.Connections["B"]["main"][0]
	if len(mergeMain) != 1 || mergeMain[0].Node != "Merge" {
		t.Fatalf("expected B->Merge on main[0], got %+v", rebuilt.Connections["B"])
	}

	ifMain := rebuilt.Connections["IF"]["main"]
	if len(ifMain) < 2 {
		t.Fatalf("expected IF to retain two output branches, got %+v", ifMain)
	}
	if ifMain[1][0].Node != "Merge" {
		t.Fatalf("expected IF output 1 to reach Merge, got %+v", ifMain)
	}

	// distinct input indices at Merge/main
	seen := map[int]bool{}
	for src, kinds := range rebuilt.Connections {
		for kind, outputs := range kinds {
			if kind != "main" {
				continue
			}
			for _, targets := range outputs {
				for _, tgt := range targets {
					if tgt.Node == "Merge" {
						if seen[tgt.Index] {
							t.Fatalf("duplicate input index %d at Merge from %s", tgt.Index, src)
						}
						seen[tgt.Index] = true
					}
				}
			}
		}
	}
	if !seen[0] || !seen[1] {
		t.Fatalf("expected Merge inputs at indices 0 and 1, got %v", seen)
	}
}

func TestTypePrefixIdempotence(t *testing.T) {
	full := "n8n-nodes-base.httpRequest"
	short := CompressType(full)
	if short != "httpRequest" {
		t.Fatalf("CompressType(%q) = %q", full, short)
	}
	if ExpandType(short) != full {
		t.Fatalf("ExpandType(%q) = %q, want %q", short, ExpandType(short), full)
	}
	if ExpandType(full) != full {
		t.Fatalf("ExpandType on already-qualified type changed it: %q", ExpandType(full))
	}

	lc := "@n8n/n8n-nodes-langchain.agent"
	shortLC := CompressType(lc)
	if shortLC != "langchain:agent" {
		t.Fatalf("CompressType(%q) = %q", lc, shortLC)
	}
	if ExpandType(shortLC) != lc {
		t.Fatalf("ExpandType(%q) = %q, want %q", shortLC, ExpandType(shortLC), lc)
	}
}

func TestTopologicalSortAcyclic(t *testing.T) {
	names := []string{"D", "B", "A", "C"}
	conns := []LiteConnection{
		{Source: "A", Target: "B"},
		{Source: "B", Target: "C"},
		{Source: "A", Target: "D"},
	}
	order := TopologicalSort(names, conns)
	pos := map[string]int{}
	for i, n := range order {
		pos[n] = i
	}
	if pos["A"] > pos["B"] || pos["B"] > pos["C"] || pos["A"] > pos["D"] {
		t.Fatalf("invalid topological order: %v", order)
	}
	if len(order) != len(names) {
		t.Fatalf("expected every node once, got %v", order)
	}
}

func TestTopologicalSortCycleDoesNotCrash(t *testing.T) {
	names := []string{"X", "Y"}
	conns := []LiteConnection{
		{Source: "X", Target: "Y"},
		{Source: "Y", Target: "X"},
	}
	order := TopologicalSort(names, conns)
	if len(order) != 2 {
		t.Fatalf("expected both nodes present despite cycle, got %v", order)
	}
}

func TestCleanParamsDropsEmpties(t *testing.T) {
	in := map[string]any{
		"keep":             "value",
		"dropNull":         nil,
		"dropEmptyString":  "",
		"dropSentinel":     "none",
		"dropOff":          "off",
		"dropEmptyArray":   []any{},
		"keepArray":        []any{"x"},
		"options":          map[string]any{},
		"additionalFields": map[string]any{"x": ""},
		"nested":           map[string]any{"a": "", "b": "keep"},
	}
	out := CleanParams(in)
	if _, ok := out["dropNull"]; ok {
		t.Fatal("dropNull should have been removed")
	}
	if _, ok := out["options"]; ok {
		t.Fatal("empty options wrapper should have been removed")
	}
	if _, ok := out["additionalFields"]; ok {
		t.Fatal("additionalFields with only-empty contents should have been removed")
	}
	if out["keep"] != "value" {
		t.Fatal("keep should survive")
	}
	nested, ok := out["nested"].(map[string]any)
	if !ok || nested["b"] != "keep" || len(nested) != 1 {
		t.Fatalf("nested cleaning incorrect: %+v", out["nested"])
	}
}

func TestCredentialSurvivesRename(t *testing.T) {
	original := &RawWorkflow{
		Nodes: []RawNode{
			{ID: "n1", Name: "OldName", Credentials: map[string]RawCredential{
				"slackApi": {ID: "cred-123", Name: "My Slack"},
			}},
		},
	}

	renamed := LiteNode{
		ID:   "n1",
		Name: "NewName",
		Credentials: map[string]string{
			"slackApi": "My Slack",
		},
	}

	restored := RestoreCredentials(renamed, original)
	if restored["slackApi"].ID != "cred-123" {
		t.Fatalf("expected credential id to survive rename via identity lookup, got %+v", restored)
	}
}
