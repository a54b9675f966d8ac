package focus

import (
	"testing"

	"github.com/LunkiBR/n8n-mcp-lite/pkg/workflow"
)

func linearChainRaw(n int) *workflow.RawWorkflow {
	raw := &workflow.RawWorkflow{ID: "wf", Name: "chain"}
	for i := 1; i <= n; i++ {
		name := "N" + itoa(i)
		raw.Nodes = append(raw.Nodes, workflow.RawNode{ID: name, Name: name, Type: "n8n-nodes-base.noOp"})
	}
	raw.Connections = workflow.RawConnections{}
	for i := 1; i < n; i++ {
		src := "N" + itoa(i)
		tgt := "N" + itoa(i+1)
		raw.Connections[src] = map[string][][]workflow.RawConnectionTarget{
			"main": {{{Node: tgt, Type: "main", Index: 0}}},
		}
	}
	return raw
}

func TestBuildFocusMidPipeline(t *testing.T) {
	raw := linearChainRaw(10)
	view, err := BuildFocus(raw, Selection{Names: []string{"N5"}}, "")
	if err != nil {
		t.Fatalf("BuildFocus: %v", err)
	}
	if view.Zones.Focused != 1 || view.Zones.Upstream != 4 || view.Zones.Downstream != 5 || view.Zones.Parallel != 0 {
		t.Fatalf("unexpected zone counts: %+v", view.Zones)
	}
	if len(view.Boundaries) != 2 {
		t.Fatalf("expected 2 boundaries, got %d: %+v", len(view.Boundaries), view.Boundaries)
	}
}

func TestSummarizeNeverContainsUndefined(t *testing.T) {
	n := workflow.LiteNode{Type: "switch", Parameters: map[string]any{}}
	s := Summarize(n)
	if s == "" {
		t.Fatal("expected non-empty summary")
	}
	if len(s) > 100 {
		t.Fatalf("summary too long: %d", len(s))
	}
	if containsSubstr(s, "undefined") {
		t.Fatalf("summary contains undefined: %q", s)
	}
	if s == n.Type {
		t.Fatalf("empty-router summary must not be the bare type name: %q", s)
	}
}

func containsSubstr(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}

func TestGhostPayloadBranchCorrectness(t *testing.T) {
	raw := &workflow.RawWorkflow{
		ID: "wf",
		Nodes: []workflow.RawNode{
			{ID: "1", Name: "IF", Type: "n8n-nodes-base.if"},
			{ID: "2", Name: "TrueTarget", Type: "n8n-nodes-base.noOp"},
			{ID: "3", Name: "FalseTarget", Type: "n8n-nodes-base.noOp"},
		},
		Connections: workflow.RawConnections{
			"IF": {"main": [][]workflow.RawConnectionTarget{
				{{Node: "TrueTarget", Type: "main", Index: 0}},
				{{Node: "FalseTarget", Type: "main", Index: 0}},
			}},
		},
	}

	execJSON := `{"resultData":{"runData":{
		"IF":[{"data":{"main":[[{"json":{"a":1}}],[{"json":{"b":2}}]]}}]
	}}}`

	view, err := BuildFocus(raw, Selection{Names: []string{"TrueTarget", "FalseTarget"}}, execJSON)
	if err != nil {
		t.Fatalf("BuildFocus: %v", err)
	}

	var trueNode, falseNode *workflow.LiteNode
	for i := range view.Nodes {
		switch view.Nodes[i].Name {
		case "TrueTarget":
			trueNode = &view.Nodes[i]
		case "FalseTarget":
			falseNode = &view.Nodes[i]
		}
	}
	if trueNode == nil || falseNode == nil {
		t.Fatal("expected both branch targets in focused nodes")
	}
	if !containsStr(trueNode.InputHint, "a") || containsStr(trueNode.InputHint, "b") {
		t.Fatalf("TrueTarget hint wrong: %+v", trueNode.InputHint)
	}
	if !containsStr(falseNode.InputHint, "b") || containsStr(falseNode.InputHint, "a") {
		t.Fatalf("FalseTarget hint wrong: %+v", falseNode.InputHint)
	}
}

func containsStr(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
