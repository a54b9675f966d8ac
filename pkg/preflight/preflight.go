package preflight

import (
	"fmt"
	"strings"
	"time"

	"github.com/LunkiBR/n8n-mcp-lite/pkg/workflow"
)

// triggerTypeHint reports whether a node type identifies a trigger, the
// one class of node exempt from phase 4's warning for a node with no
// incoming and no outgoing connections.
func triggerTypeHint(nodeType string) bool {
	t := strings.ToLower(nodeType)
	return strings.Contains(t, "trigger") || strings.Contains(t, "webhook")
}

// Run executes all five phases against the given virtual state and
// returns the combined verdict. The pipeline passes iff Errors is empty;
// warnings never block.
func Run(nodes []workflow.LiteNode, connections []workflow.LiteConnection, lookup Lookup) Result {
	start := time.Now()
	r := Result{}

	phase1ConfigValidation(nodes, lookup, &r)
	phase2ExpressionValidation(nodes, &r)
	phase3CredentialScan(nodes, &r)
	phase4StructuralChecks(nodes, connections, triggerTypeHint, &r)
	phase5WorkflowLevel(nodes, &r)

	r.Pass = len(r.Errors) == 0
	r.Summary = summarize(r)
	r.DurationMS = time.Since(start).Milliseconds()
	return r
}

func summarize(r Result) string {
	if r.Pass && len(r.Warnings) == 0 {
		return "preflight passed with no findings"
	}
	if r.Pass {
		return fmt.Sprintf("preflight passed with %d warning(s)", len(r.Warnings))
	}
	return fmt.Sprintf("preflight blocked: %d error(s), %d warning(s)", len(r.Errors), len(r.Warnings))
}
