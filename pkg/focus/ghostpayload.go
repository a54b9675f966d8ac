package focus

import (
	"sort"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/LunkiBR/n8n-mcp-lite/pkg/graph"
)

const maxGhostKeys = 20

// NodeRun captures what a prior execution's run-data recorded for one node:
// either a failure (Error=true, no keys), or the set of JSON field names
// observed per output index (index 0 for non-branching nodes, every branch
// individually for routers).
type NodeRun struct {
	Error   bool
	Outputs map[int][]string
}

// ParseExecutionTrace walks resultData.runData in an engine execution's raw
// JSON and returns, per node, the last recorded run's output-key sets.
// Nodes with no recorded run are absent from the result.
func ParseExecutionTrace(executionJSON string) map[string]NodeRun {
	runData := gjson.Get(executionJSON, "resultData.runData")
	if !runData.Exists() {
		return nil
	}

	result := map[string]NodeRun{}
	runData.ForEach(func(nodeKey, runs gjson.Result) bool {
		nodeName := nodeKey.String()
		arr := runs.Array()
		if len(arr) == 0 {
			return true
		}
		last := arr[len(arr)-1]

		if last.Get("error").Exists() {
			result[nodeName] = NodeRun{Error: true}
			return true
		}

		main := last.Get("data.main")
		outputs := map[int][]string{}
		main.ForEach(func(idxKey, items gjson.Result) bool {
			idx, _ := strconv.Atoi(idxKey.String())
			keySet := map[string]bool{}
			items.ForEach(func(_, item gjson.Result) bool {
				item.Get("json").ForEach(func(k, _ gjson.Result) bool {
					keySet[k.String()] = true
					return true
				})
				return true
			})
			outputs[idx] = truncateKeys(keySet)
			return true
		})
		result[nodeName] = NodeRun{Outputs: outputs}
		return true
	})
	return result
}

func truncateKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if len(keys) <= maxGhostKeys {
		return keys
	}
	truncated := keys[:maxGhostKeys]
	remaining := len(keys) - maxGhostKeys
	return append(truncated, "...+"+itoa(remaining)+" more")
}

// GhostPayload computes the inputHint for one focused node: the union of
// its upstream nodes' recorded output keys at the edge's output-index.
// Trigger nodes (no incoming connections) get no hint, matching nodes with
// no recorded run in the trace.
func GhostPayload(nodeName string, g *graph.Graph, runs map[string]NodeRun) []string {
	incoming := g.Reverse[nodeName]
	if len(incoming) == 0 {
		return nil
	}

	keySet := map[string]bool{}
	for _, e := range incoming {
		run, ok := runs[e.Node]
		if !ok || run.Error {
			continue
		}
		for _, k := range run.Outputs[e.OutputIndex] {
			keySet[k] = true
		}
	}
	if len(keySet) == 0 {
		return nil
	}

	out := make([]string, 0, len(keySet))
	for k := range keySet {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
