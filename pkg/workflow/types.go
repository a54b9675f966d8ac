// Package workflow models the remote automation engine's workflow JSON (Raw
// form) and the compact projection the rest of this server speaks (Lite
// form), plus the bidirectional codec between the two.
package workflow

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/tidwall/sjson"
)

// RawCredential is one entry in a node's credentials map: the engine-side
// identifier plus the human-assigned name shown in the editor.
type RawCredential struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RawNode mirrors one node in the engine's workflow JSON.
type RawNode struct {
	ID          string                   `json:"id"`
	Name        string                   `json:"name"`
	Type        string                   `json:"type"`
	TypeVersion float64                  `json:"typeVersion,omitempty"`
	Position    [2]float64               `json:"position"`
	Parameters  map[string]any           `json:"parameters,omitempty"`
	Credentials map[string]RawCredential `json:"credentials,omitempty"`
	Disabled    bool                     `json:"disabled,omitempty"`
	OnError     string                   `json:"onError,omitempty"`
	Notes       string                   `json:"notes,omitempty"`
}

// RawConnectionTarget is one entry in a per-output-index connection list:
// the target node name, the channel it arrives on (usually repeats the
// source's output-kind), and the port index on the target.
type RawConnectionTarget struct {
	Node  string `json:"node"`
	Type  string `json:"type"`
	Index int    `json:"index"`
}

// RawConnections is the engine's three-level connection mapping:
// source name -> output kind -> per-output-index list of targets.
type RawConnections map[string]map[string][][]RawConnectionTarget

// RawTag is a workflow tag as the engine stores it.
type RawTag struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// rawWorkflowKnown is the subset of RawWorkflow fields this codec actively
// understands. Everything else present in the source JSON (version shadows,
// computed positions, empty defaults, sharing metadata, …) is captured
// separately as passthrough and re-emitted verbatim on write.
type rawWorkflowKnown struct {
	ID          string         `json:"id,omitempty"`
	Name        string         `json:"name"`
	Active      bool           `json:"active"`
	Nodes       []RawNode      `json:"nodes"`
	Connections RawConnections `json:"connections"`
	Settings    map[string]any `json:"settings,omitempty"`
	Tags        []RawTag       `json:"tags,omitempty"`
}

var knownRawKeys = map[string]bool{
	"id": true, "name": true, "active": true, "nodes": true,
	"connections": true, "settings": true, "tags": true,
}

// RawWorkflow mirrors the remote engine's full workflow representation,
// tolerating and round-tripping bloat fields the codec does not model.
type RawWorkflow struct {
	ID          string
	Name        string
	Active      bool
	Nodes       []RawNode
	Connections RawConnections
	Settings    map[string]any
	Tags        []RawTag

	extra map[string]json.RawMessage
}

// UnmarshalJSON captures the known fields into the struct and everything
// else into extra, so a subsequent MarshalJSON reproduces fields this codec
// was never told about.
func (w *RawWorkflow) UnmarshalJSON(data []byte) error {
	var known rawWorkflowKnown
	if err := json.Unmarshal(data, &known); err != nil {
		return fmt.Errorf("raw workflow: %w", err)
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return fmt.Errorf("raw workflow: %w", err)
	}

	extra := make(map[string]json.RawMessage, len(all))
	for k, v := range all {
		if knownRawKeys[k] {
			continue
		}
		extra[k] = v
	}

	w.ID = known.ID
	w.Name = known.Name
	w.Active = known.Active
	w.Nodes = known.Nodes
	w.Connections = known.Connections
	w.Settings = known.Settings
	w.Tags = known.Tags
	w.extra = extra
	return nil
}

// MarshalJSON emits the known fields plus every captured passthrough field.
func (w RawWorkflow) MarshalJSON() ([]byte, error) {
	known := rawWorkflowKnown{
		ID:          w.ID,
		Name:        w.Name,
		Active:      w.Active,
		Nodes:       w.Nodes,
		Connections: w.Connections,
		Settings:    w.Settings,
		Tags:        w.Tags,
	}

	base, err := json.Marshal(known)
	if err != nil {
		return nil, fmt.Errorf("raw workflow: %w", err)
	}

	keys := make([]string, 0, len(w.extra))
	for k := range w.extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := base
	for _, k := range keys {
		out, err = sjson.SetRawBytes(out, k, w.extra[k])
		if err != nil {
			return nil, fmt.Errorf("raw workflow: passthrough field %q: %w", k, err)
		}
	}
	return out, nil
}

// LiteNode is the compact projection of a RawNode emitted to the agent.
type LiteNode struct {
	Name        string            `json:"name"`
	Type        string            `json:"type"`
	ID          string            `json:"id"`
	TypeVersion float64           `json:"typeVersion,omitempty"`
	Parameters  map[string]any    `json:"parameters,omitempty"`
	Credentials map[string]string `json:"credentials,omitempty"`
	Disabled    bool              `json:"disabled,omitempty"`
	OnError     string            `json:"onError,omitempty"`
	Notes       string            `json:"notes,omitempty"`
	InputHint   []string          `json:"inputHint,omitempty"`
}

// LiteConnection is one compressed {source, kind, outputIndex, target,
// inputIndex} quadruple. InputIndex is a pointer so reconstruction can tell
// an explicit index (including an explicit 0) apart from "not specified,
// assign the next free slot" — see ReconstructConnections.
type LiteConnection struct {
	Source      string `json:"source"`
	Target      string `json:"target"`
	Type        string `json:"type,omitempty"`
	OutputIndex int    `json:"outputIndex,omitempty"`
	InputIndex  *int   `json:"inputIndex,omitempty"`
}

// LiteWorkflow is the compact workflow representation; this is the form
// every tool in the catalogue speaks except the raw-passthrough read tool.
type LiteWorkflow struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Active      bool             `json:"active"`
	Nodes       []LiteNode       `json:"nodes"`
	Connections []LiteConnection `json:"connections"`
	Tags        []string         `json:"tags,omitempty"`
	Settings    map[string]any   `json:"settings,omitempty"`
}

// ScanNode is a one-line digest of a node for the scan view.
type ScanNode struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	ID          string `json:"id"`
	Disabled    bool   `json:"disabled,omitempty"`
	Summary     string `json:"summary,omitempty"`
	OutputCount int    `json:"outputCount,omitempty"`
}

// DormantNode is a one-line digest of a non-focused node in a focused view.
type DormantNode struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	ID          string   `json:"id"`
	Zone        string   `json:"zone"`
	Summary     string   `json:"summary,omitempty"`
	OutputsTo   []string `json:"outputsTo,omitempty"`
	InputsFrom  []string `json:"inputsFrom,omitempty"`
	OutputHint  string   `json:"outputHint,omitempty"`
}

// Boundary is one connection crossing the focused-set frontier.
type Boundary struct {
	Source      string `json:"source"`
	Target      string `json:"target"`
	Direction   string `json:"direction"` // "entry" or "exit"
	Type        string `json:"type,omitempty"`
	OutputIndex int    `json:"outputIndex,omitempty"`
	InputIndex  int    `json:"inputIndex,omitempty"`
}

// ZoneCounts tallies nodes per zone in a focused view.
type ZoneCounts struct {
	Focused    int `json:"focused"`
	Upstream   int `json:"upstream"`
	Downstream int `json:"downstream"`
	Parallel   int `json:"parallel"`
}

// FocusedWorkflowView is the response shape for a focus/expand-focus call.
type FocusedWorkflowView struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	TotalNodes  int              `json:"totalNodes"`
	Nodes       []LiteNode       `json:"nodes"`
	Connections []LiteConnection `json:"connections"`
	Dormant     []DormantNode    `json:"dormant"`
	Boundaries  []Boundary       `json:"boundaries"`
	Zones       ZoneCounts       `json:"zones"`
}
