// Package surgicaledit applies a sequence of typed operations to a
// LiteWorkflow in memory: add/remove/update node, add/remove connection,
// enable/disable, rename. LiteNode carries no position, so Apply reports the
// names it added and leaves layout to the caller, which runs pkg/layout
// against the reconstructed raw workflow once the whole batch has landed.
package surgicaledit

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/LunkiBR/n8n-mcp-lite/pkg/apierrors"
	"github.com/LunkiBR/n8n-mcp-lite/pkg/workflow"
)

// OpKind names one surgical operation.
type OpKind string

const (
	OpAddNode         OpKind = "add_node"
	OpRemoveNode      OpKind = "remove_node"
	OpUpdateNode      OpKind = "update_node"
	OpRenameNode      OpKind = "rename_node"
	OpSetDisabled     OpKind = "set_disabled"
	OpAddConnection   OpKind = "add_connection"
	OpRemoveConnection OpKind = "remove_connection"
)

// Op is one operation in a surgical edit batch. Which fields are read
// depends on Kind; see Apply.
type Op struct {
	Kind OpKind `json:"kind"`

	// add_node / update_node
	Node workflow.LiteNode `json:"node,omitempty"`

	// remove_node / set_disabled / rename_node (From) / update_node target
	Name string `json:"name,omitempty"`

	// rename_node
	NewName string `json:"newName,omitempty"`

	// set_disabled
	Disabled bool `json:"disabled,omitempty"`

	// add_connection / remove_connection
	Connection workflow.LiteConnection `json:"connection,omitempty"`
}

// OpError names the operation index and reason it could not be applied.
type OpError struct {
	Index  int
	Kind   OpKind
	Reason string
}

func (e *OpError) Error() string {
	return fmt.Sprintf("op[%d] %s: %s", e.Index, e.Kind, e.Reason)
}

// Apply runs every op against lite in order, mutating a copy and returning
// it along with the names of any nodes add_node introduced (the caller
// positions these with pkg/layout after Reconstruct, since a RawNode's
// position is meaningless on the Lite side). Operations are applied
// atomically as a batch: the first failing op aborts the whole batch and
// returns a nil workflow alongside an *OpError. lite itself is never
// modified, so a caller never writes back a partially-edited graph.
func Apply(lite *workflow.LiteWorkflow, ops []Op) (*workflow.LiteWorkflow, []string, error) {
	working := cloneWorkflow(lite)
	touchedNew := map[string]bool{}

	for i, op := range ops {
		var err error
		switch op.Kind {
		case OpAddNode:
			err = applyAddNode(working, op, touchedNew)
		case OpRemoveNode:
			err = applyRemoveNode(working, op)
			delete(touchedNew, op.Name)
		case OpUpdateNode:
			err = applyUpdateNode(working, op)
		case OpRenameNode:
			err = applyRenameNode(working, op)
			if touchedNew[op.Name] {
				delete(touchedNew, op.Name)
				touchedNew[op.NewName] = true
			}
		case OpSetDisabled:
			err = applySetDisabled(working, op)
		case OpAddConnection:
			err = applyAddConnection(working, op)
		case OpRemoveConnection:
			err = applyRemoveConnection(working, op)
		default:
			err = fmt.Errorf("unknown operation kind %q", op.Kind)
		}
		if err != nil {
			return nil, nil, &OpError{Index: i, Kind: op.Kind, Reason: err.Error()}
		}
	}

	names := make([]string, 0, len(touchedNew))
	for n := range touchedNew {
		names = append(names, n)
	}
	return working, names, nil
}

func cloneWorkflow(lite *workflow.LiteWorkflow) *workflow.LiteWorkflow {
	out := &workflow.LiteWorkflow{
		ID:       lite.ID,
		Name:     lite.Name,
		Active:   lite.Active,
		Tags:     append([]string(nil), lite.Tags...),
		Settings: lite.Settings,
	}
	out.Nodes = append([]workflow.LiteNode(nil), lite.Nodes...)
	out.Connections = append([]workflow.LiteConnection(nil), lite.Connections...)
	return out
}

func findNode(w *workflow.LiteWorkflow, name string) int {
	for i, n := range w.Nodes {
		if n.Name == name {
			return i
		}
	}
	return -1
}

func applyAddNode(w *workflow.LiteWorkflow, op Op, touchedNew map[string]bool) error {
	if op.Node.Name == "" {
		return fmt.Errorf("node name is required")
	}
	if findNode(w, op.Node.Name) >= 0 {
		return apierrors.NewConflict("add_node", fmt.Sprintf("a node named %q already exists", op.Node.Name))
	}
	node := op.Node
	if node.ID == "" {
		node.ID = uuid.NewString()
	}
	w.Nodes = append(w.Nodes, node)
	touchedNew[op.Node.Name] = true
	return nil
}

func applyRemoveNode(w *workflow.LiteWorkflow, op Op) error {
	idx := findNode(w, op.Name)
	if idx < 0 {
		return apierrors.NewMissingEntity("node", op.Name)
	}
	w.Nodes = append(w.Nodes[:idx], w.Nodes[idx+1:]...)

	kept := w.Connections[:0]
	for _, c := range w.Connections {
		if c.Source == op.Name || c.Target == op.Name {
			continue
		}
		kept = append(kept, c)
	}
	w.Connections = kept
	return nil
}

func applyUpdateNode(w *workflow.LiteWorkflow, op Op) error {
	name := op.Name
	if name == "" {
		name = op.Node.Name
	}
	idx := findNode(w, name)
	if idx < 0 {
		return apierrors.NewMissingEntity("node", name)
	}
	updated := op.Node
	updated.Name = w.Nodes[idx].Name
	updated.ID = w.Nodes[idx].ID
	w.Nodes[idx] = updated
	return nil
}

func applyRenameNode(w *workflow.LiteWorkflow, op Op) error {
	if op.NewName == "" {
		return fmt.Errorf("newName is required")
	}
	idx := findNode(w, op.Name)
	if idx < 0 {
		return apierrors.NewMissingEntity("node", op.Name)
	}
	if op.NewName != op.Name && findNode(w, op.NewName) >= 0 {
		return apierrors.NewConflict("rename_node", fmt.Sprintf("a node named %q already exists", op.NewName))
	}
	w.Nodes[idx].Name = op.NewName
	for i, c := range w.Connections {
		if c.Source == op.Name {
			w.Connections[i].Source = op.NewName
		}
		if c.Target == op.Name {
			w.Connections[i].Target = op.NewName
		}
	}
	return nil
}

func applySetDisabled(w *workflow.LiteWorkflow, op Op) error {
	idx := findNode(w, op.Name)
	if idx < 0 {
		return apierrors.NewMissingEntity("node", op.Name)
	}
	w.Nodes[idx].Disabled = op.Disabled
	return nil
}

func applyAddConnection(w *workflow.LiteWorkflow, op Op) error {
	if findNode(w, op.Connection.Source) < 0 {
		return apierrors.NewMissingEntity("node", op.Connection.Source)
	}
	if findNode(w, op.Connection.Target) < 0 {
		return apierrors.NewMissingEntity("node", op.Connection.Target)
	}
	for _, c := range w.Connections {
		if c == op.Connection {
			return apierrors.NewConflict("add_connection", "connection already exists")
		}
	}
	w.Connections = append(w.Connections, op.Connection)
	return nil
}

func applyRemoveConnection(w *workflow.LiteWorkflow, op Op) error {
	kept := w.Connections[:0]
	found := false
	for _, c := range w.Connections {
		if c.Source == op.Connection.Source && c.Target == op.Connection.Target &&
			c.OutputIndex == op.Connection.OutputIndex {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	w.Connections = kept
	if !found {
		return apierrors.NewMissingEntity("connection", fmt.Sprintf("%s -> %s", op.Connection.Source, op.Connection.Target))
	}
	return nil
}
