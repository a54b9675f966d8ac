// Package knowledge provides the read-only node-type catalogue, pattern
// recipes, payload schemas, quirks, and expression cookbook that the MCP
// tools query against. All data is embedded at build time; the loading
// pipeline specifies only the query surface over it, not the data's
// provenance or curation process.
package knowledge

import (
	"encoding/json"
	"sync"

	"github.com/LunkiBR/n8n-mcp-lite/pkg/logger"
)

var knowledgeLog = logger.New("knowledge:index")

// PropertyRequirement names a property that must be present and non-empty
// when its Show condition (if any) is satisfied — the same shape
// preflight consumes.
type PropertyRequirement struct {
	Path string              `json:"path"`
	Show map[string][]string `json:"show,omitempty"`
}

// ResourceOperation describes a node type's resource/operation coupling.
type ResourceOperation struct {
	ResourcePath         string              `json:"resourcePath"`
	OperationPath        string              `json:"operationPath"`
	Resources            []string            `json:"resources"`
	OperationsByResource map[string][]string `json:"operationsByResource"`
}

// NodeInfo is one entry of the node-type catalogue.
type NodeInfo struct {
	Type              string              `json:"type"`
	DisplayName       string              `json:"displayName"`
	Category          string              `json:"category"`
	Source            string              `json:"source"`
	SearchTokens      []string            `json:"searchTokens"`
	Required          []PropertyRequirement `json:"required,omitempty"`
	EnumProperties    map[string][]string `json:"enumProperties,omitempty"`
	PropertyTypes     map[string]string   `json:"propertyTypes,omitempty"`
	ResourceOperation *ResourceOperation  `json:"resourceOperation,omitempty"`
}

// Pattern is a named workflow recipe.
type Pattern struct {
	Name         string   `json:"name"`
	Keywords     []string `json:"keywords"`
	Description  string   `json:"description"`
	NodeTypes    []string `json:"nodeTypes"`
}

// PayloadSchema is a node type's execution-output shape.
type PayloadSchema struct {
	NodeType string         `json:"nodeType"`
	Schema   map[string]any `json:"schema"`
}

// Quirk is a known gotcha for a node type.
type Quirk struct {
	NodeType string `json:"nodeType"`
	Summary  string `json:"summary"`
}

// ExpressionEntry is one cookbook entry for the expression language.
type ExpressionEntry struct {
	Name        string   `json:"name"`
	Keywords    []string `json:"keywords"`
	Syntax      string   `json:"syntax"`
	Description string   `json:"description"`
}

// Index is the in-memory, read-only knowledge base. It is safe for
// concurrent use by construction: nothing in the process ever mutates it
// after load.
type Index struct {
	nodesByType   map[string]NodeInfo
	nodesByDisplay map[string]NodeInfo
	nodeList      []NodeInfo

	patterns    []Pattern
	payloads    map[string]PayloadSchema
	quirks      map[string][]Quirk
	expressions []ExpressionEntry
}

var (
	indexOnce sync.Once
	index     *Index
	loadErr   error
)

// Get returns the process-wide Index, loading and parsing the embedded
// data exactly once.
func Get() (*Index, error) {
	indexOnce.Do(func() {
		index, loadErr = load()
		if loadErr != nil {
			knowledgeLog.Printf("failed to load knowledge index: %v", loadErr)
		}
	})
	return index, loadErr
}

func load() (*Index, error) {
	var nodes []NodeInfo
	if err := json.Unmarshal(nodesJSON, &nodes); err != nil {
		return nil, err
	}
	var patterns []Pattern
	if err := json.Unmarshal(patternsJSON, &patterns); err != nil {
		return nil, err
	}
	var payloads []PayloadSchema
	if err := json.Unmarshal(payloadsJSON, &payloads); err != nil {
		return nil, err
	}
	var quirks []Quirk
	if err := json.Unmarshal(quirksJSON, &quirks); err != nil {
		return nil, err
	}
	var expressions []ExpressionEntry
	if err := json.Unmarshal(expressionsJSON, &expressions); err != nil {
		return nil, err
	}

	idx := &Index{
		nodesByType:    make(map[string]NodeInfo, len(nodes)),
		nodesByDisplay: make(map[string]NodeInfo, len(nodes)),
		nodeList:       nodes,
		patterns:       patterns,
		payloads:       make(map[string]PayloadSchema, len(payloads)),
		quirks:         make(map[string][]Quirk, len(quirks)),
		expressions:    expressions,
	}
	for _, n := range nodes {
		idx.nodesByType[n.Type] = n
		idx.nodesByDisplay[lower(n.DisplayName)] = n
	}
	for _, p := range payloads {
		idx.payloads[p.NodeType] = p
	}
	for _, q := range quirks {
		idx.quirks[q.NodeType] = append(idx.quirks[q.NodeType], q)
	}

	knowledgeLog.Printf("loaded knowledge index: %d node types, %d patterns, %d payload schemas, %d quirks, %d expressions",
		len(nodes), len(patterns), len(payloads), len(quirks), len(expressions))

	return idx, nil
}
