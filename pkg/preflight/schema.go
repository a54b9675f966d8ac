package preflight

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/LunkiBR/n8n-mcp-lite/pkg/logger"
)

var schemaLog = logger.New("preflight:schema")

// schemaCacheEntry lazily compiles one node type's schema exactly once,
// mirroring the teacher's compiledSchemaOnce/compiledSchema pair but
// generalized to an arbitrary number of schemas via sync.Map instead of
// one static pair of package-level variables.
type schemaCacheEntry struct {
	once   sync.Once
	schema *jsonschema.Schema
	err    error
}

var schemaCache sync.Map // map[string]*schemaCacheEntry

func compiledSchemaFor(ns NodeSchema) (*jsonschema.Schema, error) {
	v, _ := schemaCache.LoadOrStore(ns.Type, &schemaCacheEntry{})
	entry := v.(*schemaCacheEntry)
	entry.once.Do(func() {
		schemaLog.Printf("compiling parameter schema for node type %s", ns.Type)
		doc := buildSchemaDoc(ns)

		compiler := jsonschema.NewCompiler()
		url := "mem://node-schema/" + ns.Type

		var anyDoc any
		raw, marshalErr := json.Marshal(doc)
		if marshalErr != nil {
			entry.err = fmt.Errorf("marshal schema doc for %s: %w", ns.Type, marshalErr)
			return
		}
		if err := json.Unmarshal(raw, &anyDoc); err != nil {
			entry.err = fmt.Errorf("normalize schema doc for %s: %w", ns.Type, err)
			return
		}

		if err := compiler.AddResource(url, anyDoc); err != nil {
			entry.err = fmt.Errorf("add schema resource for %s: %w", ns.Type, err)
			return
		}
		schema, err := compiler.Compile(url)
		if err != nil {
			entry.err = fmt.Errorf("compile schema for %s: %w", ns.Type, err)
			return
		}
		entry.schema = schema
	})
	return entry.schema, entry.err
}

// isExpressionSchema permits a value to be left unvalidated against an
// enum when it is an expression (starts with the "=" sigil).
var isExpressionSchema = map[string]any{
	"type":    "string",
	"pattern": "^=",
}

// buildSchemaDoc renders a NodeSchema into a JSON-Schema document. Always-
// required properties land in the top-level "required" array; show-
// conditioned properties become "allOf" entries of if/then blocks; enum
// properties become anyOf(expression, enum) so that expression values skip
// enum checking as spec'd.
func buildSchemaDoc(ns NodeSchema) map[string]any {
	doc := map[string]any{
		"type":                 "object",
		"$schema":              "https://json-schema.org/draft/2020-12/schema",
		"additionalProperties": true,
	}

	properties := map[string]any{}
	for path, allowed := range ns.EnumProperties {
		enumVals := make([]any, len(allowed))
		for i, v := range allowed {
			enumVals[i] = v
		}
		properties[path] = map[string]any{
			"anyOf": []any{
				isExpressionSchema,
				map[string]any{"enum": enumVals},
			},
		}
	}

	if ro := ns.ResourceOperation; ro != nil {
		resourceEnum := make([]any, len(ro.Resources))
		for i, r := range ro.Resources {
			resourceEnum[i] = r
		}
		properties[ro.ResourcePath] = map[string]any{
			"anyOf": []any{
				isExpressionSchema,
				map[string]any{"enum": resourceEnum},
			},
		}

		var allOf []any
		for resource, ops := range ro.OperationsByResource {
			opEnum := make([]any, len(ops))
			for i, o := range ops {
				opEnum[i] = o
			}
			allOf = append(allOf, map[string]any{
				"if": map[string]any{
					"properties": map[string]any{
						ro.ResourcePath: map[string]any{"const": resource},
					},
					"required": []any{ro.ResourcePath},
				},
				"then": map[string]any{
					"properties": map[string]any{
						ro.OperationPath: map[string]any{
							"anyOf": []any{
								isExpressionSchema,
								map[string]any{"enum": opEnum},
							},
						},
					},
				},
			})
		}
		if len(allOf) > 0 {
			doc["allOf"] = allOf
		}
	}

	if len(properties) > 0 {
		doc["properties"] = properties
	}

	var required []any
	var conditional []any
	for _, req := range ns.Required {
		if len(req.Show) == 0 {
			required = append(required, req.Path)
			continue
		}

		showProps := map[string]any{}
		var showRequired []any
		for otherProp, permitted := range req.Show {
			enumVals := make([]any, len(permitted))
			for i, v := range permitted {
				enumVals[i] = v
			}
			showProps[otherProp] = map[string]any{"enum": enumVals}
			showRequired = append(showRequired, otherProp)
		}

		conditional = append(conditional, map[string]any{
			"if": map[string]any{
				"properties": showProps,
				"required":   showRequired,
			},
			"then": map[string]any{
				"required": []any{req.Path},
			},
		})
	}

	if len(required) > 0 {
		doc["required"] = required
	}
	if len(conditional) > 0 {
		existing, _ := doc["allOf"].([]any)
		doc["allOf"] = append(existing, conditional...)
	}

	return doc
}
