// Package toolschema implements a zero-dependency structural validator for
// tool arguments, covering a deliberately small subset of JSON Schema:
// type, required, properties, items, enum, minimum, maximum. This is the
// one component of the server that intentionally does not reach for a
// third-party schema library — the surface it validates is small and fixed
// (the tool catalogue's own argument shapes), so a hand-rolled walk is
// simpler to audit than wiring a general-purpose validator for it.
package toolschema

import "fmt"

// Schema is a JSON-Schema subset sufficient to describe one tool's
// arguments.
type Schema struct {
	Type       string            `json:"type,omitempty"`
	Required   []string          `json:"required,omitempty"`
	Properties map[string]Schema `json:"properties,omitempty"`
	Items      *Schema           `json:"items,omitempty"`
	Enum       []any             `json:"enum,omitempty"`
	Minimum    *float64          `json:"minimum,omitempty"`
	Maximum    *float64          `json:"maximum,omitempty"`
}

// FieldError names one field path and the rule it violated.
type FieldError struct {
	Path    string
	Message string
}

func (e FieldError) String() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Validate checks args against schema, returning every violation found. It
// never panics on malformed input — unexpected shapes are reported as
// FieldErrors, not errors returned to the caller. Extra fields not named in
// Properties are permitted.
func Validate(schema Schema, args map[string]any) []FieldError {
	var errs []FieldError
	validateObject("", schema, args, &errs)
	return errs
}

func validateObject(path string, schema Schema, obj map[string]any, errs *[]FieldError) {
	for _, req := range schema.Required {
		if v, ok := obj[req]; !ok || v == nil {
			*errs = append(*errs, FieldError{Path: join(path, req), Message: "is required"})
		}
	}
	for name, propSchema := range schema.Properties {
		v, ok := obj[name]
		if !ok || v == nil {
			continue
		}
		validateValue(join(path, name), propSchema, v, errs)
	}
}

func validateValue(path string, schema Schema, v any, errs *[]FieldError) {
	if !typeMatches(schema.Type, v) {
		*errs = append(*errs, FieldError{Path: path, Message: fmt.Sprintf("must be of type %s", schema.Type)})
		return
	}

	if len(schema.Enum) > 0 && !enumContains(schema.Enum, v) {
		*errs = append(*errs, FieldError{Path: path, Message: "must be one of the allowed values"})
	}

	switch schema.Type {
	case "number", "integer":
		n, _ := toFloat(v)
		if schema.Minimum != nil && n < *schema.Minimum {
			*errs = append(*errs, FieldError{Path: path, Message: fmt.Sprintf("must be >= %v", *schema.Minimum)})
		}
		if schema.Maximum != nil && n > *schema.Maximum {
			*errs = append(*errs, FieldError{Path: path, Message: fmt.Sprintf("must be <= %v", *schema.Maximum)})
		}
	case "object":
		if m, ok := v.(map[string]any); ok {
			validateObject(path, schema, m, errs)
		}
	case "array":
		if schema.Items == nil {
			return
		}
		arr, ok := v.([]any)
		if !ok {
			return
		}
		for i, item := range arr {
			validateValue(fmt.Sprintf("%s[%d]", path, i), *schema.Items, item, errs)
		}
	}
}

func typeMatches(t string, v any) bool {
	switch t {
	case "", "any":
		return true
	case "string":
		_, ok := v.(string)
		return ok
	case "boolean":
		_, ok := v.(bool)
		return ok
	case "number":
		_, ok := toFloat(v)
		return ok
	case "integer":
		f, ok := toFloat(v)
		return ok && f == float64(int64(f))
	case "object":
		_, ok := v.(map[string]any)
		return ok
	case "array":
		_, ok := v.([]any)
		return ok
	default:
		return true
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func enumContains(enum []any, v any) bool {
	for _, e := range enum {
		if e == v {
			return true
		}
		if es, ok := e.(string); ok {
			if vs, ok := v.(string); ok && es == vs {
				return true
			}
		}
	}
	return false
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

// FormatErrors builds the human-readable "Validation failed" text result
// the dispatcher returns when the handler is short-circuited.
func FormatErrors(toolName string, errs []FieldError) string {
	out := fmt.Sprintf("Validation failed for %q:", toolName)
	for _, e := range errs {
		out += "\n  - " + e.String()
	}
	return out
}
