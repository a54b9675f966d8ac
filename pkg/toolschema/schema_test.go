package toolschema

import "testing"

func TestValidateRequiredMissing(t *testing.T) {
	schema := Schema{
		Type:     "object",
		Required: []string{"workflowId"},
		Properties: map[string]Schema{
			"workflowId": {Type: "string"},
		},
	}
	errs := Validate(schema, map[string]any{})
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %+v", len(errs), errs)
	}
}

func TestValidateExtraFieldsPermitted(t *testing.T) {
	schema := Schema{Properties: map[string]Schema{"a": {Type: "string"}}}
	errs := Validate(schema, map[string]any{"a": "x", "_meta": "extra"})
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %+v", errs)
	}
}

func TestValidateTypeMismatch(t *testing.T) {
	schema := Schema{Properties: map[string]Schema{"count": {Type: "integer"}}}
	errs := Validate(schema, map[string]any{"count": "not a number"})
	if len(errs) != 1 {
		t.Fatalf("expected type error, got %+v", errs)
	}
}

func TestValidateMinMax(t *testing.T) {
	min := 1.0
	max := 10.0
	schema := Schema{Properties: map[string]Schema{"n": {Type: "number", Minimum: &min, Maximum: &max}}}
	errs := Validate(schema, map[string]any{"n": 20.0})
	if len(errs) != 1 {
		t.Fatalf("expected range error, got %+v", errs)
	}
}
