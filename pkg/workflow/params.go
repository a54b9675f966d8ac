package workflow

import "reflect"

var emptyWrapperKeys = map[string]bool{
	"options":          true,
	"additionalFields": true,
}

var sentinelEmptyStrings = map[string]bool{
	"none": true,
	"off":  true,
}

// CleanParams recursively walks a parameter tree, dropping keys whose value
// is null, empty string, empty array, empty object, one of the sentinel
// strings "none"/"off", or one of the conventionally-empty wrapper keys
// ("options", "additionalFields") once its own contents are empty. Arrays
// are preserved as-is; only nested objects are recursed into. A seen-set of
// map pointers guards against reference cycles.
func CleanParams(params map[string]any) map[string]any {
	return cleanParams(params, map[uintptr]bool{})
}

func cleanParams(params map[string]any, seen map[uintptr]bool) map[string]any {
	if params == nil {
		return nil
	}

	ptr := reflect.ValueOf(params).Pointer()
	if seen[ptr] {
		return nil
	}
	seen[ptr] = true

	out := make(map[string]any, len(params))
	for k, v := range params {
		cleaned, keep := cleanValue(k, v, seen)
		if keep {
			out[k] = cleaned
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func cleanValue(key string, v any, seen map[uintptr]bool) (any, bool) {
	switch val := v.(type) {
	case nil:
		return nil, false
	case string:
		if val == "" || sentinelEmptyStrings[val] {
			return nil, false
		}
		return val, true
	case []any:
		if len(val) == 0 {
			return nil, false
		}
		return val, true
	case map[string]any:
		cleaned := cleanParams(val, seen)
		if len(cleaned) == 0 {
			if emptyWrapperKeys[key] {
				return nil, false
			}
			// non-wrapper nested object that became empty is still dropped:
			// an object with nothing left to show the agent carries no signal.
			return nil, false
		}
		return cleaned, true
	default:
		return val, true
	}
}

// minStableTypeVersion lists, per short node type, the lowest type-version
// whose parameter format this server was validated against. Falling back
// below this on write risks the engine misinterpreting an old-format
// parameter shape.
var minStableTypeVersion = map[string]float64{
	"set":    3,
	"if":     2,
	"switch": 3,
}

// ResolveTypeVersion implements the write-time defaulting order: explicit
// value on the lite node, then the original raw node's version (when
// updating an existing node), then the type's minimum stable version, then 1.
func ResolveTypeVersion(lite LiteNode, original *RawNode) float64 {
	if lite.TypeVersion != 0 {
		return lite.TypeVersion
	}
	if original != nil && original.TypeVersion != 0 {
		return original.TypeVersion
	}
	if v, ok := minStableTypeVersion[lite.Type]; ok {
		return v
	}
	return 1
}
