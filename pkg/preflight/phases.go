package preflight

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/LunkiBR/n8n-mcp-lite/pkg/workflow"
)

const maxExpressionDepth = 50

// phase1ConfigValidation looks up each node's type in lookup. Unknown
// types get one advisory warning and are otherwise skipped. Known types
// are validated via the compiled JSON schema (required/enum/resource-
// operation) plus manual node-specific best-practice and security checks
// that do not fit a declarative schema.
func phase1ConfigValidation(nodes []workflow.LiteNode, lookup Lookup, r *Result) {
	for _, n := range nodes {
		ns, ok := lookup.NodeSchema(n.Type)
		if !ok {
			r.addWarning(Finding{
				NodeName: n.Name,
				Type:     "unknown_node_type",
				Message:  fmt.Sprintf("node type %q is not in the knowledge index; config was not validated", n.Type),
			})
			continue
		}

		params := n.Parameters
		if params == nil {
			params = map[string]any{}
		}

		schema, err := compiledSchemaFor(ns)
		if err != nil {
			r.addWarning(Finding{
				NodeName: n.Name,
				Type:     "schema_compile_error",
				Message:  fmt.Sprintf("could not compile schema for %q: %v", n.Type, err),
			})
			continue
		}

		if err := schema.Validate(params); err != nil {
			translateSchemaError(n.Name, err, r)
		}

		checkNonEmptyRequired(n, ns, params, r)
		nodeSpecificChecks(n, params, r)
		checkTypeMismatch(n, ns, params, r)
	}
}

// translateSchemaError converts the jsonschema library's validation error
// into one invalid_config Finding carrying the library's message with its
// leading location prefix stripped. No field path is extracted; Field is
// left empty.
func translateSchemaError(nodeName string, err error, r *Result) {
	msg := err.Error()
	if idx := strings.Index(msg, ": "); idx != -1 {
		msg = msg[idx+2:]
	}
	r.addError(Finding{
		NodeName: nodeName,
		Type:     "invalid_config",
		Message:  msg,
		Hint:     "check required properties, enum values, and resource/operation pairing for this node type",
	})
}

func checkNonEmptyRequired(n workflow.LiteNode, ns NodeSchema, params map[string]any, r *Result) {
	for _, req := range ns.Required {
		if !showSatisfied(req.Show, params) {
			continue
		}
		v, ok := lookupPath(params, req.Path)
		if !ok || isEmptyValue(v) {
			r.addError(Finding{
				NodeName: n.Name,
				Field:    req.Path,
				Type:     "missing_required",
				Message:  fmt.Sprintf("%q is required and must be non-empty", req.Path),
			})
		}
	}
}

func showSatisfied(show map[string][]string, params map[string]any) bool {
	for prop, permitted := range show {
		v, ok := lookupPath(params, prop)
		if !ok {
			return false
		}
		s, ok := v.(string)
		if !ok {
			return false
		}
		if !stringInSlice(s, permitted) {
			return false
		}
	}
	return true
}

func stringInSlice(s string, list []string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case string:
		return t == ""
	case nil:
		return true
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}

func lookupPath(params map[string]any, path string) (any, bool) {
	parts := strings.Split(path, ".")
	var cur any = params
	for _, p := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

var (
	httpMethodsWithBody = map[string]bool{"POST": true, "PUT": true, "PATCH": true}
	sqlDeleteNoWhere    = regexp.MustCompile(`(?i)\bDELETE\s+FROM\s+\S+\s*(;|$)`)
	sqlDropStatement    = regexp.MustCompile(`(?i)\bDROP\s+(TABLE|DATABASE|SCHEMA)\b`)
	sqlExpressionInQuery = regexp.MustCompile(`\{\{`)
	codeDangerousCall   = regexp.MustCompile(`\b(eval|exec)\s*\(`)
)

func nodeSpecificChecks(n workflow.LiteNode, params map[string]any, r *Result) {
	switch {
	case strings.Contains(n.Type, "httpRequest") || strings.Contains(strings.ToLower(n.Type), "http"):
		checkHTTPNode(n, params, r)
	case isSQLNode(n.Type):
		checkSQLNode(n, params, r)
	case strings.Contains(strings.ToLower(n.Type), "code") || strings.Contains(strings.ToLower(n.Type), "function"):
		checkCodeNode(n, params, r)
	}

}

func isSQLNode(nodeType string) bool {
	t := strings.ToLower(nodeType)
	return strings.Contains(t, "postgres") || strings.Contains(t, "mysql") || strings.Contains(t, "mssql") || strings.Contains(t, "sqlite")
}

func checkHTTPNode(n workflow.LiteNode, params map[string]any, r *Result) {
	if url, ok := lookupPath(params, "url"); ok {
		if s, ok := url.(string); ok && s != "" && !strings.HasPrefix(s, "=") {
			if !strings.Contains(s, "://") {
				r.addWarning(Finding{NodeName: n.Name, Field: "url", Type: "best_practice", Message: "URL has no protocol scheme (http:// or https://)"})
			}
		}
	}

	method, _ := lookupPath(params, "method")
	methodStr, _ := method.(string)
	if httpMethodsWithBody[strings.ToUpper(methodStr)] {
		if _, hasBody := lookupPath(params, "sendBody"); !hasBody {
			if _, hasBodyParams := lookupPath(params, "bodyParameters"); !hasBodyParams {
				r.addWarning(Finding{NodeName: n.Name, Field: "method", Type: "best_practice", Message: fmt.Sprintf("%s request has no body configuration", methodStr)})
			}
		}
	}
}

func checkSQLNode(n workflow.LiteNode, params map[string]any, r *Result) {
	query, ok := lookupPath(params, "query")
	if !ok {
		return
	}
	s, ok := query.(string)
	if !ok || s == "" {
		return
	}

	if sqlExpressionInQuery.MatchString(s) {
		r.addWarning(Finding{NodeName: n.Name, Field: "query", Type: "security", Message: "query contains a template expression; prefer parameterized queries to avoid injection"})
	}
	if sqlDeleteNoWhere.MatchString(s) {
		r.addWarning(Finding{NodeName: n.Name, Field: "query", Type: "security", Message: "DELETE statement has no WHERE clause"})
	}
	if sqlDropStatement.MatchString(s) {
		r.addWarning(Finding{NodeName: n.Name, Field: "query", Type: "security", Message: "query contains a DROP statement"})
	}
}

func checkCodeNode(n workflow.LiteNode, params map[string]any, r *Result) {
	for _, field := range []string{"jsCode", "pythonCode", "code"} {
		v, ok := lookupPath(params, field)
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		if codeDangerousCall.MatchString(s) {
			r.addWarning(Finding{NodeName: n.Name, Field: field, Type: "security", Message: "code contains eval( or exec(; review for injection risk"})
		}
	}
}

// checkTypeMismatch flags a literal value whose Go kind does not match
// the node type's declared property kind. Expression values are exempt:
// their runtime kind is only known to the engine, not to us.
func checkTypeMismatch(n workflow.LiteNode, ns NodeSchema, params map[string]any, r *Result) {
	for path, declared := range ns.PropertyTypes {
		v, ok := lookupPath(params, path)
		if !ok || v == nil {
			continue
		}
		if s, ok := v.(string); ok && strings.HasPrefix(s, "=") {
			continue
		}
		if kindMatches(declared, v) {
			continue
		}
		r.addWarning(Finding{
			NodeName: n.Name, Field: path, Type: "type_mismatch",
			Message: fmt.Sprintf("%q is declared as %s but holds a different kind of value", path, declared),
		})
	}
}

func kindMatches(declared string, v any) bool {
	switch declared {
	case "string":
		_, ok := v.(string)
		return ok
	case "boolean":
		_, ok := v.(bool)
		return ok
	case "number":
		switch v.(type) {
		case float64, int, int64:
			return true
		default:
			return false
		}
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

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

// phase2ExpressionValidation recursively walks every string value in every
// node's parameters, depth-capped at 50 with cycle protection via the
// walk's own structural recursion (maps/slices in decoded JSON cannot
// cycle).
func phase2ExpressionValidation(nodes []workflow.LiteNode, r *Result) {
	for _, n := range nodes {
		walkStringsDepth(n.Parameters, "", 0, func(path, s string) {
			validateExpressionString(n.Name, path, s, r)
		})
	}
}

func walkStringsDepth(v any, path string, depth int, fn func(path, s string)) {
	if depth > maxExpressionDepth {
		return
	}
	switch t := v.(type) {
	case string:
		fn(path, t)
	case map[string]any:
		for k, val := range t {
			walkStringsDepth(val, joinPath(path, k), depth+1, fn)
		}
	case []any:
		for i, val := range t {
			walkStringsDepth(val, fmt.Sprintf("%s[%d]", path, i), depth+1, fn)
		}
	}
}

func validateExpressionString(nodeName, path, s string, r *Result) {
	hasOpen := strings.Contains(s, "{{")
	hasClose := strings.Contains(s, "}}")

	if hasOpen && hasClose && !strings.HasPrefix(s, "=") {
		r.addError(Finding{
			NodeName: nodeName, Field: path, Type: "invalid_expression",
			Message: "expression braces found but value does not start with \"=\"; the engine would treat this as literal text",
			Hint:    "prefix the value with \"=\"",
		})
		return
	}

	if !strings.HasPrefix(s, "=") {
		return
	}

	if hasOpen != hasClose {
		r.addError(Finding{NodeName: nodeName, Field: path, Type: "invalid_expression", Message: "unmatched expression braces"})
		return
	}

	if strings.Contains(s, "{{}}") || strings.Contains(s, "{{ }}") {
		r.addError(Finding{NodeName: nodeName, Field: path, Type: "invalid_expression", Message: "empty expression block"})
	}

	if idx := strings.Index(s, "{{"); idx != -1 {
		rest := s[idx+2:]
		if end := strings.Index(rest, "}}"); end != -1 {
			inner := rest[:end]
			if strings.Contains(inner, "{{") {
				r.addError(Finding{NodeName: nodeName, Field: path, Type: "invalid_expression", Message: "nested expression braces are not permitted"})
			}
			if strings.Contains(inner, "?.") {
				r.addWarning(Finding{NodeName: nodeName, Field: path, Type: "expression_hint", Message: "optional-chaining operator \"?.\" inside an expression may not behave as expected"})
			}
		}
	}

	if strings.Contains(s, "${") && !hasOpen {
		r.addWarning(Finding{NodeName: nodeName, Field: path, Type: "expression_hint", Message: "template-literal syntax \"${...}\" found outside expression braces"})
	}
}

var credentialPatterns = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"generic api key", regexp.MustCompile(`(?i)api[_-]?key\s*[:=]\s*\S+`)},
	{"generic password", regexp.MustCompile(`(?i)password\s*[:=]\s*\S+`)},
	{"generic secret", regexp.MustCompile(`(?i)secret\s*[:=]\s*\S+`)},
	{"generic token", regexp.MustCompile(`(?i)token\s*[:=]\s*\S+`)},
	{"bearer header", regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9\-._~+/]+=*`)},
	{"AI provider key", regexp.MustCompile(`\bsk-[A-Za-z0-9]{16,}`)},
	{"source-host PAT", regexp.MustCompile(`\bgh[po]_[A-Za-z0-9]{20,}`)},
	{"chat-platform token", regexp.MustCompile(`\bxo[bp]-[A-Za-z0-9-]{10,}`)},
	{"cloud access key", regexp.MustCompile(`\bAKIA[0-9A-Z]{16}`)},
	{"PEM private key", regexp.MustCompile(`-----BEGIN (RSA |EC |OPENSSH )?PRIVATE KEY-----`)},
	{"database connection string", regexp.MustCompile(`(?i)\b(postgres|mysql|mongodb)://[^:\s]+:[^@\s]+@`)},
}

// phase3CredentialScan recursively inspects every string value longer than
// 8 characters (skipping expression values) for patterns resembling
// embedded credentials.
func phase3CredentialScan(nodes []workflow.LiteNode, r *Result) {
	for _, n := range nodes {
		walkStringsDepth(n.Parameters, "", 0, func(path, s string) {
			if len(s) <= 8 || strings.HasPrefix(s, "=") {
				return
			}
			for _, cp := range credentialPatterns {
				if cp.pattern.MatchString(s) {
					r.addWarning(Finding{
						NodeName: n.Name, Field: path, Type: "credential-exposure",
						Message: fmt.Sprintf("value resembles a %s; move secrets to the credential manager", cp.name),
					})
				}
			}
		})
	}
}

// phase4StructuralChecks verifies every connection endpoint names a known
// node, and flags isolated non-trigger nodes.
func phase4StructuralChecks(nodes []workflow.LiteNode, connections []workflow.LiteConnection, isTrigger func(nodeType string) bool, r *Result) {
	known := make(map[string]workflow.LiteNode, len(nodes))
	for _, n := range nodes {
		known[n.Name] = n
	}

	hasIncoming := map[string]bool{}
	hasOutgoing := map[string]bool{}
	for _, c := range connections {
		if _, ok := known[c.Source]; !ok {
			r.addError(Finding{Type: "unknown_connection_source", Message: fmt.Sprintf("connection source %q is not a known node", c.Source)})
		} else {
			hasOutgoing[c.Source] = true
		}
		if _, ok := known[c.Target]; !ok {
			r.addError(Finding{Type: "unknown_connection_target", Message: fmt.Sprintf("connection target %q is not a known node", c.Target)})
		} else {
			hasIncoming[c.Target] = true
		}
	}

	if len(nodes) <= 1 {
		return
	}
	for _, n := range nodes {
		if hasIncoming[n.Name] || hasOutgoing[n.Name] {
			continue
		}
		if isTrigger != nil && isTrigger(n.Type) {
			continue
		}
		r.addWarning(Finding{NodeName: n.Name, Type: "isolated_node", Message: "node has no incoming or outgoing connections"})
	}
}

// phase5WorkflowLevel enforces workflow-wide invariants: node names must
// be unique.
func phase5WorkflowLevel(nodes []workflow.LiteNode, r *Result) {
	seen := map[string]bool{}
	for _, n := range nodes {
		if seen[n.Name] {
			r.addError(Finding{NodeName: n.Name, Type: "duplicate_node_name", Message: fmt.Sprintf("node name %q is used more than once", n.Name)})
			continue
		}
		seen[n.Name] = true
	}
}
