// Package focus builds the scan, focus, and expand-focus views: one-line
// node summaries, ghost-payload execution-trace hints, and the full
// focused/dormant partitioning of a workflow.
package focus

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/LunkiBR/n8n-mcp-lite/pkg/workflow"
)

const maxSummaryLen = 100

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func clampSummary(s string) string {
	s = strings.ReplaceAll(s, "undefined", "value")
	if len([]rune(s)) > maxSummaryLen {
		s = truncate(s, maxSummaryLen)
	}
	return s
}

func paramString(params map[string]any, path ...string) (string, bool) {
	cur := any(params)
	for _, p := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return "", false
		}
		cur, ok = m[p]
		if !ok {
			return "", false
		}
	}
	s, ok := cur.(string)
	return s, ok
}

var humanizeCamel = regexp.MustCompile(`([a-z0-9])([A-Z])`)

func humanizeType(shortType string) string {
	t := shortType
	if i := strings.LastIndex(t, "."); i >= 0 {
		t = t[i+1:]
	}
	spaced := humanizeCamel.ReplaceAllString(t, "$1 $2")
	if spaced == "" {
		return shortType
	}
	r := []rune(spaced)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// Summarize produces a one-line, <=100-char human preview of a node, never
// containing the literal text "undefined".
func Summarize(n workflow.LiteNode) string {
	switch n.Type {
	case "httpRequest":
		return clampSummary(summarizeHTTP(n))
	case "code", "function", "functionItem":
		return clampSummary(summarizeCode(n))
	case "if":
		return clampSummary(summarizeIf(n))
	case "switch":
		return clampSummary(summarizeSwitch(n))
	case "langchain:agent":
		return clampSummary(summarizeAgent(n))
	case "langchain:lmChatOpenAi", "langchain:lmChatAnthropic", "langchain:lmChatGoogleGemini":
		return clampSummary(summarizeChatModel(n))
	case "webhook":
		return clampSummary(summarizeWebhook(n))
	case "set":
		return clampSummary(summarizeSet(n))
	default:
		return clampSummary(humanizeType(n.Type))
	}
}

func summarizeHTTP(n workflow.LiteNode) string {
	method, _ := paramString(n.Parameters, "method")
	if method == "" {
		method = "GET"
	}
	url, _ := paramString(n.Parameters, "url")
	if url == "" {
		return method
	}
	return method + " " + truncate(url, 80)
}

func isBlankOrComment(line string) bool {
	t := strings.TrimSpace(line)
	if t == "" {
		return true
	}
	if strings.HasPrefix(t, "//") || strings.HasPrefix(t, "/*") || strings.HasPrefix(t, "*") {
		return true
	}
	if strings.HasPrefix(t, "import ") || strings.HasPrefix(t, "require(") || strings.HasPrefix(t, "require ") {
		return true
	}
	return false
}

func summarizeCode(n workflow.LiteNode) string {
	lang, _ := paramString(n.Parameters, "language")
	code, ok := paramString(n.Parameters, "jsCode")
	if !ok {
		code, ok = paramString(n.Parameters, "pythonCode")
	}
	prefix := "code"
	if lang != "" {
		prefix = lang
	}
	if !ok || code == "" {
		return prefix + ": comment-only code"
	}
	for _, line := range strings.Split(code, "\n") {
		if !isBlankOrComment(line) {
			return prefix + ": " + strings.TrimSpace(line)
		}
	}
	return prefix + ": comment-only code"
}

func summarizeIf(n workflow.LiteNode) string {
	// format-2: conditions.conditions[0].leftValue/operator.operation/rightValue
	if conds, ok := n.Parameters["conditions"].(map[string]any); ok {
		if list, ok := conds["conditions"].([]any); ok && len(list) > 0 {
			if first, ok := list[0].(map[string]any); ok {
				left, _ := first["leftValue"].(string)
				right, _ := first["rightValue"].(string)
				opName := "equals"
				if opMap, ok := first["operator"].(map[string]any); ok {
					if name, ok := opMap["operation"].(string); ok && name != "" {
						opName = name
					}
				}
				return left + " " + opName + " " + right
			}
		}
	}
	// format-1: legacy conditions.string[0].value1/operation/value2
	if strs, ok := n.Parameters["conditions"].(map[string]any); ok {
		if list, ok := strs["string"].([]any); ok && len(list) > 0 {
			if first, ok := list[0].(map[string]any); ok {
				v1, _ := first["value1"].(string)
				v2, _ := first["value2"].(string)
				op, _ := first["operation"].(string)
				if op == "" {
					op = "equal"
				}
				return v1 + " " + op + " " + v2
			}
		}
	}
	return "condition check"
}

func summarizeSwitch(n workflow.LiteNode) string {
	var labels []string
	if rules, ok := n.Parameters["rules"].(map[string]any); ok {
		if values, ok := rules["values"].([]any); ok {
			for _, v := range values {
				if m, ok := v.(map[string]any); ok {
					if out, ok := m["outputKey"].(string); ok && out != "" {
						labels = append(labels, out)
					} else if cond, ok := m["conditions"]; ok {
						_ = cond
						labels = append(labels, "rule")
					}
				}
				if len(labels) >= 3 {
					break
				}
			}
		}
	}
	if len(labels) == 0 {
		return "no rules / expression mode"
	}
	return "rules: " + strings.Join(labels, ", ")
}

func summarizeAgent(n workflow.LiteNode) string {
	prompt, ok := paramString(n.Parameters, "options", "systemMessage")
	if !ok {
		prompt, ok = paramString(n.Parameters, "systemMessage")
	}
	if !ok || prompt == "" {
		return "AI agent"
	}
	firstLine := strings.TrimSpace(strings.SplitN(prompt, "\n", 2)[0])
	return truncate(firstLine, 90)
}

func summarizeChatModel(n workflow.LiteNode) string {
	model, ok := paramString(n.Parameters, "model")
	if !ok {
		if m, ok := n.Parameters["model"].(map[string]any); ok {
			if v, ok := m["value"].(string); ok {
				model = v
			}
		}
	}
	if model == "" {
		return "chat model"
	}
	return model
}

func summarizeWebhook(n workflow.LiteNode) string {
	method, _ := paramString(n.Parameters, "httpMethod")
	if method == "" {
		method = "GET"
	}
	path, _ := paramString(n.Parameters, "path")
	return method + " /" + strings.TrimPrefix(path, "/")
}

func summarizeSet(n workflow.LiteNode) string {
	names := setFieldNames(n.Parameters)
	if len(names) == 0 {
		return "set values"
	}
	shown := names
	more := 0
	if len(shown) > 5 {
		shown = names[:5]
		more = len(names) - 5
	}
	out := strings.Join(shown, ", ")
	if more > 0 {
		out += ", +" + itoa(more) + " more"
	}
	return out
}

func setFieldNames(params map[string]any) []string {
	var names []string
	if v, ok := params["values"].(map[string]any); ok {
		if list, ok := v["values"].([]any); ok {
			for _, item := range list {
				if m, ok := item.(map[string]any); ok {
					if name, ok := m["name"].(string); ok {
						names = append(names, name)
					}
				}
			}
		}
	}
	if a, ok := params["assignments"].(map[string]any); ok {
		if list, ok := a["assignments"].([]any); ok {
			for _, item := range list {
				if m, ok := item.(map[string]any); ok {
					if name, ok := m["name"].(string); ok {
						names = append(names, name)
					}
				}
			}
		}
	}
	return names
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var digits []byte
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	if neg {
		return "-" + string(digits)
	}
	return string(digits)
}
