package focus

import "github.com/LunkiBR/n8n-mcp-lite/pkg/workflow"

// OutputHint is a best-effort "what does this emit" description for a
// dormant upstream node, attached when the node's type allows.
func OutputHint(n workflow.LiteNode) string {
	switch n.Type {
	case "set":
		names := setFieldNames(n.Parameters)
		if len(names) == 0 {
			return ""
		}
		out := "writes: "
		for i, name := range names {
			if i > 0 {
				out += ", "
			}
			out += name
		}
		return out
	case "code", "function", "functionItem":
		code, ok := paramString(n.Parameters, "jsCode")
		if !ok {
			code, ok = paramString(n.Parameters, "pythonCode")
		}
		if !ok {
			return ""
		}
		if idx := indexOfReturn(code); idx >= 0 {
			return "returns: " + truncate(code[idx:], 80)
		}
		return ""
	case "httpRequest":
		url, ok := paramString(n.Parameters, "url")
		if !ok || url == "" || containsExpression(url) {
			return ""
		}
		return "calls: " + truncate(url, 80)
	case "postgres", "mysql", "mssql":
		q, ok := paramString(n.Parameters, "query")
		if !ok {
			return ""
		}
		return "query: " + truncate(firstLine(q), 80)
	case "googleSheets":
		sheet, _ := paramString(n.Parameters, "sheetName")
		rng, _ := paramString(n.Parameters, "range")
		if sheet == "" && rng == "" {
			return ""
		}
		return "sheet " + sheet + " range " + rng
	case "executeWorkflow":
		id, ok := paramString(n.Parameters, "workflowId")
		if !ok {
			return ""
		}
		return "invokes sub-workflow: " + id
	default:
		return ""
	}
}

func indexOfReturn(code string) int {
	for i := 0; i+6 < len(code); i++ {
		if code[i:i+6] == "return" {
			return i
		}
	}
	return -1
}

func firstLine(s string) string {
	for i, c := range s {
		if c == '\n' {
			return s[:i]
		}
	}
	return s
}

func containsExpression(s string) bool {
	for i := 0; i+1 < len(s); i++ {
		if s[i] == '{' && s[i+1] == '{' {
			return true
		}
	}
	return false
}
