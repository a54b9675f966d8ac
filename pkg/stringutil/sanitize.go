// Package stringutil sanitizes free-text error and log messages before
// they reach an audience outside the process (stderr, the approval audit
// log, or an MCP client's result text).
package stringutil

import (
	"regexp"

	"github.com/LunkiBR/n8n-mcp-lite/pkg/logger"
)

var sanitizeLog = logger.New("stringutil:sanitize")

// Regex patterns for detecting potential secret key names
var (
	// Match uppercase snake_case identifiers that look like secret names (e.g., MY_SECRET_KEY, N8N_API_KEY)
	// Excludes common workflow-graph keywords
	secretNamePattern = regexp.MustCompile(`\b([A-Z][A-Z0-9]*_[A-Z0-9_]+)\b`)

	// Match PascalCase identifiers ending with security-related suffixes (e.g., OAuthToken, ApiKey, DeploySecret)
	pascalCaseSecretPattern = regexp.MustCompile(`\b([A-Z][a-z0-9]*(?:[A-Z][a-z0-9]*)*(?:Token|Key|Secret|Password|Credential|Auth))\b`)

	// Common non-sensitive identifiers that recur in workflow graphs and
	// engine responses and would otherwise look like secret names.
	commonWorkflowKeywords = map[string]bool{
		"WORKFLOW":    true,
		"NODE":        true,
		"NODES":       true,
		"TRIGGER":     true,
		"EXECUTION":   true,
		"EXECUTIONS":  true,
		"CONNECTION":  true,
		"CONNECTIONS": true,
		"PARAMETER":   true,
		"PARAMETERS":  true,
		"ACTIVE":      true,
		"TAGS":        true,
		"WEBHOOK":     true,
		"STATIC_DATA": true,
		"PATH":        true,
		"HOME":        true,
	}
)

// SanitizeErrorMessage removes potential secret/credential key names from
// error and log messages before they reach stderr or the approval audit
// log, so that a misconfigured node's credential reference does not leak
// the shape of an organization's secret names through mediator output.
func SanitizeErrorMessage(message string) string {
	if message == "" {
		return message
	}

	sanitizeLog.Printf("sanitizing message: length=%d", len(message))

	sanitized := secretNamePattern.ReplaceAllStringFunc(message, func(match string) string {
		if commonWorkflowKeywords[match] {
			return match
		}
		sanitizeLog.Printf("redacted snake_case secret pattern: %s", match)
		return "[REDACTED]"
	})

	sanitized = pascalCaseSecretPattern.ReplaceAllString(sanitized, "[REDACTED]")

	if sanitized != message {
		sanitizeLog.Print("message sanitization applied redactions")
	}

	return sanitized
}
