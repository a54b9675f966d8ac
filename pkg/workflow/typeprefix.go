package workflow

import "strings"

const (
	baseNodePrefix  = "n8n-nodes-base."
	langchainPrefix = "@n8n/n8n-nodes-langchain."
	langchainSigil  = "langchain:"
)

// CompressType strips the base-node or AI-library prefix from a full node
// type, producing the short form stored on a LiteNode. Types that carry
// neither recognised prefix are returned unchanged.
func CompressType(fullType string) string {
	switch {
	case strings.HasPrefix(fullType, baseNodePrefix):
		return strings.TrimPrefix(fullType, baseNodePrefix)
	case strings.HasPrefix(fullType, langchainPrefix):
		return langchainSigil + strings.TrimPrefix(fullType, langchainPrefix)
	default:
		return fullType
	}
}

// ExpandType restores a short type to its fully-qualified form. A type that
// already looks fully qualified (contains a dot, or starts with the
// library's "@" sigil) is left alone, so expanding an already-expanded type
// is the identity.
func ExpandType(shortType string) string {
	switch {
	case strings.HasPrefix(shortType, langchainSigil):
		return langchainPrefix + strings.TrimPrefix(shortType, langchainSigil)
	case strings.Contains(shortType, ".") || strings.HasPrefix(shortType, "@"):
		return shortType
	default:
		return baseNodePrefix + shortType
	}
}
