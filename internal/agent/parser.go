package agent

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
)

// CleanCodeFences strips surrounding markdown code fences from model
// output. The prompts forbid fences but models add them anyway.
func CleanCodeFences(s string) string {
	cleaned := strings.TrimSpace(s)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}

	cleaned = strings.TrimPrefix(cleaned, "```")
	if idx := strings.Index(cleaned, "\n"); idx >= 0 {
		// Drop a language tag like "json" on the fence line.
		first := strings.TrimSpace(cleaned[:idx])
		if len(first) <= 10 && !strings.ContainsAny(first, "{}[]") {
			cleaned = cleaned[idx+1:]
		}
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	return strings.TrimSpace(cleaned)
}

// extractJSONObject cuts the outermost JSON object out of model output
// that wraps it in prose.
func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return s
	}
	return s[start : end+1]
}

// ParseJSON decodes a model response into T, tolerating fences and
// surrounding prose.
func ParseJSON[T any](content string) (*T, error) {
	cleaned := extractJSONObject(CleanCodeFences(content))

	var out T
	if err := sonic.UnmarshalString(cleaned, &out); err != nil {
		return nil, fmt.Errorf("parsing model JSON output: %w", err)
	}
	return &out, nil
}
