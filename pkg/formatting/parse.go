package formatting

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrParseFailed is returned when content cannot be parsed as JSON after
// markdown code fence stripping.
var ErrParseFailed = errors.New("failed to parse response")

// StripFence removes a leading ```json or ``` fence and a trailing ``` fence
// from content. Content without fences is returned trimmed.
func StripFence(content string) string {
	cleaned := strings.TrimSpace(content)

	if after, ok := strings.CutPrefix(cleaned, "```json"); ok {
		cleaned = after
	} else if after, ok := strings.CutPrefix(cleaned, "```"); ok {
		cleaned = after
	}

	if before, ok := strings.CutSuffix(cleaned, "```"); ok {
		cleaned = before
	}

	return strings.TrimSpace(cleaned)
}

// Parse strips markdown code fences from content and unmarshals the
// remainder as JSON into T. Returns ErrParseFailed wrapped with the
// original content when the result is not valid JSON.
func Parse[T any](content string) (T, error) {
	var result T

	if err := json.Unmarshal([]byte(StripFence(content)), &result); err != nil {
		return result, fmt.Errorf("%w: %s", ErrParseFailed, content)
	}

	return result, nil
}

// ExtractJSON returns the JSON object carried by content, or nil when
// content is not a JSON object after fence stripping.
func ExtractJSON(content string) map[string]any {
	obj, err := Parse[map[string]any](content)
	if err != nil {
		return nil
	}
	return obj
}
