package formatting

import (
	"fmt"
	"strings"
)

// CleanKeywords trims each keyword and removes case-insensitive duplicates,
// keeping the first occurrence. Empty entries are dropped.
func CleanKeywords(keywords []string) []string {
	cleaned := make([]string, 0, len(keywords))
	seen := make(map[string]struct{}, len(keywords))

	for _, kw := range keywords {
		trimmed := strings.TrimSpace(kw)
		if trimmed == "" {
			continue
		}

		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}

		seen[key] = struct{}{}
		cleaned = append(cleaned, trimmed)
	}

	return cleaned
}

// EnforceCount brings keywords within [lo, hi]. Short lists are padded with
// keyword_<i> placeholders where i continues from the current length; long
// lists keep their first hi entries.
func EnforceCount(keywords []string, lo, hi int) []string {
	result := make([]string, len(keywords), max(len(keywords), lo))
	copy(result, keywords)

	for i := len(result); i < lo; i++ {
		result = append(result, fmt.Sprintf("keyword_%d", i))
	}

	if hi > 0 && len(result) > hi {
		result = result[:hi]
	}

	return result
}

// WithinCount reports whether the keyword count lies in [lo, hi].
func WithinCount(keywords []string, lo, hi int) bool {
	return len(keywords) >= lo && len(keywords) <= hi
}
