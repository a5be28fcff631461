package mysql

import (
	"encoding/json"
	"strings"

	"github.com/bryanwahyu/brandlens/internal/domain/issues"
)

// stringOrDash returns "-" when the input is empty/whitespace
func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// marshalIssues serializes the ordered issue list for the issues_json column.
// The column requires valid JSON; an empty list stores "[]".
func marshalIssues(list []issues.Issue) string {
	if len(list) == 0 {
		return "[]"
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// unmarshalIssues restores the ordered issue list from the issues_json column
func unmarshalIssues(raw string) []issues.Issue {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var list []issues.Issue
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil
	}
	return list
}

// escapeLikePattern escapes special characters in LIKE patterns to prevent SQL injection
func escapeLikePattern(s string) string {
	// Escape backslash first, then other LIKE special characters
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
