package issues

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Analysis is the parsed output of one AI review run
type Analysis struct {
	AssetURL string         `json:"asset_url,omitempty"`
	Counts   SeverityCounts `json:"counts"`
	Issues   []Issue        `json:"issues"`
	Summary  string         `json:"summary,omitempty"`
}

// rawAnalysis mirrors the JSON schema the prompt demands from the model
type rawAnalysis struct {
	AssetURL string `json:"asset_url"`
	Counts   struct {
		High   int `json:"high"`
		Medium int `json:"medium"`
		Low    int `json:"low"`
		Total  int `json:"total"`
	} `json:"counts"`
	Issues []struct {
		ID          string       `json:"id"`
		Category    string       `json:"category"`
		Severity    string       `json:"severity"`
		Description string       `json:"description"`
		Remediation string       `json:"remediation"`
		Box         *BoundingBox `json:"box"`
		Page        *int         `json:"page"`
		Timestamp   *float64     `json:"timestamp"`
	} `json:"issues"`
	Summary string `json:"summary"`
}

// ParseAnalysis decodes the AI JSON output into an Analysis.
// The parse is lenient: missing ids get stable fallbacks, severities are
// normalized, malformed anchors (page < 1, timestamp < 0) are dropped to nil,
// and counts are recomputed from the issues actually kept. Issue order is
// preserved as received since it defines the badge numbering.
func ParseAnalysis(raw string) (*Analysis, error) {
	var doc rawAnalysis
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("decode analysis json: %w", err)
	}

	out := &Analysis{
		AssetURL: doc.AssetURL,
		Summary:  strings.TrimSpace(doc.Summary),
		Issues:   make([]Issue, 0, len(doc.Issues)),
	}

	seen := make(map[IssueID]bool, len(doc.Issues))
	for n, ri := range doc.Issues {
		id := IssueID(strings.TrimSpace(ri.ID))
		if id == "" || seen[id] {
			// ids must be unique within a result set
			id = IssueID(fmt.Sprintf("issue-%d", n+1))
		}
		seen[id] = true

		it := Issue{
			ID:          id,
			Category:    strings.TrimSpace(ri.Category),
			Severity:    normalizeSeverity(ri.Severity),
			Description: strings.TrimSpace(ri.Description),
			Remediation: strings.TrimSpace(ri.Remediation),
			Box:         ri.Box,
		}
		if ri.Page != nil && *ri.Page >= 1 {
			it.Page = ri.Page
		}
		if ri.Timestamp != nil && *ri.Timestamp >= 0 {
			it.Timestamp = ri.Timestamp
		}
		out.Issues = append(out.Issues, it)
	}

	// model counts are advisory only; recompute
	out.Counts = Count(out.Issues)
	return out, nil
}

func normalizeSeverity(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "critical":
		return SeverityHigh
	case "medium", "moderate":
		return SeverityMedium
	default:
		return SeverityLow
	}
}
