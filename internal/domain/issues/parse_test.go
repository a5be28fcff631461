package issues

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnalysis_FullDocument(t *testing.T) {
	raw := `{
		"asset_url": "https://cdn.example.com/banner.png",
		"counts": {"high": 9, "medium": 9, "low": 9, "total": 99},
		"issues": [
			{"id": "iss-1", "category": "brand", "severity": "high",
			 "description": "logo stretched", "remediation": "use the master asset",
			 "box": {"x": 10, "y": 20, "width": 30, "height": 5}},
			{"id": "iss-2", "category": "legal", "severity": "medium",
			 "description": "missing disclaimer", "page": 2}
		],
		"summary": "two findings"
	}`

	got, err := ParseAnalysis(raw)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/banner.png", got.AssetURL)
	assert.Equal(t, "two findings", got.Summary)
	require.Len(t, got.Issues, 2)

	first := got.Issues[0]
	assert.Equal(t, IssueID("iss-1"), first.ID)
	assert.Equal(t, SeverityHigh, first.Severity)
	require.NotNil(t, first.Box)
	assert.InDelta(t, 25.0, first.Box.CenterX(), 1e-9)

	second := got.Issues[1]
	assert.Nil(t, second.Box)
	require.NotNil(t, second.Page)
	assert.Equal(t, 2, *second.Page)

	// model counts are ignored and recomputed from the issues kept
	assert.Equal(t, SeverityCounts{High: 1, Medium: 1, Low: 0, Total: 2}, got.Counts)
}

func TestParseAnalysis_FallbackIDs(t *testing.T) {
	raw := `{"issues": [
		{"severity": "low", "description": "a"},
		{"id": "dup", "severity": "low", "description": "b"},
		{"id": "dup", "severity": "low", "description": "c"},
		{"id": "  ", "severity": "low", "description": "d"}
	]}`

	got, err := ParseAnalysis(raw)
	require.NoError(t, err)
	require.Len(t, got.Issues, 4)
	assert.Equal(t, IssueID("issue-1"), got.Issues[0].ID)
	assert.Equal(t, IssueID("dup"), got.Issues[1].ID)
	assert.Equal(t, IssueID("issue-3"), got.Issues[2].ID)
	assert.Equal(t, IssueID("issue-4"), got.Issues[3].ID)
}

func TestParseAnalysis_SeverityNormalization(t *testing.T) {
	raw := `{"issues": [
		{"id": "a", "severity": "CRITICAL"},
		{"id": "b", "severity": "moderate"},
		{"id": "c", "severity": "whatever"},
		{"id": "d", "severity": ""}
	]}`

	got, err := ParseAnalysis(raw)
	require.NoError(t, err)
	assert.Equal(t, SeverityHigh, got.Issues[0].Severity)
	assert.Equal(t, SeverityMedium, got.Issues[1].Severity)
	assert.Equal(t, SeverityLow, got.Issues[2].Severity)
	assert.Equal(t, SeverityLow, got.Issues[3].Severity)
	assert.Equal(t, SeverityCounts{High: 1, Medium: 1, Low: 2, Total: 4}, got.Counts)
}

func TestParseAnalysis_DropsMalformedAnchors(t *testing.T) {
	raw := `{"issues": [
		{"id": "a", "severity": "low", "page": 0},
		{"id": "b", "severity": "low", "page": -3},
		{"id": "c", "severity": "low", "timestamp": -1.5},
		{"id": "d", "severity": "low", "timestamp": 0}
	]}`

	got, err := ParseAnalysis(raw)
	require.NoError(t, err)
	assert.Nil(t, got.Issues[0].Page)
	assert.Nil(t, got.Issues[1].Page)
	assert.Nil(t, got.Issues[2].Timestamp)
	require.NotNil(t, got.Issues[3].Timestamp)
	assert.Equal(t, 0.0, *got.Issues[3].Timestamp)
}

func TestParseAnalysis_InvalidJSON(t *testing.T) {
	_, err := ParseAnalysis("not json at all")
	assert.Error(t, err)
}

func TestParseAnalysis_OrderPreserved(t *testing.T) {
	raw := `{"issues": [
		{"id": "z", "severity": "low"},
		{"id": "m", "severity": "low"},
		{"id": "a", "severity": "low"}
	]}`
	got, err := ParseAnalysis(raw)
	require.NoError(t, err)
	ids := []IssueID{got.Issues[0].ID, got.Issues[1].ID, got.Issues[2].ID}
	assert.Equal(t, []IssueID{"z", "m", "a"}, ids)
}

func TestAnchored(t *testing.T) {
	page := 2
	ts := 3.5
	assert.False(t, Issue{}.Anchored())
	assert.True(t, Issue{Box: &BoundingBox{}}.Anchored())
	assert.True(t, Issue{Page: &page}.Anchored())
	assert.True(t, Issue{Timestamp: &ts}.Anchored())
}
