package reviews

import (
	"time"

	"github.com/bryanwahyu/brandlens/internal/domain/assets"
	"github.com/bryanwahyu/brandlens/internal/domain/issues"
)

// ID tipe untuk Review
type ReviewID string

// Status enum
type Status string

const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Aggregate Root: Review (one AI compliance analysis run over an asset)
type Review struct {
	ID          ReviewID              `json:"id"`
	TenantID    string                `json:"tenant_id"`
	AssetID     assets.AssetID        `json:"asset_id"`
	AssetKind   assets.Kind           `json:"asset_kind"`
	AssetURL    string                `json:"asset_url,omitempty"`
	TriggeredAt time.Time             `json:"triggered_at"`
	Status      Status                `json:"status"`
	Counts      issues.SeverityCounts `json:"counts"`
	// Issues is the ordered result set from the analysis; order defines the
	// badge numbering and is immutable for the life of the review.
	Issues     []issues.Issue `json:"issues,omitempty"`
	Summary    string         `json:"summary,omitempty"`
	Model      string         `json:"model,omitempty"`
	DurationMS int64          `json:"duration_ms"`
}
