package reviewerrors

import "time"

// ReviewError represents a persisted review failure entry
type ReviewError struct {
	ID          int64     `json:"id"`
	TenantID    string    `json:"tenant_id"`
	ReviewID    string    `json:"review_id"`
	AssetKind   string    `json:"asset_kind,omitempty"`
	Phase       string    `json:"phase,omitempty"` // trigger | analyze | parse | store
	Message     string    `json:"message"`
	DetailsJSON string    `json:"details_json,omitempty"` // raw JSON string
	CreatedAt   time.Time `json:"created_at"`
}
