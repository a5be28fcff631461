package assets

import (
	"time"
)

// ID tipe untuk Asset
type AssetID string

// Kind enum
type Kind string

const (
	KindImage        Kind = "image"
	KindVideo        Kind = "video"
	KindDocument     Kind = "document"
	KindPresentation Kind = "presentation"
	KindPodcast      Kind = "podcast"
)

// Paginated reports whether the kind renders as a page/slide carousel
func (k Kind) Paginated() bool {
	return k == KindDocument || k == KindPresentation
}

// TimeBased reports whether the kind plays along a timeline
func (k Kind) TimeBased() bool {
	return k == KindVideo || k == KindPodcast
}

// Aggregate Root: Asset (uploaded file under review)
type Asset struct {
	ID          AssetID   `json:"id"`
	TenantID    string    `json:"tenant_id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Kind        Kind      `json:"kind"`
	SizeBytes   int64     `json:"size_bytes"`
	URL         string    `json:"url,omitempty"`
	// PageCount untuk document/presentation, DurationSeconds untuk video/podcast
	PageCount       int     `json:"page_count,omitempty"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
	UploadedAt      time.Time `json:"uploaded_at"`
}
