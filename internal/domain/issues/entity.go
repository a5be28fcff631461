package issues

// ID tipe untuk Issue
type IssueID string

// Severity enum
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// BoundingBox locates an issue within a single page/frame.
// Coordinates are normalized percentages (0-100) of the rendered bounds.
// Values outside the range are stored as given; upstream output is trusted.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// CenterX returns the horizontal anchor point in percent units
func (b BoundingBox) CenterX() float64 { return b.X + b.Width/2 }

// CenterY returns the vertical anchor point in percent units
func (b BoundingBox) CenterY() float64 { return b.Y + b.Height/2 }

// Issue is a single detected compliance/brand/cultural problem.
// Issues are immutable once parsed; list order defines the badge number.
type Issue struct {
	ID          IssueID  `json:"id"`
	Category    string   `json:"category"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	Remediation string   `json:"remediation,omitempty"`

	// Optional anchors; which ones apply depends on the asset kind.
	Box       *BoundingBox `json:"box,omitempty"`
	Page      *int         `json:"page,omitempty"`      // 1-based page/slide
	Timestamp *float64     `json:"timestamp,omitempty"` // playback seconds
}

// Anchored reports whether the issue can ever produce a visual marker.
// An issue lacking both a box and a page/timestamp stays list-only.
func (i Issue) Anchored() bool {
	return i.Box != nil || i.Page != nil || i.Timestamp != nil
}

// SeverityCounts value object
type SeverityCounts struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
	Total  int `json:"total"`
}

// Add increments the bucket for sev. Unknown severities only count toward Total.
func (c *SeverityCounts) Add(sev Severity) {
	switch sev {
	case SeverityHigh:
		c.High++
	case SeverityMedium:
		c.Medium++
	case SeverityLow:
		c.Low++
	}
	c.Total++
}

// Count tallies severities over an issue list
func Count(list []Issue) SeverityCounts {
	var c SeverityCounts
	for _, it := range list {
		c.Add(it.Severity)
	}
	return c
}
