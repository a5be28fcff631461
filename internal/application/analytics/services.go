package analytics

import (
	"context"

	domain "github.com/bryanwahyu/brandlens/internal/domain/reviews"
)

// Service computes the admin dashboard aggregates over review history
type Service struct {
	Reviews domain.Repository
}

func NewService(repo domain.Repository) *Service {
	return &Service{Reviews: repo}
}

// Dashboard is the aggregate payload behind GET /dashboard
type Dashboard struct {
	SinceDays       int            `json:"since_days"`
	TotalReviews    int            `json:"total_reviews"`
	IssuesHigh      int            `json:"issues_high"`
	IssuesMedium    int            `json:"issues_medium"`
	IssuesLow       int            `json:"issues_low"`
	TotalIssues     int            `json:"total_issues"`
	AvgIssuesPerRun float64        `json:"avg_issues_per_review"`
	// ListOnlyIssues counts findings with no visual anchor at all; they can
	// never place an overlay marker and only show in the issue list.
	ListOnlyIssues int            `json:"list_only_issues"`
	ByStatus       map[string]int `json:"reviews_by_status"`
	ByAssetKind    map[string]int `json:"issues_by_asset_kind"`
	ByCategory     map[string]int `json:"issues_by_category"`
}

// sampleSize bounds the in-memory breakdown pass over recent history
const sampleSize = 200

// Summary computes the SQL-side severity totals since N days, then walks the
// recent history once for the breakdowns the summary query cannot express.
func (s *Service) Summary(ctx context.Context, tenant string, sinceDays int) (*Dashboard, error) {
	if sinceDays <= 0 {
		sinceDays = 7
	}
	total, hi, med, lo, err := s.Reviews.Summary(ctx, tenant, sinceDays)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		SinceDays:    sinceDays,
		TotalReviews: total,
		IssuesHigh:   hi,
		IssuesMedium: med,
		IssuesLow:    lo,
		TotalIssues:  hi + med + lo,
		ByStatus:     map[string]int{},
		ByAssetKind:  map[string]int{},
		ByCategory:   map[string]int{},
	}
	if total > 0 {
		d.AvgIssuesPerRun = float64(d.TotalIssues) / float64(total)
	}

	recent, err := s.Reviews.Latest(ctx, tenant, sampleSize)
	if err != nil {
		return nil, err
	}
	for _, r := range recent {
		d.ByStatus[string(r.Status)]++
		d.ByAssetKind[string(r.AssetKind)] += r.Counts.Total
		for _, it := range r.Issues {
			cat := it.Category
			if cat == "" {
				cat = "uncategorized"
			}
			d.ByCategory[cat]++
			if !it.Anchored() {
				d.ListOnlyIssues++
			}
		}
	}
	return d, nil
}
