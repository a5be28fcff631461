package analytics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/brandlens/internal/domain/issues"
	domain "github.com/bryanwahyu/brandlens/internal/domain/reviews"
)

type stubRepo struct {
	domain.Repository
	total, high, medium, low int
	recent                   []*domain.Review
}

func (s *stubRepo) Summary(_ context.Context, _ string, _ int) (int, int, int, int, error) {
	return s.total, s.high, s.medium, s.low, nil
}

func (s *stubRepo) Latest(_ context.Context, _ string, _ int) ([]*domain.Review, error) {
	return s.recent, nil
}

func TestSummary(t *testing.T) {
	repo := &stubRepo{
		total: 4, high: 3, medium: 2, low: 1,
		recent: []*domain.Review{
			{
				Status:    domain.StatusSuccess,
				AssetKind: "image",
				Counts:    issues.SeverityCounts{High: 2, Total: 3},
				Issues: []issues.Issue{
					{ID: "a", Category: "brand", Box: &issues.BoundingBox{X: 1, Y: 1, Width: 2, Height: 2}},
					{ID: "b", Category: "brand"},
					{ID: "c"},
				},
			},
			{
				Status:    domain.StatusFailed,
				AssetKind: "video",
			},
		},
	}
	svc := NewService(repo)

	d, err := svc.Summary(context.Background(), "acme", 7)
	require.NoError(t, err)

	assert.Equal(t, 7, d.SinceDays)
	assert.Equal(t, 4, d.TotalReviews)
	assert.Equal(t, 6, d.TotalIssues)
	assert.InDelta(t, 1.5, d.AvgIssuesPerRun, 1e-9)

	assert.Equal(t, 1, d.ByStatus["success"])
	assert.Equal(t, 1, d.ByStatus["failed"])
	assert.Equal(t, 3, d.ByAssetKind["image"])
	assert.Equal(t, 2, d.ByCategory["brand"])
	assert.Equal(t, 1, d.ByCategory["uncategorized"])
	// "b" and "c" carry no box/page/timestamp, so they can never be placed
	assert.Equal(t, 2, d.ListOnlyIssues)
}

func TestSummary_DefaultWindowAndEmptyHistory(t *testing.T) {
	svc := NewService(&stubRepo{})

	d, err := svc.Summary(context.Background(), "acme", 0)
	require.NoError(t, err)
	assert.Equal(t, 7, d.SinceDays)
	assert.Zero(t, d.TotalReviews)
	assert.Zero(t, d.AvgIssuesPerRun)
	assert.Empty(t, d.ByStatus)
}
