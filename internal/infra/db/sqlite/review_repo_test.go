package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/brandlens/internal/domain/issues"
	domain "github.com/bryanwahyu/brandlens/internal/domain/reviews"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	// in-memory sqlite is per connection
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedReview(id, tenant string, status domain.Status, at time.Time) *domain.Review {
	return &domain.Review{
		ID:          domain.ReviewID(id),
		TenantID:    tenant,
		AssetID:     "asset-1",
		AssetKind:   "image",
		AssetURL:    "https://files.test/x.png",
		TriggeredAt: at,
		Status:      status,
	}
}

func TestReviewRepository_SaveGetRoundTrip(t *testing.T) {
	repo := NewReviewRepository(openTestDB(t))
	ctx := context.Background()

	ts := 12.5
	rv := seedReview("r1", "acme", domain.StatusSuccess, time.Now().UTC())
	rv.Counts = issues.SeverityCounts{High: 1, Low: 1, Total: 2}
	rv.Issues = []issues.Issue{
		{ID: "a", Category: "brand", Severity: issues.SeverityHigh,
			Box: &issues.BoundingBox{X: 10, Y: 10, Width: 20, Height: 20}, Timestamp: &ts},
		{ID: "b", Category: "legal", Severity: issues.SeverityLow},
	}
	rv.Summary = "two findings"
	rv.Model = "gpt-4o"
	require.NoError(t, repo.Save(ctx, rv))

	got, err := repo.Get(ctx, "acme", "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, got.Status)
	assert.Equal(t, 2, got.Counts.Total)
	assert.Equal(t, "two findings", got.Summary)

	// issues round-trip through issues_json with order and anchors intact
	require.Len(t, got.Issues, 2)
	assert.Equal(t, issues.IssueID("a"), got.Issues[0].ID)
	require.NotNil(t, got.Issues[0].Box)
	assert.InDelta(t, 20.0, got.Issues[0].Box.CenterX(), 1e-9)
	require.NotNil(t, got.Issues[0].Timestamp)
	assert.InDelta(t, 12.5, *got.Issues[0].Timestamp, 1e-9)
	assert.Nil(t, got.Issues[1].Box)
}

func TestReviewRepository_GetWrongTenant(t *testing.T) {
	repo := NewReviewRepository(openTestDB(t))
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, seedReview("r1", "acme", domain.StatusQueued, time.Now())))

	_, err := repo.Get(ctx, "other", "r1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestReviewRepository_StatusTransitions(t *testing.T) {
	repo := NewReviewRepository(openTestDB(t))
	ctx := context.Background()

	queued := seedReview("r1", "acme", domain.StatusQueued, time.Now())
	queued.Model = "gpt-4o"
	require.NoError(t, repo.Save(ctx, queued))

	require.NoError(t, repo.UpdateStatus(ctx, "acme", "r1", domain.StatusRunning))
	got, err := repo.Get(ctx, "acme", "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRunning, got.Status)

	list := []issues.Issue{{ID: "a", Severity: issues.SeverityMedium}}
	counts := issues.Count(list)
	require.NoError(t, repo.UpdateResult(ctx, "acme", "r1", domain.StatusSuccess, counts, list, "ok", 1500))

	got, err = repo.Get(ctx, "acme", "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, got.Status)
	assert.Equal(t, 1, got.Counts.Medium)
	assert.Equal(t, int64(1500), got.DurationMS)
	assert.Equal(t, "ok", got.Summary)
	// the model set on the queued row must survive the result update
	assert.Equal(t, "gpt-4o", got.Model)
}

func TestReviewRepository_LatestOrdering(t *testing.T) {
	repo := NewReviewRepository(openTestDB(t))
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Save(ctx, seedReview("old", "acme", domain.StatusSuccess, base)))
	require.NoError(t, repo.Save(ctx, seedReview("new", "acme", domain.StatusSuccess, base.Add(time.Hour))))
	require.NoError(t, repo.Save(ctx, seedReview("other", "rival", domain.StatusSuccess, base.Add(2*time.Hour))))

	got, err := repo.Latest(ctx, "acme", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.ReviewID("new"), got[0].ID)
	assert.Equal(t, domain.ReviewID("old"), got[1].ID)
}

func TestReviewRepository_PaginateWithFilters(t *testing.T) {
	repo := NewReviewRepository(openTestDB(t))
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	for i, st := range []domain.Status{domain.StatusSuccess, domain.StatusSuccess, domain.StatusFailed} {
		rv := seedReview(string(rune('a'+i)), "acme", st, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, repo.Save(ctx, rv))
	}

	res, err := repo.Paginate(ctx, "acme", 1, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Total)
	assert.Equal(t, 2, res.TotalPages)
	assert.Len(t, res.Data, 2)

	res, err = repo.Paginate(ctx, "acme", 1, 10, map[string]interface{}{"status": "failed"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Total)
	require.Len(t, res.Data, 1)
	assert.Equal(t, domain.StatusFailed, res.Data[0].Status)
}

func TestReviewRepository_PaginateSummarySearch(t *testing.T) {
	repo := NewReviewRepository(openTestDB(t))
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	match := seedReview("r1", "acme", domain.StatusSuccess, base)
	match.Summary = "logo misuse on 100% of slides"
	require.NoError(t, repo.Save(ctx, match))

	other := seedReview("r2", "acme", domain.StatusSuccess, base.Add(time.Minute))
	other.Summary = "no findings"
	require.NoError(t, repo.Save(ctx, other))

	res, err := repo.Paginate(ctx, "acme", 1, 10, map[string]interface{}{"summary": "logo"})
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, domain.ReviewID("r1"), res.Data[0].ID)
	assert.Equal(t, int64(1), res.Total)

	// wildcards in the search term match literally, not as LIKE metacharacters
	res, err = repo.Paginate(ctx, "acme", 1, 10, map[string]interface{}{"summary": "100%"})
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, domain.ReviewID("r1"), res.Data[0].ID)

	res, err = repo.Paginate(ctx, "acme", 1, 10, map[string]interface{}{"summary": "%"})
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, domain.ReviewID("r1"), res.Data[0].ID)
}

func TestReviewRepository_Summary(t *testing.T) {
	repo := NewReviewRepository(openTestDB(t))
	ctx := context.Background()

	recent := seedReview("r1", "acme", domain.StatusSuccess, time.Now().UTC())
	recent.Counts = issues.SeverityCounts{High: 2, Medium: 1, Low: 3, Total: 6}
	require.NoError(t, repo.Save(ctx, recent))

	stale := seedReview("r2", "acme", domain.StatusSuccess, time.Now().UTC().AddDate(0, 0, -30))
	stale.Counts = issues.SeverityCounts{High: 9, Total: 9}
	require.NoError(t, repo.Save(ctx, stale))

	total, hi, med, lo, err := repo.Summary(ctx, "acme", 7)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, 2, hi)
	assert.Equal(t, 1, med)
	assert.Equal(t, 3, lo)
}
