package reviews

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/brandlens/internal/domain/assets"
	"github.com/bryanwahyu/brandlens/internal/domain/issues"
	"github.com/bryanwahyu/brandlens/internal/domain/overlay"
	domain "github.com/bryanwahyu/brandlens/internal/domain/reviews"
	"github.com/bryanwahyu/brandlens/internal/domain/reviewerrors"
)

//
// ==== in-memory fakes ====
//

type fakeReviewRepo struct {
	rows map[domain.ReviewID]*domain.Review
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{rows: map[domain.ReviewID]*domain.Review{}}
}

func (f *fakeReviewRepo) Save(_ context.Context, r *domain.Review) error {
	cp := *r
	f.rows[r.ID] = &cp
	return nil
}

func (f *fakeReviewRepo) Get(_ context.Context, tenant string, id domain.ReviewID) (*domain.Review, error) {
	r, ok := f.rows[id]
	if !ok || r.TenantID != tenant {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeReviewRepo) Latest(_ context.Context, tenant string, limit int) ([]*domain.Review, error) {
	var out []*domain.Review
	for _, r := range f.rows {
		if r.TenantID == tenant {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeReviewRepo) Summary(_ context.Context, tenant string, sinceDays int) (int, int, int, int, error) {
	var t, h, m, l int
	for _, r := range f.rows {
		if r.TenantID != tenant {
			continue
		}
		t++
		h += r.Counts.High
		m += r.Counts.Medium
		l += r.Counts.Low
	}
	return t, h, m, l, nil
}

func (f *fakeReviewRepo) Paginate(_ context.Context, tenant string, page, pageSize int, _ map[string]interface{}) (domain.PaginatedResult, error) {
	list, _ := f.Latest(context.Background(), tenant, 0)
	return domain.PaginatedResult{Data: list, Page: page, PageSize: pageSize, Total: int64(len(list)), TotalPages: 1}, nil
}

func (f *fakeReviewRepo) UpdateStatus(_ context.Context, tenant string, id domain.ReviewID, status domain.Status) error {
	if r, ok := f.rows[id]; ok && r.TenantID == tenant {
		r.Status = status
	}
	return nil
}

func (f *fakeReviewRepo) UpdateResult(_ context.Context, tenant string, id domain.ReviewID, status domain.Status,
	counts issues.SeverityCounts, list []issues.Issue, summary string, durationMS int64) error {
	r, ok := f.rows[id]
	if !ok || r.TenantID != tenant {
		return errors.New("review not found")
	}
	r.Status = status
	r.Counts = counts
	r.Issues = list
	r.Summary = summary
	r.DurationMS = durationMS
	return nil
}

type fakeAssetRepo struct {
	rows map[assets.AssetID]*assets.Asset
}

func newFakeAssetRepo() *fakeAssetRepo {
	return &fakeAssetRepo{rows: map[assets.AssetID]*assets.Asset{}}
}

func (f *fakeAssetRepo) Save(_ context.Context, a *assets.Asset) error {
	cp := *a
	f.rows[a.ID] = &cp
	return nil
}

func (f *fakeAssetRepo) Get(_ context.Context, tenant string, id assets.AssetID) (*assets.Asset, error) {
	a, ok := f.rows[id]
	if !ok || a.TenantID != tenant {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAssetRepo) Latest(_ context.Context, tenant string, limit int) ([]*assets.Asset, error) {
	var out []*assets.Asset
	for _, a := range f.rows {
		if a.TenantID == tenant {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeErrorRepo struct {
	saved []*reviewerrors.ReviewError
}

func (f *fakeErrorRepo) Save(_ context.Context, e *reviewerrors.ReviewError) error {
	f.saved = append(f.saved, e)
	return nil
}

func (f *fakeErrorRepo) ListByReview(_ context.Context, tenant, reviewID string, _ int) ([]*reviewerrors.ReviewError, error) {
	var out []*reviewerrors.ReviewError
	for _, e := range f.saved {
		if e.TenantID == tenant && e.ReviewID == reviewID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeFileStore struct {
	keys []string
}

func (f *fakeFileStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	io.Copy(io.Discard, r)
	f.keys = append(f.keys, key)
	return "https://files.test/" + key, nil
}

type fakeAnalyzer struct {
	raw string
	err error
}

func (f *fakeAnalyzer) Analyze(_ context.Context, _ string, _ assets.Kind) (string, error) {
	return f.raw, f.err
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newTestService(analyzer *fakeAnalyzer) (*Service, *fakeReviewRepo, *fakeAssetRepo, *fakeErrorRepo) {
	reviews := newFakeReviewRepo()
	assetsRepo := newFakeAssetRepo()
	errs := &fakeErrorRepo{}
	svc := &Service{
		Reviews:  reviews,
		Assets:   assetsRepo,
		Errors:   errs,
		Files:    &fakeFileStore{},
		Analyzer: analyzer,
		Model:    "test-model",
		Clock:    fixedClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
	}
	return svc, reviews, assetsRepo, errs
}

//
// ==== tests ====
//

func TestUploadAsset(t *testing.T) {
	svc, _, assetRepo, _ := newTestService(&fakeAnalyzer{})

	a, err := svc.UploadAsset(context.Background(), UploadAssetCommand{
		TenantID:    "acme",
		Filename:    "banner.png",
		ContentType: "image/png",
		Size:        1024,
		Body:        strings.NewReader("fake-bytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, assets.KindImage, a.Kind)
	assert.Equal(t, "https://files.test/acme/image/banner.png", a.URL)
	assert.NotEmpty(t, a.ID)

	stored, err := assetRepo.Get(context.Background(), "acme", a.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, a.URL, stored.URL)
}

func TestUploadAsset_RequiresFilename(t *testing.T) {
	svc, _, _, _ := newTestService(&fakeAnalyzer{})
	_, err := svc.UploadAsset(context.Background(), UploadAssetCommand{TenantID: "acme"})
	assert.Error(t, err)
}

func TestStartReview_QueuesRow(t *testing.T) {
	svc, reviewRepo, _, _ := newTestService(&fakeAnalyzer{})
	a := seedAsset(t, svc, assets.KindImage)

	r, err := svc.StartReview(context.Background(), StartReviewCommand{
		TenantID: "acme", AssetID: string(a.ID),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusQueued, r.Status)
	assert.Equal(t, a.ID, r.AssetID)
	assert.Equal(t, a.Kind, r.AssetKind)

	stored, _ := reviewRepo.Get(context.Background(), "acme", r.ID)
	require.NotNil(t, stored)
	assert.Equal(t, domain.StatusQueued, stored.Status)
	// model is recorded at queue time so it persists with the row
	assert.Equal(t, "test-model", stored.Model)
}

func TestStartReview_UnknownAsset(t *testing.T) {
	svc, _, _, _ := newTestService(&fakeAnalyzer{})
	_, err := svc.StartReview(context.Background(), StartReviewCommand{
		TenantID: "acme", AssetID: "nope",
	})
	assert.Error(t, err)
}

func TestRunReview_Success(t *testing.T) {
	analyzer := &fakeAnalyzer{raw: `{
		"issues": [
			{"id": "a", "severity": "high", "category": "brand",
			 "box": {"x": 0, "y": 0, "width": 10, "height": 10}},
			{"id": "b", "severity": "low", "category": "legal"}
		],
		"summary": "done"
	}`}
	svc, reviewRepo, _, errRepo := newTestService(analyzer)
	a := seedAsset(t, svc, assets.KindImage)

	r, err := svc.StartReview(context.Background(), StartReviewCommand{TenantID: "acme", AssetID: string(a.ID)})
	require.NoError(t, err)

	done, err := svc.RunReview(context.Background(), "acme", r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, done.Status)
	assert.Equal(t, 2, done.Counts.Total)
	assert.Equal(t, 1, done.Counts.High)
	assert.Equal(t, "done", done.Summary)

	stored, _ := reviewRepo.Get(context.Background(), "acme", r.ID)
	assert.Equal(t, domain.StatusSuccess, stored.Status)
	require.Len(t, stored.Issues, 2)
	assert.Equal(t, "test-model", stored.Model)
	assert.Empty(t, errRepo.saved)
}

func TestRunReview_AnalyzeFailure(t *testing.T) {
	analyzer := &fakeAnalyzer{err: errors.New("upstream down")}
	svc, reviewRepo, _, errRepo := newTestService(analyzer)
	a := seedAsset(t, svc, assets.KindVideo)

	r, err := svc.StartReview(context.Background(), StartReviewCommand{TenantID: "acme", AssetID: string(a.ID)})
	require.NoError(t, err)

	_, err = svc.RunReview(context.Background(), "acme", r.ID)
	require.Error(t, err)

	stored, _ := reviewRepo.Get(context.Background(), "acme", r.ID)
	assert.Equal(t, domain.StatusFailed, stored.Status)

	require.Len(t, errRepo.saved, 1)
	assert.Equal(t, "analyze", errRepo.saved[0].Phase)
	assert.Contains(t, errRepo.saved[0].Message, "upstream down")
}

func TestRunReview_ParseFailure(t *testing.T) {
	analyzer := &fakeAnalyzer{raw: "this is not json"}
	svc, reviewRepo, _, errRepo := newTestService(analyzer)
	a := seedAsset(t, svc, assets.KindDocument)

	r, err := svc.StartReview(context.Background(), StartReviewCommand{TenantID: "acme", AssetID: string(a.ID)})
	require.NoError(t, err)

	_, err = svc.RunReview(context.Background(), "acme", r.ID)
	require.Error(t, err)

	stored, _ := reviewRepo.Get(context.Background(), "acme", r.ID)
	assert.Equal(t, domain.StatusFailed, stored.Status)
	require.Len(t, errRepo.saved, 1)
	assert.Equal(t, "parse", errRepo.saved[0].Phase)
}

func TestRunReview_UnknownReview(t *testing.T) {
	svc, _, _, _ := newTestService(&fakeAnalyzer{})
	_, err := svc.RunReview(context.Background(), "acme", "missing")
	assert.Error(t, err)
}

func TestMarkersAndSelect(t *testing.T) {
	analyzer := &fakeAnalyzer{raw: `{
		"issues": [
			{"id": "a", "severity": "high",
			 "box": {"x": 10, "y": 10, "width": 20, "height": 20}, "timestamp": 42.5},
			{"id": "b", "severity": "low",
			 "box": {"x": 50, "y": 50, "width": 10, "height": 10}, "timestamp": 200.0}
		]
	}`}
	svc, _, _, _ := newTestService(analyzer)
	a := seedAsset(t, svc, assets.KindVideo)

	r, err := svc.StartReview(context.Background(), StartReviewCommand{TenantID: "acme", AssetID: string(a.ID)})
	require.NoError(t, err)
	_, err = svc.RunReview(context.Background(), "acme", r.ID)
	require.NoError(t, err)

	markers, err := svc.Markers(context.Background(), "acme", r.ID, overlay.ViewState{PlaybackTime: 43.0})
	require.NoError(t, err)
	require.Len(t, markers, 1)
	assert.Equal(t, issues.IssueID("a"), markers[0].Issue.ID)
	assert.Equal(t, 1, markers[0].Badge)

	intent, err := svc.Select(context.Background(), "acme", r.ID, "a")
	require.NoError(t, err)
	require.NotNil(t, intent.SeekTo)
	assert.InDelta(t, 42.5, *intent.SeekTo, 1e-9)
	assert.True(t, intent.Pause)
}

func TestMarkers_UnknownReview(t *testing.T) {
	svc, _, _, _ := newTestService(&fakeAnalyzer{})
	_, err := svc.Markers(context.Background(), "acme", "missing", overlay.ViewState{})
	assert.Error(t, err)
	_, err = svc.Select(context.Background(), "acme", "missing", "x")
	assert.Error(t, err)
}

func seedAsset(t *testing.T, svc *Service, kind assets.Kind) *assets.Asset {
	t.Helper()
	name := map[assets.Kind]string{
		assets.KindImage:    "pic.png",
		assets.KindVideo:    "clip.mp4",
		assets.KindDocument: "doc.pdf",
	}[kind]
	if name == "" {
		name = "file.pdf"
	}
	a, err := svc.UploadAsset(context.Background(), UploadAssetCommand{
		TenantID: "acme",
		Filename: name,
		Size:     10,
		Body:     strings.NewReader("x"),
	})
	require.NoError(t, err)
	return a
}
