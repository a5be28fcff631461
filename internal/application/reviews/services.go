package reviews

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/bryanwahyu/brandlens/internal/application"
	domai "github.com/bryanwahyu/brandlens/internal/domain/ai"
	"github.com/bryanwahyu/brandlens/internal/domain/assets"
	"github.com/bryanwahyu/brandlens/internal/domain/issues"
	"github.com/bryanwahyu/brandlens/internal/domain/overlay"
	domain "github.com/bryanwahyu/brandlens/internal/domain/reviews"
	"github.com/bryanwahyu/brandlens/internal/domain/reviewerrors"
)

// Service implements use-cases untuk Review
// Service is designed to be used concurrently and is thread-safe
type Service struct {
	Reviews  domain.Repository
	Assets   assets.Repository
	Errors   reviewerrors.Repository
	Files    assets.FileStore
	Analyzer domai.Client
	Model    string
	Clock    application.Clock
}

//
// ==== USE CASES ====
//

// UploadAssetCommand carries one multipart upload
type UploadAssetCommand struct {
	TenantID    string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
	// optional hints from the client
	PageCount       int
	DurationSeconds float64
}

// UploadAsset streams the file into object storage and records the asset row.
func (s *Service) UploadAsset(ctx context.Context, cmd UploadAssetCommand) (*assets.Asset, error) {
	if cmd.Filename == "" {
		return nil, fmt.Errorf("filename is required")
	}
	kind := assets.KindFromContentType(cmd.ContentType, cmd.Filename)

	id := assets.AssetID(uuid.New().String())
	key := fmt.Sprintf("%s/%s/%s", cmd.TenantID, kind, cmd.Filename)

	url, err := s.Files.Put(ctx, key, cmd.Body, cmd.Size, cmd.ContentType)
	if err != nil {
		return nil, fmt.Errorf("store asset file: %w", err)
	}

	a := &assets.Asset{
		ID:              id,
		TenantID:        cmd.TenantID,
		Filename:        cmd.Filename,
		ContentType:     cmd.ContentType,
		Kind:            kind,
		SizeBytes:       cmd.Size,
		URL:             url,
		PageCount:       cmd.PageCount,
		DurationSeconds: cmd.DurationSeconds,
		UploadedAt:      s.Clock.Now(),
	}
	if err := s.Assets.Save(ctx, a); err != nil {
		return nil, fmt.Errorf("save asset: %w", err)
	}
	return a, nil
}

// StartReviewCommand triggers an analysis run over an uploaded asset
type StartReviewCommand struct {
	TenantID string
	AssetID  string
}

// StartReview creates the queued review row. The caller decides whether to run
// the analysis inline (RunReview) or in a background goroutine
// (RunReviewUntilDone), mirroring how the router fires scans.
func (s *Service) StartReview(ctx context.Context, cmd StartReviewCommand) (*domain.Review, error) {
	asset, err := s.Assets.Get(ctx, cmd.TenantID, assets.AssetID(cmd.AssetID))
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, fmt.Errorf("asset not found: %s", cmd.AssetID)
	}

	r := &domain.Review{
		ID:          domain.ReviewID(uuid.New().String()),
		TenantID:    cmd.TenantID,
		AssetID:     asset.ID,
		AssetKind:   asset.Kind,
		AssetURL:    asset.URL,
		TriggeredAt: s.Clock.Now(),
		Status:      domain.StatusQueued,
		Model:       s.Model,
	}
	if err := s.Reviews.Save(ctx, r); err != nil {
		return nil, fmt.Errorf("save review: %w", err)
	}
	return r, nil
}

// RunReviewUntilDone runs the analysis with context.Background() so a router
// goroutine can keep it alive after the HTTP request is gone.
func (s *Service) RunReviewUntilDone(tenant string, id domain.ReviewID) (*domain.Review, error) {
	return s.RunReview(context.Background(), tenant, id)
}

// RunReview drives one review to completion: running → analyze → parse → store.
// Failures are recorded in the review error log and flip the review to failed.
func (s *Service) RunReview(ctx context.Context, tenant string, id domain.ReviewID) (*domain.Review, error) {
	r, err := s.Reviews.Get(ctx, tenant, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("review not found: %s", id)
	}

	start := s.Clock.Now()
	_ = s.Reviews.UpdateStatus(ctx, tenant, id, domain.StatusRunning)

	raw, err := s.Analyzer.Analyze(ctx, r.AssetURL, r.AssetKind)
	if err != nil {
		s.recordFailure(tenant, r, "analyze", err)
		return nil, err
	}

	parsed, err := issues.ParseAnalysis(raw)
	if err != nil {
		s.recordFailure(tenant, r, "parse", err)
		return nil, err
	}

	duration := s.Clock.Now().Sub(start).Milliseconds()
	if err := s.Reviews.UpdateResult(ctx, tenant, id, domain.StatusSuccess,
		parsed.Counts, parsed.Issues, parsed.Summary, duration); err != nil {
		s.recordFailure(tenant, r, "store", err)
		return nil, err
	}

	r.Status = domain.StatusSuccess
	r.Counts = parsed.Counts
	r.Issues = parsed.Issues
	r.Summary = parsed.Summary
	r.DurationMS = duration
	return r, nil
}

func (s *Service) recordFailure(tenant string, r *domain.Review, phase string, cause error) {
	ctx := context.Background()
	_ = s.Reviews.UpdateStatus(ctx, tenant, r.ID, domain.StatusFailed)
	if s.Errors == nil {
		return
	}
	details, _ := json.Marshal(map[string]string{
		"asset_id":  string(r.AssetID),
		"asset_url": r.AssetURL,
	})
	_ = s.Errors.Save(ctx, &reviewerrors.ReviewError{
		TenantID:    tenant,
		ReviewID:    string(r.ID),
		AssetKind:   string(r.AssetKind),
		Phase:       phase,
		Message:     cause.Error(),
		DetailsJSON: string(details),
		CreatedAt:   s.Clock.Now(),
	})
}

// Get ambil 1 review by id
func (s *Service) Get(ctx context.Context, tenant string, id domain.ReviewID) (*domain.Review, error) {
	return s.Reviews.Get(ctx, tenant, id)
}

// Latest ambil N review terakhir
func (s *Service) Latest(ctx context.Context, tenant string, limit int) ([]*domain.Review, error) {
	return s.Reviews.Latest(ctx, tenant, limit)
}

// Paginate returns one page of review history with optional filters
func (s *Service) Paginate(ctx context.Context, tenant string, page, pageSize int, filters map[string]interface{}) (domain.PaginatedResult, error) {
	return s.Reviews.Paginate(ctx, tenant, page, pageSize, filters)
}

// ListErrors returns the persisted failure log for a review
func (s *Service) ListErrors(ctx context.Context, tenant, reviewID string, limit int) ([]*reviewerrors.ReviewError, error) {
	if s.Errors == nil {
		return nil, nil
	}
	return s.Errors.ListByReview(ctx, tenant, reviewID, limit)
}

// GetAsset ambil 1 asset by id
func (s *Service) GetAsset(ctx context.Context, tenant string, id assets.AssetID) (*assets.Asset, error) {
	return s.Assets.Get(ctx, tenant, id)
}

// LatestAssets ambil N asset terakhir
func (s *Service) LatestAssets(ctx context.Context, tenant string, limit int) ([]*assets.Asset, error) {
	return s.Assets.Latest(ctx, tenant, limit)
}

// Markers computes the visible overlay markers for a stored review at the
// given view state. Pure pass-through to the overlay mapper so the rule set
// stays testable without HTTP or a live media element.
func (s *Service) Markers(ctx context.Context, tenant string, id domain.ReviewID, view overlay.ViewState) ([]overlay.PlacedMarker, error) {
	r, err := s.Reviews.Get(ctx, tenant, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("review not found: %s", id)
	}
	asset := assets.Asset{ID: r.AssetID, Kind: r.AssetKind}
	return overlay.VisibleMarkers(r.Issues, asset, view), nil
}

// Select returns the navigation intent that brings an issue into view
func (s *Service) Select(ctx context.Context, tenant string, id domain.ReviewID, issueID issues.IssueID) (overlay.NavigationIntent, error) {
	r, err := s.Reviews.Get(ctx, tenant, id)
	if err != nil {
		return overlay.NavigationIntent{}, err
	}
	if r == nil {
		return overlay.NavigationIntent{}, fmt.Errorf("review not found: %s", id)
	}
	asset := assets.Asset{ID: r.AssetID, Kind: r.AssetKind}
	return overlay.SelectIssue(r.Issues, asset, issueID), nil
}
