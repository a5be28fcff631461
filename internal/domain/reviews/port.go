package reviews

import (
	"context"

	"github.com/bryanwahyu/brandlens/internal/domain/issues"
)

// Repository port (interface untuk persistence)
type Repository interface {
	Save(ctx context.Context, r *Review) error
	Get(ctx context.Context, tenant string, id ReviewID) (*Review, error)
	Latest(ctx context.Context, tenant string, limit int) ([]*Review, error)
	Summary(ctx context.Context, tenant string, sinceDays int) (int, int, int, int, error)
	Paginate(ctx context.Context, tenant string, page, pageSize int, filters map[string]interface{}) (PaginatedResult, error)
	UpdateStatus(ctx context.Context, tenant string, id ReviewID, status Status) error
	UpdateResult(ctx context.Context, tenant string, id ReviewID, status Status,
		counts issues.SeverityCounts, list []issues.Issue, summary string, durationMS int64) error
}
