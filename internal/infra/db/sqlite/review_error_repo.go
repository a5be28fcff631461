package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	domain "github.com/bryanwahyu/brandlens/internal/domain/reviewerrors"
)

type ReviewErrorRepository struct {
	db *sql.DB
}

func NewReviewErrorRepository(db *sql.DB) *ReviewErrorRepository {
	return &ReviewErrorRepository{db: db}
}

func (r *ReviewErrorRepository) Save(ctx context.Context, e *domain.ReviewError) error {
	const q = `
INSERT INTO review_errors
  (tenant_id, review_id, asset_kind, phase, message, details_json, created_at)
VALUES (?,?,?,?,?,?,?)
`
	details := e.DetailsJSON
	if strings.TrimSpace(details) == "" {
		details = "{}"
	}
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		e.TenantID, e.ReviewID, e.AssetKind, e.Phase, e.Message, details, created)
	return err
}

func (r *ReviewErrorRepository) ListByReview(ctx context.Context, tenant string, reviewID string, limit int) ([]*domain.ReviewError, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, tenant_id, review_id, asset_kind, phase, message, details_json, created_at
FROM review_errors
WHERE tenant_id = ? AND review_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ?;`
	rows, err := r.db.QueryContext(ctx, q, tenant, reviewID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.ReviewError
	for rows.Next() {
		var e domain.ReviewError
		if err := rows.Scan(&e.ID, &e.TenantID, &e.ReviewID, &e.AssetKind, &e.Phase, &e.Message, &e.DetailsJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
