package postgres

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/bryanwahyu/brandlens/internal/domain/assets"
)

type AssetRepository struct{ db *sql.DB }

func NewAssetRepository(db *sql.DB) *AssetRepository { return &AssetRepository{db: db} }

// Save inserts an asset record (uploads are write-once)
func (r *AssetRepository) Save(ctx context.Context, a *domain.Asset) error {
	const q = `
INSERT INTO review_assets
  (id, tenant_id, filename, content_type, kind, size_bytes, url, page_count, duration_seconds, uploaded_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (id) DO UPDATE SET
  url = EXCLUDED.url,
  page_count = EXCLUDED.page_count,
  duration_seconds = EXCLUDED.duration_seconds;`
	uploaded := a.UploadedAt
	if uploaded.IsZero() {
		uploaded = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		a.ID, a.TenantID, a.Filename, a.ContentType, a.Kind,
		a.SizeBytes, a.URL, a.PageCount, a.DurationSeconds, uploaded,
	)
	return err
}

// Get by ID + Tenant
func (r *AssetRepository) Get(ctx context.Context, tenant string, id domain.AssetID) (*domain.Asset, error) {
	const q = `
SELECT id, tenant_id, filename, content_type, kind, size_bytes, url, page_count, duration_seconds, uploaded_at
FROM review_assets
WHERE tenant_id=$1 AND id=$2 LIMIT 1;`
	var a domain.Asset
	if err := r.db.QueryRowContext(ctx, q, tenant, id).Scan(
		&a.ID, &a.TenantID, &a.Filename, &a.ContentType, &a.Kind,
		&a.SizeBytes, &a.URL, &a.PageCount, &a.DurationSeconds, &a.UploadedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

// Latest assets per tenant
func (r *AssetRepository) Latest(ctx context.Context, tenant string, limit int) ([]*domain.Asset, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, tenant_id, filename, content_type, kind, size_bytes, url, page_count, duration_seconds, uploaded_at
FROM review_assets
WHERE tenant_id=$1 ORDER BY uploaded_at DESC, id DESC LIMIT $2;`
	rows, err := r.db.QueryContext(ctx, q, tenant, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Asset
	for rows.Next() {
		var a domain.Asset
		if err := rows.Scan(
			&a.ID, &a.TenantID, &a.Filename, &a.ContentType, &a.Kind,
			&a.SizeBytes, &a.URL, &a.PageCount, &a.DurationSeconds, &a.UploadedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}
