package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/bryanwahyu/brandlens/internal/domain/issues"
	domain "github.com/bryanwahyu/brandlens/internal/domain/reviews"
)

type ReviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

const reviewColumns = `id, tenant_id, asset_id, asset_kind, asset_url, triggered_at, status,
       high, medium, low, issues_total, issues_json, summary, model, duration_ms`

// Save insert/update Review record
func (r *ReviewRepository) Save(ctx context.Context, rv *domain.Review) error {
	const q = `
INSERT INTO compliance_reviews
(id, tenant_id, asset_id, asset_kind, asset_url, triggered_at, status,
 high, medium, low, issues_total, issues_json, summary, model, duration_ms)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 status=VALUES(status),
 high=VALUES(high), medium=VALUES(medium), low=VALUES(low),
 issues_total=VALUES(issues_total),
 issues_json=VALUES(issues_json), summary=VALUES(summary),
 model=VALUES(model), duration_ms=VALUES(duration_ms);
`
	// Ensure non-nullable string fields have safe defaults and numbers fall back to 0
	tenant := stringOrDash(rv.TenantID)
	kind := stringOrDash(string(rv.AssetKind))
	status := stringOrDash(string(rv.Status))
	triggered := rv.TriggeredAt
	if triggered.IsZero() {
		triggered = time.Now()
	}

	_, err := r.db.ExecContext(ctx, q,
		rv.ID, tenant, rv.AssetID, kind, rv.AssetURL, triggered, status,
		rv.Counts.High, rv.Counts.Medium, rv.Counts.Low, rv.Counts.Total,
		marshalIssues(rv.Issues), rv.Summary, rv.Model, rv.DurationMS,
	)
	return err
}

// Get by ID + Tenant
func (r *ReviewRepository) Get(ctx context.Context, tenant string, id domain.ReviewID) (*domain.Review, error) {
	q := `
SELECT ` + reviewColumns + `
FROM compliance_reviews
WHERE tenant_id=? AND id=? LIMIT 1;
`
	row := r.db.QueryRowContext(ctx, q, tenant, id)
	return scanReview(row.Scan)
}

// Latest reviews per tenant
func (r *ReviewRepository) Latest(ctx context.Context, tenant string, limit int) ([]*domain.Review, error) {
	if limit <= 0 {
		limit = 20
	}
	q := `
SELECT ` + reviewColumns + `
FROM compliance_reviews
WHERE tenant_id=? ORDER BY triggered_at DESC, id DESC LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, tenant, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Review
	for rows.Next() {
		rv, err := scanReview(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

// Summary counts issue results since N days
func (r *ReviewRepository) Summary(ctx context.Context, tenant string, sinceDays int) (int, int, int, int, error) {
	if sinceDays <= 0 {
		sinceDays = 7
	}
	cut := time.Now().AddDate(0, 0, -sinceDays)

	const q = `
SELECT COUNT(*) AS total_reviews,
       COALESCE(SUM(high),0)   AS high,
       COALESCE(SUM(medium),0) AS medium,
       COALESCE(SUM(low),0)    AS low
FROM compliance_reviews
WHERE tenant_id=? AND triggered_at >= ?;
`
	var t, h, m, l int
	if err := r.db.QueryRowContext(ctx, q, tenant, cut).Scan(&t, &h, &m, &l); err != nil {
		return 0, 0, 0, 0, err
	}
	return t, h, m, l, nil
}

// Paginate with offset + limit (classic pagination)
func (r *ReviewRepository) Paginate(ctx context.Context, tenant string, page, pageSize int, filters map[string]interface{}) (domain.PaginatedResult, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	query := `
SELECT ` + reviewColumns + `
FROM compliance_reviews
WHERE tenant_id=?`
	args := []interface{}{tenant}
	query, args = applyFilters(query, args, filters)

	query += "\nORDER BY triggered_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, pageSize, offset)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("querying reviews: %w", err)
	}
	defer rows.Close()

	var list []*domain.Review
	for rows.Next() {
		rv, err := scanReview(rows.Scan)
		if err != nil {
			return domain.PaginatedResult{}, fmt.Errorf("scanning row: %w", err)
		}
		list = append(list, rv)
	}
	if err = rows.Err(); err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("iterating rows: %w", err)
	}

	total, err := r.Count(ctx, tenant, filters)
	if err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("getting total count: %w", err)
	}

	return domain.PaginatedResult{
		Data:       list,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}, nil
}

// UpdateStatus hanya update kolom status
func (r *ReviewRepository) UpdateStatus(ctx context.Context, tenant string, id domain.ReviewID, status domain.Status) error {
	const q = `
UPDATE compliance_reviews
SET status = ?
WHERE tenant_id = ? AND id = ?;`
	_, err := r.db.ExecContext(ctx, q, status, tenant, id)
	return err
}

// UpdateResult update hasil review (status, counts, issues, summary, duration)
func (r *ReviewRepository) UpdateResult(ctx context.Context, tenant string, id domain.ReviewID, status domain.Status,
	counts issues.SeverityCounts, list []issues.Issue, summary string, durationMS int64) error {
	const q = `
UPDATE compliance_reviews
SET status = ?,
    high = ?,
    medium = ?,
    low = ?,
    issues_total = ?,
    issues_json = ?,
    summary = ?,
    duration_ms = ?
WHERE tenant_id = ? AND id = ?;`
	_, err := r.db.ExecContext(ctx, q,
		status,
		counts.High, counts.Medium, counts.Low, counts.Total,
		marshalIssues(list), summary, durationMS,
		tenant, id,
	)
	return err
}

// Count returns the total number of records matching the given filters
func (r *ReviewRepository) Count(ctx context.Context, tenant string, filters map[string]interface{}) (int64, error) {
	query := "SELECT COUNT(*) FROM compliance_reviews WHERE tenant_id = ?"
	args := []interface{}{tenant}
	query, args = applyFilters(query, args, filters)

	var count int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilters appends the supported filter predicates to a tenant-scoped query
func applyFilters(query string, args []interface{}, filters map[string]interface{}) (string, []interface{}) {
	if filters == nil {
		return query, args
	}
	for key, value := range filters {
		switch key {
		case "status":
			query += " AND status = ?"
			args = append(args, value)
		case "kind":
			query += " AND asset_kind = ?"
			args = append(args, value)
		case "asset_id":
			query += " AND asset_id = ?"
			args = append(args, value)
		case "summary":
			// Use LIKE with wildcards - sanitize input to prevent SQL injection
			term, _ := value.(string)
			query += " AND summary LIKE ?"
			args = append(args, "%"+escapeLikePattern(term)+"%")
		}
	}
	return query, args
}

func scanReview(scan func(dest ...any) error) (*domain.Review, error) {
	var rv domain.Review
	var hi, med, lo, tot int
	var issuesJSON string
	if err := scan(
		&rv.ID, &rv.TenantID, &rv.AssetID, &rv.AssetKind, &rv.AssetURL, &rv.TriggeredAt, &rv.Status,
		&hi, &med, &lo, &tot,
		&issuesJSON, &rv.Summary, &rv.Model, &rv.DurationMS,
	); err != nil {
		return nil, err
	}
	rv.Counts = issues.SeverityCounts{High: hi, Medium: med, Low: lo, Total: tot}
	rv.Issues = unmarshalIssues(issuesJSON)
	return &rv, nil
}
