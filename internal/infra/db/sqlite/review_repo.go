package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
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

// Save insert/update Review record
func (r *ReviewRepository) Save(ctx context.Context, rv *domain.Review) error {
	const q = `
INSERT INTO compliance_reviews
(id, tenant_id, asset_id, asset_kind, asset_url, triggered_at, status,
 high, medium, low, issues_total, issues_json, summary, model, duration_ms)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON CONFLICT(id) DO UPDATE SET
 status=excluded.status,
 high=excluded.high, medium=excluded.medium, low=excluded.low,
 issues_total=excluded.issues_total,
 issues_json=excluded.issues_json, summary=excluded.summary,
 model=excluded.model, duration_ms=excluded.duration_ms;
`
	triggered := rv.TriggeredAt
	if triggered.IsZero() {
		triggered = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		rv.ID, rv.TenantID, rv.AssetID, rv.AssetKind, rv.AssetURL, triggered, rv.Status,
		rv.Counts.High, rv.Counts.Medium, rv.Counts.Low, rv.Counts.Total,
		marshalIssues(rv.Issues), rv.Summary, rv.Model, rv.DurationMS,
	)
	return err
}

// Get by ID + Tenant
func (r *ReviewRepository) Get(ctx context.Context, tenant string, id domain.ReviewID) (*domain.Review, error) {
	const q = `
SELECT id, tenant_id, asset_id, asset_kind, asset_url, triggered_at, status,
       high, medium, low, issues_total, issues_json, summary, model, duration_ms
FROM compliance_reviews
WHERE tenant_id=? AND id=? LIMIT 1;`
	return scanReview(r.db.QueryRowContext(ctx, q, tenant, id).Scan)
}

// Latest reviews per tenant
func (r *ReviewRepository) Latest(ctx context.Context, tenant string, limit int) ([]*domain.Review, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, tenant_id, asset_id, asset_kind, asset_url, triggered_at, status,
       high, medium, low, issues_total, issues_json, summary, model, duration_ms
FROM compliance_reviews
WHERE tenant_id=? ORDER BY triggered_at DESC, id DESC LIMIT ?;`
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
SELECT COUNT(*),
       COALESCE(SUM(high),0),
       COALESCE(SUM(medium),0),
       COALESCE(SUM(low),0)
FROM compliance_reviews
WHERE tenant_id=? AND triggered_at >= ?;`
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
SELECT id, tenant_id, asset_id, asset_kind, asset_url, triggered_at, status,
       high, medium, low, issues_total, issues_json, summary, model, duration_ms
FROM compliance_reviews
WHERE tenant_id=?`
	args := []interface{}{tenant}
	query, args = applyFilters(query, args, filters)
	query += " ORDER BY triggered_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return domain.PaginatedResult{}, err
	}
	defer rows.Close()

	var list []*domain.Review
	for rows.Next() {
		rv, err := scanReview(rows.Scan)
		if err != nil {
			return domain.PaginatedResult{}, err
		}
		list = append(list, rv)
	}
	if err := rows.Err(); err != nil {
		return domain.PaginatedResult{}, err
	}

	countQ := "SELECT COUNT(*) FROM compliance_reviews WHERE tenant_id=?"
	countArgs := []interface{}{tenant}
	countQ, countArgs = applyFilters(countQ, countArgs, filters)
	var total int64
	if err := r.db.QueryRowContext(ctx, countQ, countArgs...).Scan(&total); err != nil {
		return domain.PaginatedResult{}, err
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		totalPages++
	}
	return domain.PaginatedResult{
		Data:       list,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

// UpdateStatus hanya update kolom status
func (r *ReviewRepository) UpdateStatus(ctx context.Context, tenant string, id domain.ReviewID, status domain.Status) error {
	const q = `UPDATE compliance_reviews SET status=? WHERE tenant_id=? AND id=?;`
	_, err := r.db.ExecContext(ctx, q, status, tenant, id)
	return err
}

// UpdateResult update hasil review
func (r *ReviewRepository) UpdateResult(ctx context.Context, tenant string, id domain.ReviewID, status domain.Status,
	counts issues.SeverityCounts, list []issues.Issue, summary string, durationMS int64) error {
	const q = `
UPDATE compliance_reviews
SET status=?, high=?, medium=?, low=?, issues_total=?,
    issues_json=?, summary=?, duration_ms=?
WHERE tenant_id=? AND id=?;`
	_, err := r.db.ExecContext(ctx, q,
		status, counts.High, counts.Medium, counts.Low, counts.Total,
		marshalIssues(list), summary, durationMS,
		tenant, id,
	)
	return err
}

func applyFilters(query string, args []interface{}, filters map[string]interface{}) (string, []interface{}) {
	if filters == nil {
		return query, args
	}
	if v, ok := filters["status"]; ok {
		query += " AND status = ?"
		args = append(args, v)
	}
	if v, ok := filters["kind"]; ok {
		query += " AND asset_kind = ?"
		args = append(args, v)
	}
	if v, ok := filters["summary"]; ok {
		term, _ := v.(string)
		query += ` AND summary LIKE ? ESCAPE '\'`
		args = append(args, "%"+escapeLikePattern(term)+"%")
	}
	return query, args
}

// escapeLikePattern escapes LIKE wildcards so user input matches literally
func escapeLikePattern(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
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
	if strings.TrimSpace(issuesJSON) != "" {
		_ = json.Unmarshal([]byte(issuesJSON), &rv.Issues)
	}
	return &rv, nil
}

func marshalIssues(list []issues.Issue) string {
	if len(list) == 0 {
		return "[]"
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "[]"
	}
	return string(b)
}
