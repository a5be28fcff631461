package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/bryanwahyu/brandlens/internal/domain/issues"
	domain "github.com/bryanwahyu/brandlens/internal/domain/reviews"
)

type ReviewRepository struct{ db *sql.DB }

func NewReviewRepository(db *sql.DB) *ReviewRepository { return &ReviewRepository{db: db} }

// Save insert/update Review record
func (r *ReviewRepository) Save(ctx context.Context, rv *domain.Review) error {
	const q = `
INSERT INTO compliance_reviews
(id, tenant_id, asset_id, asset_kind, asset_url, triggered_at, status,
 high, medium, low, issues_total, issues_json, summary, model, duration_ms)
VALUES ($1,$2,$3,$4,$5,$6,$7,
        $8,$9,$10,$11,
        $12,$13,$14,$15)
ON CONFLICT (id) DO UPDATE SET
 status = EXCLUDED.status,
 high = EXCLUDED.high,
 medium = EXCLUDED.medium,
 low = EXCLUDED.low,
 issues_total = EXCLUDED.issues_total,
 issues_json = EXCLUDED.issues_json,
 summary = EXCLUDED.summary,
 model = EXCLUDED.model,
 duration_ms = EXCLUDED.duration_ms;`

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
	const q = `
SELECT id, tenant_id, asset_id, asset_kind, asset_url, triggered_at, status,
       high, medium, low, issues_total, issues_json, summary, model, duration_ms
FROM compliance_reviews
WHERE tenant_id=$1 AND id=$2 LIMIT 1;`
	row := r.db.QueryRowContext(ctx, q, tenant, id)
	return scanReview(row.Scan)
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
WHERE tenant_id=$1 ORDER BY triggered_at DESC, id DESC LIMIT $2;`
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
WHERE tenant_id=$1 AND triggered_at >= $2;`
	var t, h, m, l int
	if err := r.db.QueryRowContext(ctx, q, tenant, cut).Scan(&t, &h, &m, &l); err != nil {
		return 0, 0, 0, 0, err
	}
	return t, h, m, l, nil
}

// Paginate with offset + limit; supports the status/kind/summary filters
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
WHERE tenant_id=$1`
	args := []interface{}{tenant}
	n := 2
	if filters != nil {
		if v, ok := filters["status"]; ok {
			query += " AND status = $" + strconv.Itoa(n)
			args = append(args, v)
			n++
		}
		if v, ok := filters["kind"]; ok {
			query += " AND asset_kind = $" + strconv.Itoa(n)
			args = append(args, v)
			n++
		}
		if v, ok := filters["summary"]; ok {
			term, _ := v.(string)
			query += " AND summary LIKE $" + strconv.Itoa(n)
			args = append(args, "%"+escapeLikePattern(term)+"%")
			n++
		}
	}
	query += " ORDER BY triggered_at DESC, id DESC LIMIT $" + strconv.Itoa(n) + " OFFSET $" + strconv.Itoa(n+1)
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

	countQ := "SELECT COUNT(*) FROM compliance_reviews WHERE tenant_id=$1"
	countArgs := []interface{}{tenant}
	cn := 2
	if filters != nil {
		if v, ok := filters["status"]; ok {
			countQ += " AND status = $" + strconv.Itoa(cn)
			countArgs = append(countArgs, v)
			cn++
		}
		if v, ok := filters["kind"]; ok {
			countQ += " AND asset_kind = $" + strconv.Itoa(cn)
			countArgs = append(countArgs, v)
			cn++
		}
		if v, ok := filters["summary"]; ok {
			term, _ := v.(string)
			countQ += " AND summary LIKE $" + strconv.Itoa(cn)
			countArgs = append(countArgs, "%"+escapeLikePattern(term)+"%")
			cn++
		}
	}
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
	const q = `UPDATE compliance_reviews SET status=$1 WHERE tenant_id=$2 AND id=$3;`
	_, err := r.db.ExecContext(ctx, q, status, tenant, id)
	return err
}

// UpdateResult update hasil review
func (r *ReviewRepository) UpdateResult(ctx context.Context, tenant string, id domain.ReviewID, status domain.Status,
	counts issues.SeverityCounts, list []issues.Issue, summary string, durationMS int64) error {
	const q = `
UPDATE compliance_reviews
SET status=$1, high=$2, medium=$3, low=$4, issues_total=$5,
    issues_json=$6, summary=$7, duration_ms=$8
WHERE tenant_id=$9 AND id=$10;`
	_, err := r.db.ExecContext(ctx, q,
		status, counts.High, counts.Medium, counts.Low, counts.Total,
		marshalIssues(list), summary, durationMS,
		tenant, id,
	)
	return err
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

func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// escapeLikePattern escapes LIKE wildcards so user input matches literally
func escapeLikePattern(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
