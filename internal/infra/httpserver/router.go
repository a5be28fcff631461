package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appanalytics "github.com/bryanwahyu/brandlens/internal/application/analytics"
	appreviews "github.com/bryanwahyu/brandlens/internal/application/reviews"
	domai "github.com/bryanwahyu/brandlens/internal/domain/ai"
	"github.com/bryanwahyu/brandlens/internal/domain/assets"
	"github.com/bryanwahyu/brandlens/internal/domain/issues"
	"github.com/bryanwahyu/brandlens/internal/domain/overlay"
	domain "github.com/bryanwahyu/brandlens/internal/domain/reviews"
	"github.com/bryanwahyu/brandlens/internal/middleware"
)

type Router struct {
	reviewsSvc   *appreviews.Service
	analyticsSvc *appanalytics.Service
	maxUpload    int64
}

func NewRouter(reviewsSvc *appreviews.Service, analyticsSvc *appanalytics.Service, maxUploadBytes int64) http.Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 200 << 20
	}
	r := &Router{reviewsSvc: reviewsSvc, analyticsSvc: analyticsSvc, maxUpload: maxUploadBytes}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1/{tenant}", func(rt chi.Router) {
		rt.Post("/assets", r.wrap(r.handleUploadAsset))
		rt.Get("/assets/latest", r.wrap(r.handleLatestAssets))
		rt.Get("/assets/{id}", r.wrap(r.handleGetAsset))

		rt.Post("/reviews", r.wrap(r.handleStartReview))
		rt.Get("/reviews/latest", r.wrap(r.handleLatestReviews))
		rt.Get("/reviews", r.wrap(r.handleListReviews))
		rt.Get("/reviews/{id}", r.wrap(r.handleGetReview))
		rt.Get("/reviews/{id}/errors", r.wrap(r.handleReviewErrors))
		rt.Get("/reviews/{id}/markers", r.wrap(r.handleMarkers))
		rt.Get("/reviews/{id}/select/{issue}", r.wrap(r.handleSelect))

		rt.Get("/dashboard", r.wrap(r.handleDashboard))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			if errors.Is(err, domai.ErrQuotaExceeded) {
				http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}

// POST /v1/{tenant}/assets  (multipart form: file, optional page_count/duration_seconds)
func (r *Router) handleUploadAsset(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")

	req.Body = http.MaxBytesReader(w, req.Body, r.maxUpload)
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "file too large", http.StatusRequestEntityTooLarge)
		return nil
	}

	file, header, err := req.FormFile("file")
	if err != nil {
		http.Error(w, "failed to get file", http.StatusBadRequest)
		return nil
	}
	defer file.Close()

	if err := middleware.ValidateUploadFilename(header.Filename); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}
	contentType := header.Header.Get("Content-Type")
	if err := middleware.ValidateContentType(contentType); err != nil {
		http.Error(w, err.Error(), http.StatusUnsupportedMediaType)
		return nil
	}

	pageCount, _ := strconv.Atoi(req.FormValue("page_count"))
	duration, _ := strconv.ParseFloat(req.FormValue("duration_seconds"), 64)

	asset, err := r.reviewsSvc.UploadAsset(req.Context(), appreviews.UploadAssetCommand{
		TenantID:        tenant,
		Filename:        header.Filename,
		ContentType:     contentType,
		Size:            header.Size,
		Body:            file,
		PageCount:       pageCount,
		DurationSeconds: duration,
	})
	if err != nil {
		return err
	}
	middleware.IncrementUploads()

	w.WriteHeader(http.StatusCreated)
	return writeJSON(w, asset)
}

// GET /v1/{tenant}/assets/latest?limit=20
func (r *Router) handleLatestAssets(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.reviewsSvc.LatestAssets(req.Context(), tenant, limit)
	if err != nil {
		return err
	}
	return writeJSON(w, list)
}

// GET /v1/{tenant}/assets/{id}
func (r *Router) handleGetAsset(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")

	asset, err := r.reviewsSvc.GetAsset(req.Context(), tenant, assets.AssetID(id))
	if err != nil {
		return err
	}
	return writeJSON(w, asset)
}

// POST /v1/{tenant}/reviews
// Body: {"asset_id": "<id>"}
// The review is queued and analyzed in the background; poll GET /reviews/{id}.
func (r *Router) handleStartReview(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	var body struct {
		AssetID string `json:"asset_id"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}
	if body.AssetID == "" {
		return fmt.Errorf("asset_id is required")
	}

	review, err := r.reviewsSvc.StartReview(req.Context(), appreviews.StartReviewCommand{
		TenantID: tenant,
		AssetID:  body.AssetID,
	})
	if err != nil {
		return err
	}
	middleware.IncrementReviews()

	// Jalankan di background, biar jalan sampai selesai
	go func() {
		middleware.IncrementReviewsRunning()
		defer middleware.DecrementReviewsRunning()

		result, err := r.reviewsSvc.RunReviewUntilDone(tenant, review.ID)
		if err != nil {
			middleware.IncrementReviewsFailed()
			log.Printf("background review error: tenant=%s review=%s asset=%s err=%v",
				tenant, review.ID, body.AssetID, err)
			return
		}
		log.Printf("review finished: tenant=%s review=%s issues=%d",
			tenant, review.ID, result.Counts.Total)
	}()

	// langsung balikin respons ke client
	resp := map[string]any{
		"id":       review.ID,
		"status":   review.Status,
		"tenant":   tenant,
		"asset_id": body.AssetID,
		"message":  "review started in background",
		"queuedAt": review.TriggeredAt,
	}
	w.WriteHeader(http.StatusAccepted)
	return writeJSON(w, resp)
}

// GET /v1/{tenant}/reviews/latest?limit=20
func (r *Router) handleLatestReviews(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.reviewsSvc.Latest(req.Context(), tenant, limit)
	if err != nil {
		return err
	}
	return writeJSON(w, list)
}

// GET /v1/{tenant}/reviews?page=&page_size=&status=&kind=
func (r *Router) handleListReviews(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))

	filters := map[string]interface{}{}
	if v := req.URL.Query().Get("status"); v != "" {
		filters["status"] = v
	}
	if v := req.URL.Query().Get("kind"); v != "" {
		if err := middleware.ValidateAssetKind(v); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return nil
		}
		filters["kind"] = v
	}
	if v := req.URL.Query().Get("q"); v != "" {
		// free-text match over the review summary (mysql only)
		filters["summary"] = v
	}

	list, err := r.reviewsSvc.Paginate(req.Context(), tenant, page, size, filters)
	if err != nil {
		return err
	}
	return writeJSON(w, list)
}

// GET /v1/{tenant}/reviews/{id}
func (r *Router) handleGetReview(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")

	review, err := r.reviewsSvc.Get(req.Context(), tenant, domain.ReviewID(id))
	if err != nil {
		return err
	}
	return writeJSON(w, review)
}

// GET /v1/{tenant}/reviews/{id}/errors?limit=20
func (r *Router) handleReviewErrors(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.reviewsSvc.ListErrors(req.Context(), tenant, id, limit)
	if err != nil {
		return err
	}
	return writeJSON(w, list)
}

// GET /v1/{tenant}/reviews/{id}/markers?page=2
// GET /v1/{tenant}/reviews/{id}/markers?time=12.4&selected=iss-3
// Returns the markers visible for the supplied view state. The caller passes
// its view state on every call; the server holds none of it.
func (r *Router) handleMarkers(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")
	q := req.URL.Query()

	view := overlay.ViewState{
		SelectedID: issues.IssueID(q.Get("selected")),
	}
	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			http.Error(w, "invalid page", http.StatusBadRequest)
			return nil
		}
		view.Page = page
	} else {
		view.Page = 1
	}
	if v := q.Get("time"); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil || t < 0 {
			http.Error(w, "invalid time", http.StatusBadRequest)
			return nil
		}
		view.PlaybackTime = t
	}

	markers, err := r.reviewsSvc.Markers(req.Context(), tenant, domain.ReviewID(id), view)
	if err != nil {
		return err
	}
	return writeJSON(w, markers)
}

// GET /v1/{tenant}/reviews/{id}/select/{issue}
func (r *Router) handleSelect(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")
	issueID := chi.URLParam(req, "issue")

	intent, err := r.reviewsSvc.Select(req.Context(), tenant, domain.ReviewID(id), issues.IssueID(issueID))
	if err != nil {
		return err
	}
	return writeJSON(w, intent)
}

// GET /v1/{tenant}/dashboard?days=7
func (r *Router) handleDashboard(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	days, _ := strconv.Atoi(req.URL.Query().Get("days"))

	summary, err := r.analyticsSvc.Summary(req.Context(), tenant, days)
	if err != nil {
		return err
	}
	return writeJSON(w, summary)
}
