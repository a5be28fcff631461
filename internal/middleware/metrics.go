package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"
)

// Metrics stores application metrics
type Metrics struct {
	RequestsTotal      uint64
	RequestsInProgress uint64
	RequestsSuccess    uint64
	RequestsFailed     uint64
	ReviewsTotal       uint64
	ReviewsRunning     uint64
	ReviewsFailed      uint64
	UploadsTotal       uint64
	StartTime          time.Time
}

var globalMetrics = &Metrics{
	StartTime: time.Now(),
}

// IncrementRequests increments total request counter
func IncrementRequests() {
	atomic.AddUint64(&globalMetrics.RequestsTotal, 1)
}

// IncrementSuccess increments successful request counter
func IncrementSuccess() {
	atomic.AddUint64(&globalMetrics.RequestsSuccess, 1)
}

// IncrementFailed increments failed request counter
func IncrementFailed() {
	atomic.AddUint64(&globalMetrics.RequestsFailed, 1)
}

// IncrementReviews increments total review counter
func IncrementReviews() {
	atomic.AddUint64(&globalMetrics.ReviewsTotal, 1)
}

// IncrementReviewsRunning increments running review counter
func IncrementReviewsRunning() {
	atomic.AddUint64(&globalMetrics.ReviewsRunning, 1)
}

// DecrementReviewsRunning decrements running review counter
func DecrementReviewsRunning() {
	atomic.AddUint64(&globalMetrics.ReviewsRunning, ^uint64(0))
}

// IncrementReviewsFailed increments failed review counter
func IncrementReviewsFailed() {
	atomic.AddUint64(&globalMetrics.ReviewsFailed, 1)
}

// IncrementUploads increments asset upload counter
func IncrementUploads() {
	atomic.AddUint64(&globalMetrics.UploadsTotal, 1)
}

// GetMetrics returns current metrics
func GetMetrics() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return map[string]interface{}{
		"requests_total":   atomic.LoadUint64(&globalMetrics.RequestsTotal),
		"requests_success": atomic.LoadUint64(&globalMetrics.RequestsSuccess),
		"requests_failed":  atomic.LoadUint64(&globalMetrics.RequestsFailed),
		"reviews_total":    atomic.LoadUint64(&globalMetrics.ReviewsTotal),
		"reviews_running":  atomic.LoadUint64(&globalMetrics.ReviewsRunning),
		"reviews_failed":   atomic.LoadUint64(&globalMetrics.ReviewsFailed),
		"uploads_total":    atomic.LoadUint64(&globalMetrics.UploadsTotal),
		"uptime_seconds":   time.Since(globalMetrics.StartTime).Seconds(),
		"goroutines":       runtime.NumGoroutine(),
		"heap_alloc_bytes": m.HeapAlloc,
		"heap_sys_bytes":   m.HeapSys,
		"num_gc":           m.NumGC,
	}
}

// MetricsHandler exposes metrics as JSON
func MetricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(GetMetrics())
}

// MetricsMiddleware counts requests and outcomes
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		IncrementRequests()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		if wrapped.statusCode < 500 {
			IncrementSuccess()
		} else {
			IncrementFailed()
		}
	})
}
