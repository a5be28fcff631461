package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
}

func TestAPIKeyAuth(t *testing.T) {
	keys := map[string]string{"acme": "secret-key"}
	h := APIKeyAuth(keys)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(GetTenantFromContext(r.Context())))
	}))

	// missing header
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/acme/reviews", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// wrong key
	req := httptest.NewRequest(http.MethodGet, "/v1/acme/reviews", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// valid key resolves the tenant into the context
	req = httptest.NewRequest(http.MethodGet, "/v1/acme/reviews", nil)
	req.Header.Set("Authorization", "Bearer secret-key")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "acme", rec.Body.String())

	// bare key without Bearer prefix also works
	req = httptest.NewRequest(http.MethodGet, "/v1/acme/reviews", nil)
	req.Header.Set("Authorization", "secret-key")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// health endpoint skips auth entirely
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTokenBucket(t *testing.T) {
	tb := NewTokenBucket(3, 1)
	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter(2, 1)
	h := rl.Middleware(okHandler())

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/acme/reviews", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/acme/reviews", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// separate tenant gets its own bucket
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/rival/reviews", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// health is never limited
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestValidateUploadFilename(t *testing.T) {
	assert.NoError(t, ValidateUploadFilename("banner.png"))
	assert.Error(t, ValidateUploadFilename(""))
	assert.Error(t, ValidateUploadFilename("  "))
	assert.Error(t, ValidateUploadFilename(".."))
	assert.Error(t, ValidateUploadFilename("a/b.png"))
	assert.Error(t, ValidateUploadFilename("bad\x00name"))
}

func TestValidateContentType(t *testing.T) {
	assert.NoError(t, ValidateContentType("image/png"))
	assert.NoError(t, ValidateContentType("video/mp4"))
	assert.NoError(t, ValidateContentType("application/pdf"))
	assert.NoError(t, ValidateContentType("application/vnd.ms-powerpoint"))
	assert.NoError(t, ValidateContentType(""))
	assert.NoError(t, ValidateContentType("application/octet-stream"))
	assert.Error(t, ValidateContentType("application/x-executable"))
}

func TestValidateAssetKind(t *testing.T) {
	assert.NoError(t, ValidateAssetKind("image"))
	assert.NoError(t, ValidateAssetKind("Podcast"))
	assert.Error(t, ValidateAssetKind("archive"))
}
