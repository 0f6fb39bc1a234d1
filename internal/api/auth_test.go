package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"kladovka/internal/config"

	"github.com/stretchr/testify/assert"
)

func testAuthConfig() config.APIConfig {
	return config.APIConfig{
		Enabled: true,
		HTTP:    config.APIHTTPConfig{Enabled: true},
		Auth: config.APIAuthConfig{
			Enabled:      true,
			HeaderAPIKey: "x-api-key",
			HeaderExtra:  "x-api-extra",
			APIKeys: []config.APIClientKey{
				{Key: "full-key", Extra: "full-extra", Name: "admin"},
				{Key: "cells-key", Extra: "cells-extra", Name: "catalog", Permissions: []string{"manage:cells"}},
			},
		},
		RateLimit: config.APIRateLimitConfig{RPS: 100, Burst: 200},
	}
}

func wrapOK(auth *HTTPAuth) http.Handler {
	return auth.Wrap(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestHTTPAuth(t *testing.T) {
	auth := NewHTTPAuth(testAuthConfig())
	handler := wrapOK(auth)

	t.Run("PublicRouteWithoutKey", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/cells", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("AdminRouteWithoutKey", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/cells", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("InvalidExtra", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/cells", nil)
		req.Header.Set("x-api-key", "full-key")
		req.Header.Set("x-api-extra", "wrong")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("FullAccessKey", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/rentals/1", nil)
		req.Header.Set("x-api-key", "full-key")
		req.Header.Set("x-api-extra", "full-extra")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("ScopedKeyAllowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/cells", nil)
		req.Header.Set("x-api-key", "cells-key")
		req.Header.Set("x-api-extra", "cells-extra")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("ScopedKeyDenied", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/rentals", nil)
		req.Header.Set("x-api-key", "cells-key")
		req.Header.Set("x-api-extra", "cells-extra")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestHTTPAuthRateLimit(t *testing.T) {
	cfg := testAuthConfig()
	cfg.RateLimit = config.APIRateLimitConfig{RPS: 1, Burst: 2}
	handler := wrapOK(NewHTTPAuth(cfg))

	statuses := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/cells", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		statuses = append(statuses, rec.Code)
	}

	assert.Equal(t, http.StatusOK, statuses[0])
	assert.Equal(t, http.StatusOK, statuses[1])
	assert.Equal(t, http.StatusTooManyRequests, statuses[2])
	assert.Equal(t, http.StatusTooManyRequests, statuses[3])
}

func TestEndpointLabel(t *testing.T) {
	assert.Equal(t, "/api/cells/:id/quote", endpointLabel("/api/cells/42/quote"))
	assert.Equal(t, "/api/auth/session/:token/confirm", endpointLabel("/api/auth/session/0b38a1f2-9c1d-4a6b-8f50-1d2e3f405162/confirm"))
	assert.Equal(t, "/api/rentals", endpointLabel("/api/rentals"))
}
