package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aaravmahajanofficial/marketplace-catalog/internal/config"
	"github.com/hellofresh/health-go/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthy(context.Context) error { return nil }

func failing(context.Context) error { return errors.New("connection refused") }

func newHealth(t *testing.T, checks ...health.Config) *health.Health {
	t.Helper()

	h, err := health.New(component(), health.WithChecks(checks...))
	require.NoError(t, err)

	return h
}

func serve(t *testing.T, handler http.Handler) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health/full", nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))

	return rr, body
}

func TestFullHandler(t *testing.T) {
	redisCache := config.CacheConfig{Enabled: true, Backend: config.CacheBackendRedis}

	t.Run("All dependencies up", func(t *testing.T) {
		// Arrange
		h := newHealth(t,
			health.Config{Name: databaseCheck, Check: healthy},
			health.Config{Name: cacheCheck, SkipOnErr: true, Check: healthy},
		)

		// Act
		rr, body := serve(t, fullHandler(h, redisCache))

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, string(health.StatusOK), body["status"])
		assert.Equal(t, CacheStatusUp, body["cache"])
	})

	t.Run("Cache down is not fatal", func(t *testing.T) {
		// Arrange
		h := newHealth(t,
			health.Config{Name: databaseCheck, Check: healthy},
			health.Config{Name: cacheCheck, SkipOnErr: true, Check: failing},
		)

		// Act
		rr, body := serve(t, fullHandler(h, redisCache))

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, string(health.StatusPartiallyAvailable), body["status"])
		assert.Equal(t, CacheStatusDown, body["cache"])
	})

	t.Run("Database down is fatal", func(t *testing.T) {
		// Arrange
		h := newHealth(t, health.Config{Name: databaseCheck, Check: failing})

		// Act
		rr, body := serve(t, fullHandler(h, config.CacheConfig{Enabled: true, Backend: config.CacheBackendMemory}))

		// Assert
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.Equal(t, string(health.StatusUnavailable), body["status"])
		assert.Equal(t, CacheStatusUp, body["cache"])
	})

	t.Run("Cache disabled", func(t *testing.T) {
		// Arrange
		h := newHealth(t, health.Config{Name: databaseCheck, Check: healthy})

		// Act
		rr, body := serve(t, fullHandler(h, config.CacheConfig{Enabled: false}))

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, CacheStatusDisabled, body["cache"])
		assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
	})
}

func TestNewLivenessHandler(t *testing.T) {
	// Arrange
	handler, err := NewLivenessHandler()
	require.NoError(t, err)

	// Act
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	// Assert
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), componentName)
}
