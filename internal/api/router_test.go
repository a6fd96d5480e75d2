package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fridge-recipes/internal/api/middleware"
	"fridge-recipes/internal/core/pricing"
	"fridge-recipes/internal/core/recipe/cache"
	"fridge-recipes/internal/infrastructure/config"
	"fridge-recipes/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubImages struct{}

func (stubImages) Decode(imageData string) ([]byte, error) { return []byte(imageData), nil }

type stubDetector struct{}

func (stubDetector) DetectLabels(ctx context.Context, image []byte) ([]string, error) {
	return []string{"tomato"}, nil
}

type stubAssembler struct {
	block bool
}

func (s stubAssembler) Assemble(ctx context.Context, ingredients []string, coords *pricing.Coordinates) ([]common.Recipe, error) {
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return []common.Recipe{{ID: "r1", Title: "Salad", Ingredients: ingredients}}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App:       config.AppConfig{Version: "test"},
		Server:    config.ServerConfig{RequestTimeout: time.Second, MaxBodyBytes: 1 << 20},
		RateLimit: config.RateLimitConfig{Enabled: false},
	}
}

func testDeps(assembler stubAssembler) Dependencies {
	return Dependencies{
		Images:       stubImages{},
		Detector:     stubDetector{},
		Assembler:    assembler,
		CacheStats:   func() cache.Stats { return cache.Stats{Capacity: 100} },
		Deduplicator: middleware.NewDeduplicator(time.Minute),
	}
}

func post(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recipes/fridge", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSetupRouter_Routes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := SetupRouter(testConfig(), testDeps(stubAssembler{}))

	for _, path := range []string{"/health", "/ready", "/live", "/metrics"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	w := post(r, `{"ingredients": ["rice"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Contains(t, w.Body.String(), `"savedRecipes":[]`)
}

func TestSetupRouter_DuplicateRequestRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := SetupRouter(testConfig(), testDeps(stubAssembler{}))

	assert.Equal(t, http.StatusOK, post(r, `{"ingredients": ["rice"]}`).Code)
	assert.Equal(t, http.StatusTooManyRequests, post(r, `{"ingredients": ["rice"]}`).Code)
	assert.Equal(t, http.StatusOK, post(r, `{"ingredients": ["egg"]}`).Code)
}

func TestSetupRouter_RateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, Requests: 2, Window: time.Hour}
	r := SetupRouter(cfg, testDeps(stubAssembler{}))

	assert.Equal(t, http.StatusOK, post(r, `{"ingredients": ["a"]}`).Code)
	assert.Equal(t, http.StatusOK, post(r, `{"ingredients": ["b"]}`).Code)

	w := post(r, `{"ingredients": ["c"]}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// probes are not rate limited
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/live", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSetupRouter_BodyTooLarge(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	cfg.Server.MaxBodyBytes = 16
	r := SetupRouter(cfg, testDeps(stubAssembler{}))

	w := post(r, `{"ingredients": ["a very long ingredient name"]}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestSetupRouter_RequestTimeout(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	cfg.Server.RequestTimeout = 50 * time.Millisecond
	r := SetupRouter(cfg, testDeps(stubAssembler{block: true}))

	w := post(r, `{"ingredients": ["rice"]}`)
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Contains(t, w.Body.String(), common.ErrCodeRequestTimeout)
}
