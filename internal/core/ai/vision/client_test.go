package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fridge-recipes/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.VisionConfig{
		APIKey:     "vision-key",
		BaseURL:    srv.URL,
		MaxResults: 5,
		MinScore:   0.6,
		Timeout:    2 * time.Second,
	})
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestClient_DetectLabels(t *testing.T) {
	image := []byte("fake-image-bytes")
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/images:annotate", r.URL.Path)
		assert.Equal(t, "vision-key", r.URL.Query().Get("key"))

		var req annotateRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if assert.Len(t, req.Requests, 1) {
			assert.Equal(t, base64.StdEncoding.EncodeToString(image), req.Requests[0].Image.Content)
			assert.Equal(t, []feature{{Type: "LABEL_DETECTION", MaxResults: 5}}, req.Requests[0].Features)
		}

		writeJSON(w, http.StatusOK, `{"responses": [{"labelAnnotations": [
			{"description": "Food", "score": 0.99},
			{"description": "Tomato", "score": 0.95},
			{"description": "Cheese", "score": 0.81},
			{"description": "tomato", "score": 0.75},
			{"description": "Ingredient", "score": 0.7},
			{"description": "Basil", "score": 0.4}
		]}]}`)
	})

	labels, err := c.DetectLabels(context.Background(), image)
	require.NoError(t, err)
	assert.Equal(t, []string{"tomato", "cheese"}, labels)
}

func TestClient_DetectLabels_NoLabels(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"responses": [{}]}`)
	})

	labels, err := c.DetectLabels(context.Background(), []byte("img"))
	require.NoError(t, err)
	assert.Empty(t, labels)
}

func TestClient_DetectLabels_Errors(t *testing.T) {
	t.Run("http error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusForbidden, `{"error": {"code": 403, "message": "API key not valid"}}`)
		})
		_, err := c.DetectLabels(context.Background(), []byte("img"))
		assert.ErrorContains(t, err, "API key not valid")
	})

	t.Run("per-image error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"responses": [{"error": {"code": 3, "message": "Bad image data."}}]}`)
		})
		_, err := c.DetectLabels(context.Background(), []byte("img"))
		assert.ErrorContains(t, err, "Bad image data.")
	})
}
