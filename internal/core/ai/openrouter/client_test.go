package openrouter

import (
	"context"
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
	return NewClient(config.OpenRouterConfig{
		APIKey:      "test-key",
		BaseURL:     srv.URL,
		Model:       "test/model",
		MaxTokens:   500,
		Timeout:     2 * time.Second,
		RecipeCount: 2,
	})
}

func completion(content string) map[string]interface{} {
	return map[string]interface{}{
		"id": "gen-1",
		"choices": []map[string]interface{}{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	}
}

func TestClient_Generate(t *testing.T) {
	var got Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completion("```json\n" +
			`{"recipes": [{"title": "Tomato Rice", "ingredients": ["tomato", {"name": "rice", "amount": 200, "unit": "g"}], "calories": 350}]}` +
			"\n```"))
	})

	drafts, err := c.Generate(context.Background(), []string{"tomato", "rice"})
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "Tomato Rice", drafts[0].Title)
	assert.Equal(t, 350.0, drafts[0].Calories)
	assert.JSONEq(t, `["tomato", {"name": "rice", "amount": 200, "unit": "g"}]`, string(drafts[0].Ingredients))

	assert.Equal(t, "test/model", got.Model)
	assert.Equal(t, 500, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Contains(t, got.Messages[1].Content, "Suggest 2 recipes")
	assert.Contains(t, got.Messages[1].Content, "tomato, rice")
}

func TestClient_Generate_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "rate limited", "code": 429}}`))
	})

	_, err := c.Generate(context.Background(), []string{"tomato"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "rate limited")
}

func TestClient_Generate_NoChoices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "gen-1", "choices": []}`))
	})

	_, err := c.Generate(context.Background(), []string{"tomato"})
	assert.ErrorContains(t, err, "no choices")
}

func TestClient_Generate_ContextCanceled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Generate(ctx, []string{"tomato"})
	require.Error(t, err)
}

func TestParseDrafts(t *testing.T) {
	drafts, err := ParseDrafts(`Here you go: {"recipes": [{"title": "A", "ingredients": null}]} enjoy`)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "A", drafts[0].Title)

	_, err = ParseDrafts("sorry, I cannot help with that")
	assert.Error(t, err)

	_, err = ParseDrafts(`{"meals": []}`)
	assert.ErrorContains(t, err, "no recipes")
}

func TestParseDrafts_MalformedDraftIsIsolated(t *testing.T) {
	tests := []struct {
		name string
		bad  string
	}{
		{"detailed ingredients not a list", `{"title": "Soup", "ingredients": ["leek"], "detailed_ingredients": "n/a"}`},
		{"calories with units", `{"title": "Soup", "ingredients": ["leek"], "calories": "450 kcal"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := `{"recipes": [{"title": "Tomato Rice", "ingredients": ["tomato", "rice"], "calories": 350}, ` + tt.bad + `]}`

			drafts, err := ParseDrafts(content)
			require.NoError(t, err)
			require.Len(t, drafts, 2)

			assert.Equal(t, "Tomato Rice", drafts[0].Title)
			assert.Equal(t, 350.0, drafts[0].Calories)
			assert.JSONEq(t, `["tomato", "rice"]`, string(drafts[0].Ingredients))

			assert.Equal(t, "Soup", drafts[1].Title)
			assert.Nil(t, drafts[1].Ingredients)
			assert.Equal(t, 0.0, drafts[1].Calories)
			assert.NotNil(t, drafts[1].DetailedIngredients)
			assert.Empty(t, drafts[1].DetailedIngredients)
		})
	}
}

func TestParseDrafts_DropsNonObjectEntries(t *testing.T) {
	drafts, err := ParseDrafts(`{"recipes": ["just a title", null, 42, {"title": "Kept", "ingredients": []}, {"title": 7, "protein": "lots"}]}`)
	require.NoError(t, err)
	require.Len(t, drafts, 2)
	assert.Equal(t, "Kept", drafts[0].Title)
	assert.Equal(t, "", drafts[1].Title)
	assert.Nil(t, drafts[1].Ingredients)
}

func TestClient_Generate_MalformedDraftDoesNotFailBatch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completion(
			`{"recipes": [{"title": "Good", "ingredients": ["rice"]}, {"title": "Bad", "detailed_ingredients": "n/a"}]}`))
	})

	drafts, err := c.Generate(context.Background(), []string{"rice"})
	require.NoError(t, err)
	require.Len(t, drafts, 2)
	assert.Equal(t, "Good", drafts[0].Title)
	assert.Equal(t, "Bad", drafts[1].Title)
}
