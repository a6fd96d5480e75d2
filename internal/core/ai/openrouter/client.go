package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fridge-recipes/internal/infrastructure/config"
	"fridge-recipes/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Message is one chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a chat completion request.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
}

// Response is the subset of the chat completion response we read.
type Response struct {
	ID      string    `json:"id"`
	Choices []Choice  `json:"choices"`
	Usage   UsageInfo `json:"usage"`
}

// Choice is one completion choice.
type Choice struct {
	Message Message `json:"message"`
}

// UsageInfo reports token usage.
type UsageInfo struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Error is the API error envelope.
type Error struct {
	Error struct {
		Message string      `json:"message"`
		Type    string      `json:"type"`
		Code    interface{} `json:"code"`
	} `json:"error"`
}

type recipeEnvelope struct {
	Recipes []json.RawMessage `json:"recipes"`
}

// Client generates draft recipes through OpenRouter chat completions.
type Client struct {
	client      *resty.Client
	model       string
	maxTokens   int
	recipeCount int
}

// NewClient creates an OpenRouter client.
func NewClient(cfg config.OpenRouterConfig) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey)).
		SetHeader("Content-Type", "application/json").
		SetHeader("HTTP-Referer", "https://fridge-recipes.app").
		SetHeader("X-Title", "Fridge Recipes")

	return &Client{
		client:      client,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		recipeCount: cfg.RecipeCount,
	}
}

// Generate asks the model for recipes using the given ingredients.
func (c *Client) Generate(ctx context.Context, ingredients []string) ([]common.DraftRecipe, error) {
	req := &Request{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: "You are a cooking assistant. Reply with JSON only."},
			{Role: "user", Content: buildPrompt(ingredients, c.recipeCount)},
		},
		MaxTokens:   c.maxTokens,
		Temperature: 0.7,
	}

	start := time.Now()
	var result Response
	var apiErr Error
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		SetError(&apiErr).
		Post("/chat/completions")
	if err != nil {
		common.LogUpstreamCall("openrouter", time.Since(start), err)
		return nil, fmt.Errorf("failed to send request to OpenRouter: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		msg := apiErr.Error.Message
		if msg == "" {
			msg = resp.String()
		}
		err := fmt.Errorf("OpenRouter API returned %d: %s", resp.StatusCode(), msg)
		common.LogUpstreamCall("openrouter", time.Since(start), err)
		return nil, err
	}
	common.LogUpstreamCall("openrouter", time.Since(start), nil)

	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("no choices in OpenRouter response")
	}

	drafts, err := ParseDrafts(result.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	common.LogDebug("Recipes generated",
		zap.Int("count", len(drafts)),
		zap.Int("total_tokens", result.Usage.TotalTokens),
	)
	return drafts, nil
}

// ParseDrafts extracts {"recipes": [...]} from model output, tolerating
// markdown fences and surrounding prose. Each draft is decoded on its own:
// a draft with badly typed fields is kept in degraded form, and entries that
// are not JSON objects are dropped.
func ParseDrafts(content string) ([]common.DraftRecipe, error) {
	var envelope recipeEnvelope
	if err := common.ParseJSON(common.ExtractJSONObject(content), &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse generated recipes: %w", err)
	}
	if envelope.Recipes == nil {
		return nil, fmt.Errorf("generated output has no recipes")
	}

	drafts := make([]common.DraftRecipe, 0, len(envelope.Recipes))
	for i, raw := range envelope.Recipes {
		draft, ok := decodeDraft(raw)
		if !ok {
			common.LogWarn("Dropping generated recipe that is not an object", zap.Int("index", i))
			continue
		}
		drafts = append(drafts, draft)
	}
	return drafts, nil
}

// decodeDraft decodes one draft. When the object does not fit DraftRecipe,
// only a readable title survives; ingredients are left unset so the recipe
// is priced as malformed.
func decodeDraft(raw json.RawMessage) (common.DraftRecipe, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return common.DraftRecipe{}, false
	}

	var draft common.DraftRecipe
	err := common.ParseJSONBytes(raw, &draft)
	if err == nil {
		return draft, true
	}

	var fields map[string]json.RawMessage
	if err := common.ParseJSONBytes(raw, &fields); err != nil {
		return common.DraftRecipe{}, false
	}
	degraded := common.DraftRecipe{DetailedIngredients: []common.DetailedIngredient{}}
	_ = json.Unmarshal(fields["title"], &degraded.Title)

	common.LogWarn("Generated recipe has malformed fields",
		zap.String("title", degraded.Title),
		zap.Error(err),
	)
	return degraded, true
}

func buildPrompt(ingredients []string, count int) string {
	return fmt.Sprintf(`Suggest %d recipes that mainly use these ingredients: %s.
Respond with a JSON object of the form:
{"recipes": [{"title": string, "ingredients": [{"name": string, "amount": number, "unit": string}],
"carbon_impact": number, "water_impact": number, "calories": number, "protein": number,
"detailed_ingredients": [{"ingredient": string, "amount": string, "unit": string}]}]}
carbon_impact is kg CO2e and water_impact is litres, both per serving.`,
		count, strings.Join(ingredients, ", "))
}
