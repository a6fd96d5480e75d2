// Package vision detects food labels in images with Google Cloud Vision.
package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fridge-recipes/internal/infrastructure/config"
	"fridge-recipes/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// genericLabels are category labels that never name an ingredient.
var genericLabels = map[string]bool{
	"food":              true,
	"ingredient":        true,
	"produce":           true,
	"natural foods":     true,
	"whole food":        true,
	"local food":        true,
	"superfood":         true,
	"recipe":            true,
	"cuisine":           true,
	"dish":              true,
	"meal":              true,
	"tableware":         true,
	"serveware":         true,
	"plate":             true,
	"bowl":              true,
	"kitchen appliance": true,
	"refrigerator":      true,
	"major appliance":   true,
	"shelf":             true,
	"plastic":           true,
	"container":         true,
	"food storage":      true,
	"food group":        true,
	"staple food":       true,
	"vegan nutrition":   true,
	"vegetarian food":   true,
	"plant":             true,
}

type annotateRequest struct {
	Requests []imageRequest `json:"requests"`
}

type imageRequest struct {
	Image    imageContent `json:"image"`
	Features []feature    `json:"features"`
}

type imageContent struct {
	Content string `json:"content"`
}

type feature struct {
	Type       string `json:"type"`
	MaxResults int    `json:"maxResults,omitempty"`
}

type annotateResponse struct {
	Responses []struct {
		LabelAnnotations []labelAnnotation `json:"labelAnnotations"`
		Error            *apiStatus        `json:"error,omitempty"`
	} `json:"responses"`
}

type labelAnnotation struct {
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

type apiStatus struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error apiStatus `json:"error"`
}

// Client is a LABEL_DETECTION client.
type Client struct {
	client     *resty.Client
	apiKey     string
	maxResults int
	minScore   float64
}

// NewClient creates a Vision client.
func NewClient(cfg config.VisionConfig) *Client {
	return &Client{
		client: resty.New().
			SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
			SetTimeout(cfg.Timeout).
			SetHeader("Content-Type", "application/json"),
		apiKey:     cfg.APIKey,
		maxResults: cfg.MaxResults,
		minScore:   cfg.MinScore,
	}
}

// DetectLabels returns lowercased, de-duplicated ingredient candidates for
// image, highest score first.
func (c *Client) DetectLabels(ctx context.Context, image []byte) ([]string, error) {
	body := annotateRequest{
		Requests: []imageRequest{{
			Image:    imageContent{Content: base64.StdEncoding.EncodeToString(image)},
			Features: []feature{{Type: "LABEL_DETECTION", MaxResults: c.maxResults}},
		}},
	}

	start := time.Now()
	var result annotateResponse
	var apiErr errorEnvelope
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetBody(body).
		SetResult(&result).
		SetError(&apiErr).
		Post("/images:annotate")
	if err != nil {
		common.LogUpstreamCall("vision", time.Since(start), err)
		return nil, fmt.Errorf("failed to send request to Vision API: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		msg := apiErr.Error.Message
		if msg == "" {
			msg = resp.Status()
		}
		err := fmt.Errorf("Vision API returned %d: %s", resp.StatusCode(), msg)
		common.LogUpstreamCall("vision", time.Since(start), err)
		return nil, err
	}
	common.LogUpstreamCall("vision", time.Since(start), nil)

	if len(result.Responses) == 0 {
		return []string{}, nil
	}
	if e := result.Responses[0].Error; e != nil {
		return nil, fmt.Errorf("Vision API image error %d: %s", e.Code, e.Message)
	}

	labels := c.filterLabels(result.Responses[0].LabelAnnotations)
	common.LogDebug("Labels detected", zap.Strings("labels", labels))
	return labels, nil
}

func (c *Client) filterLabels(annotations []labelAnnotation) []string {
	seen := make(map[string]bool, len(annotations))
	labels := make([]string, 0, len(annotations))
	for _, a := range annotations {
		label := strings.ToLower(strings.TrimSpace(a.Description))
		if label == "" || a.Score < c.minScore || genericLabels[label] || seen[label] {
			continue
		}
		seen[label] = true
		labels = append(labels, label)
	}
	return labels
}
