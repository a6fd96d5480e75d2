package recipe

import (
	"context"
	"errors"
	"net/http"
	"time"

	"fridge-recipes/internal/core/pricing"
	recipeService "fridge-recipes/internal/core/recipe"
	"fridge-recipes/internal/pkg/common"
	"fridge-recipes/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ImageDecoder validates an uploaded base64 image.
type ImageDecoder interface {
	Decode(imageData string) ([]byte, error)
}

// RecipeAssembler produces priced recipes for an ingredient list.
type RecipeAssembler interface {
	Assemble(ctx context.Context, ingredients []string, coords *pricing.Coordinates) ([]common.Recipe, error)
}

// FridgeRequest is the fridge scan request body.
type FridgeRequest struct {
	ImageBase64 string   `json:"imageBase64"`
	Ingredients []string `json:"ingredients"`
	Latitude    *float64 `json:"latitude" binding:"omitempty,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude" binding:"omitempty,gte=-180,lte=180"`
}

// FridgeResponse is the fridge scan response body.
type FridgeResponse struct {
	Ingredients  []string        `json:"ingredients"`
	Recipes      []common.Recipe `json:"recipes"`
	SavedRecipes []common.Recipe `json:"savedRecipes"`
}

// Handler serves the fridge scan endpoint.
type Handler struct {
	images    ImageDecoder
	detector  recipeService.LabelDetector
	assembler RecipeAssembler
}

// NewHandler creates a Handler.
func NewHandler(images ImageDecoder, detector recipeService.LabelDetector, assembler RecipeAssembler) *Handler {
	return &Handler{
		images:    images,
		detector:  detector,
		assembler: assembler,
	}
}

// HandleFridgeScan detects ingredients from an image and/or takes them from
// the request, then returns priced recipes for them.
func (h *Handler) HandleFridgeScan(c *gin.Context) {
	requestID := common.RequestID(c)

	var req FridgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("Invalid fridge scan request",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		common.WriteError(c, common.ErrInvalidRequest.Wrap(err))
		return
	}
	if req.ImageBase64 == "" && len(req.Ingredients) == 0 {
		common.WriteError(c, common.ErrMissingInput)
		return
	}

	ctx := c.Request.Context()

	var detected []string
	if req.ImageBase64 != "" {
		labels, err := h.detectLabels(ctx, req.ImageBase64)
		if err != nil {
			writeError(c, requestID, err)
			return
		}
		detected = labels
	}

	ingredients := recipeService.MergeIngredients(detected, req.Ingredients)
	if len(ingredients) == 0 {
		common.WriteError(c, common.ErrNoIngredients)
		return
	}

	common.LogDebug("Fridge ingredients resolved",
		zap.String("request_id", requestID),
		zap.Int("detected", len(detected)),
		zap.Int("manual", len(req.Ingredients)),
		zap.Strings("ingredients", ingredients),
	)

	recipes, err := h.assembler.Assemble(ctx, ingredients, pricing.NewCoordinates(req.Latitude, req.Longitude))
	if err != nil {
		writeError(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, FridgeResponse{
		Ingredients:  ingredients,
		Recipes:      recipes,
		SavedRecipes: []common.Recipe{},
	})
}

func (h *Handler) detectLabels(ctx context.Context, imageData string) ([]string, error) {
	data, err := h.images.Decode(imageData)
	if err != nil {
		common.LogWarn("Rejected fridge image",
			zap.String("image_type", describeImage(imageData)),
			zap.Int("payload_length", len(imageData)),
			zap.Error(err),
		)
		return nil, err
	}

	start := time.Now()
	labels, err := h.detector.DetectLabels(ctx, data)
	metrics.ObserveUpstream("vision", start, err)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, common.ErrLabelDetection.Wrap(err)
	}
	return labels, nil
}

func writeError(c *gin.Context, requestID string, err error) {
	if ce, ok := common.AsCustomError(err); ok {
		common.LogWarn("Fridge scan failed",
			zap.String("request_id", requestID),
			zap.String("code", ce.Code),
			zap.Error(err),
		)
		common.WriteError(c, ce)
		return
	}

	if errors.Is(err, context.DeadlineExceeded) {
		common.LogError("Fridge scan timed out", zap.String("request_id", requestID), zap.Error(err))
		common.WriteError(c, common.ErrRequestTimeout)
		return
	}

	common.LogError("Fridge scan failed", zap.String("request_id", requestID), zap.Error(err))
	common.WriteError(c, common.ErrInternalError)
}
