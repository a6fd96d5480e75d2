package recipe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fridge-recipes/internal/core/pricing"
	"fridge-recipes/internal/core/recipe/cache"
	"fridge-recipes/internal/pkg/common"
	"fridge-recipes/internal/pkg/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Generator produces draft recipes for an ingredient list.
type Generator interface {
	Generate(ctx context.Context, ingredients []string) ([]common.DraftRecipe, error)
}

// LabelDetector returns candidate food labels for an image.
type LabelDetector interface {
	DetectLabels(ctx context.Context, image []byte) ([]string, error)
}

// SharedStore is a cache tier shared between instances.
type SharedStore interface {
	Get(ctx context.Context, key string) ([]common.Recipe, bool, error)
	Set(ctx context.Context, key string, recipes []common.Recipe) error
}

// Assembler turns an ingredient list into priced recipes, memoized per
// ingredient set.
type Assembler struct {
	generator Generator
	estimator *pricing.Estimator
	cache     *cache.Manager
	shared    SharedStore
	now       func() time.Time
	newID     func() string
}

// Option customizes an Assembler.
type Option func(*Assembler)

// WithSharedStore adds a second cache tier consulted after a memory miss.
func WithSharedStore(s SharedStore) Option {
	return func(a *Assembler) { a.shared = s }
}

// WithClock overrides the created_at clock.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) { a.now = now }
}

// WithIDGenerator overrides recipe ID generation.
func WithIDGenerator(newID func() string) Option {
	return func(a *Assembler) { a.newID = newID }
}

// NewAssembler creates an Assembler around an explicitly owned cache.
func NewAssembler(generator Generator, estimator *pricing.Estimator, recipeCache *cache.Manager, opts ...Option) *Assembler {
	a := &Assembler{
		generator: generator,
		estimator: estimator,
		cache:     recipeCache,
		now:       time.Now,
		newID:     common.GenerateUUID,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble returns priced recipes for ingredients, which must already be
// cleaned (lowercase, trimmed, non-empty). A cached result is returned as is,
// without re-pricing. Nothing is cached when an error is returned.
func (a *Assembler) Assemble(ctx context.Context, ingredients []string, coords *pricing.Coordinates) ([]common.Recipe, error) {
	if len(ingredients) == 0 {
		return nil, common.ErrNoIngredients
	}

	key := cache.Key(ingredients)
	if recipes, ok := a.cache.Get(key); ok {
		return recipes, nil
	}
	if recipes, ok := a.sharedGet(ctx, key); ok {
		a.cache.Put(key, recipes)
		return recipes, nil
	}

	start := time.Now()
	drafts, err := a.generator.Generate(ctx, ingredients)
	metrics.ObserveUpstream("generator", start, err)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("recipe generation aborted: %w", errors.Join(ctxErr, err))
		}
		return nil, common.ErrGenerationFailed.Wrap(err)
	}

	// one region lookup per request, shared by every recipe
	region := a.estimator.Resolver().Resolve(ctx, coords)
	createdAt := a.now().UTC()

	recipes := make([]common.Recipe, len(drafts))
	var g errgroup.Group
	for i := range drafts {
		i := i
		g.Go(func() error {
			recipes[i] = a.priceDraft(drafts[i], region, createdAt)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("recipe assembly aborted: %w", err)
	}

	a.cache.Put(key, recipes)
	a.sharedSet(ctx, key, recipes)

	common.LogInfo("Recipes assembled",
		zap.Int("ingredient_count", len(ingredients)),
		zap.Int("recipe_count", len(recipes)),
		zap.String("region", region),
		zap.Duration("duration", time.Since(start)),
	)

	return recipes, nil
}

func (a *Assembler) priceDraft(draft common.DraftRecipe, region string, createdAt time.Time) common.Recipe {
	ingredients, ok := FlattenIngredients(draft.Ingredients)

	var cost float64
	if ok {
		cost = a.estimator.EstimateForRegion(ingredients, region)
		metrics.RecipesPriced.WithLabelValues("false").Inc()
	} else {
		common.LogWarn("Draft recipe has malformed ingredients, pricing at zero",
			zap.String("title", draft.Title),
		)
		metrics.RecipesPriced.WithLabelValues("true").Inc()
	}

	detailed := draft.DetailedIngredients
	if detailed == nil {
		detailed = []common.DetailedIngredient{}
	}

	return common.Recipe{
		ID:                  a.newID(),
		Title:               draft.Title,
		Ingredients:         ingredients,
		EstimatedCost:       cost,
		CarbonImpact:        draft.CarbonImpact,
		WaterImpact:         draft.WaterImpact,
		Calories:            draft.Calories,
		Protein:             draft.Protein,
		DetailedIngredients: detailed,
		CreatedAt:           createdAt,
	}
}

func (a *Assembler) sharedGet(ctx context.Context, key string) ([]common.Recipe, bool) {
	if a.shared == nil {
		return nil, false
	}
	recipes, ok, err := a.shared.Get(ctx, key)
	if err != nil {
		common.LogWarn("Shared recipe cache lookup failed", zap.Error(err))
		return nil, false
	}
	return recipes, ok
}

func (a *Assembler) sharedSet(ctx context.Context, key string, recipes []common.Recipe) {
	if a.shared == nil {
		return
	}
	if err := a.shared.Set(ctx, key, recipes); err != nil {
		common.LogWarn("Shared recipe cache write failed", zap.Error(err))
	}
}

// CacheStats exposes the memory tier statistics.
func (a *Assembler) CacheStats() cache.Stats {
	return a.cache.GetStats()
}
