package pricing

import (
	"context"
	"math"
)

// Estimator prices ingredient lists.
type Estimator struct {
	table       *PriceTable
	multipliers *RegionMultipliers
	resolver    *RegionResolver
}

// NewEstimator wires the price tables and resolver together.
func NewEstimator(table *PriceTable, multipliers *RegionMultipliers, resolver *RegionResolver) *Estimator {
	return &Estimator{
		table:       table,
		multipliers: multipliers,
		resolver:    resolver,
	}
}

// Resolver exposes the region resolver so callers pricing many lists can
// resolve once per request.
func (e *Estimator) Resolver() *RegionResolver {
	return e.resolver
}

// Estimate resolves the region for coords and prices ingredients there.
func (e *Estimator) Estimate(ctx context.Context, ingredients []string, coords *Coordinates) float64 {
	return e.EstimateForRegion(ingredients, e.resolver.Resolve(ctx, coords))
}

// EstimateForRegion sums base price x regional multiplier over ingredients,
// rounded to cents. Unknown ingredients and regions fall back to defaults.
func (e *Estimator) EstimateForRegion(ingredients []string, countryCode string) float64 {
	multiplier := e.multipliers.Multiplier(countryCode)

	var total float64
	for _, ingredient := range ingredients {
		total += e.table.Lookup(Normalize(ingredient)) * multiplier
	}
	return RoundCents(total)
}

// RoundCents rounds to two decimal places.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
