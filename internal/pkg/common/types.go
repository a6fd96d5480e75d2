package common

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// FlexString accepts a JSON string or number. Model output is inconsistent
// about quoting amounts ("200" vs 200).
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if v, err := strconv.ParseFloat(n.String(), 64); err == nil {
		*f = FlexString(strconv.FormatFloat(v, 'f', -1, 64))
		return nil
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string {
	return string(f)
}

// DetailedIngredient is one structured ingredient line of a recipe.
type DetailedIngredient struct {
	Ingredient string     `json:"ingredient"`
	Amount     FlexString `json:"amount"`
	Unit       string     `json:"unit"`
}

// DraftRecipe is an unpriced recipe as returned by the recipe-text generator.
// Ingredients stay raw: entries may be strings, {name, amount, unit} objects,
// or the whole field may be null or malformed.
type DraftRecipe struct {
	Title               string               `json:"title"`
	Ingredients         json.RawMessage      `json:"ingredients"`
	CarbonImpact        float64              `json:"carbon_impact"`
	WaterImpact         float64              `json:"water_impact"`
	Calories            float64              `json:"calories"`
	Protein             float64              `json:"protein"`
	DetailedIngredients []DetailedIngredient `json:"detailed_ingredients"`
}

// Recipe is a priced recipe. Values are never mutated once cached.
type Recipe struct {
	ID                  string               `json:"id"`
	Title               string               `json:"title"`
	Ingredients         []string             `json:"ingredients"`
	EstimatedCost       float64              `json:"estimated_cost"`
	CarbonImpact        float64              `json:"carbon_impact"`
	WaterImpact         float64              `json:"water_impact"`
	Calories            float64              `json:"calories"`
	Protein             float64              `json:"protein"`
	DetailedIngredients []DetailedIngredient `json:"detailed_ingredients"`
	CreatedAt           time.Time            `json:"created_at"`
}
