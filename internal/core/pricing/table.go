package pricing

import (
	"fmt"
	"strings"
)

const (
	// DefaultKey names the fallback entry of both tables.
	DefaultKey = "default"

	DefaultBasePrice  = 2.0
	DefaultMultiplier = 1.0
)

// PriceEntry is the base USD price of one canonical ingredient key.
type PriceEntry struct {
	Key          string  `json:"key"`
	BasePriceUSD float64 `json:"base_price_usd"`
}

// PriceTable matches normalized ingredients against an ordered list of keys.
// Order matters: the first key contained in the ingredient wins, so more
// specific keys must be declared before broader ones.
type PriceTable struct {
	entries      []PriceEntry
	defaultPrice float64
}

// NewPriceTable builds a table from entries in declaration order.
func NewPriceTable(entries []PriceEntry, defaultPrice float64) (*PriceTable, error) {
	seen := make(map[string]bool, len(entries))
	cleaned := make([]PriceEntry, 0, len(entries))
	for _, e := range entries {
		key := strings.ToLower(strings.TrimSpace(e.Key))
		if key == "" {
			return nil, fmt.Errorf("price entry with empty key")
		}
		if key == DefaultKey {
			defaultPrice = e.BasePriceUSD
			continue
		}
		if seen[key] {
			return nil, fmt.Errorf("duplicate price key %q", key)
		}
		if e.BasePriceUSD < 0 {
			return nil, fmt.Errorf("negative price for %q", key)
		}
		seen[key] = true
		cleaned = append(cleaned, PriceEntry{Key: key, BasePriceUSD: e.BasePriceUSD})
	}
	if defaultPrice < 0 {
		return nil, fmt.Errorf("negative default price")
	}
	return &PriceTable{entries: cleaned, defaultPrice: defaultPrice}, nil
}

// Lookup returns the base price of the first key contained in normalized,
// or the default price when nothing matches.
func (t *PriceTable) Lookup(normalized string) float64 {
	price, _ := t.Match(normalized)
	return price
}

// Match is Lookup that also reports which key matched ("default" on fallback).
func (t *PriceTable) Match(normalized string) (float64, string) {
	for _, e := range t.entries {
		if strings.Contains(normalized, e.Key) {
			return e.BasePriceUSD, e.Key
		}
	}
	return t.defaultPrice, DefaultKey
}

// DefaultPrice is the price used for unmatched ingredients.
func (t *PriceTable) DefaultPrice() float64 {
	return t.defaultPrice
}

// Entries returns a copy of the table in declaration order.
func (t *PriceTable) Entries() []PriceEntry {
	out := make([]PriceEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// RegionMultipliers scales base prices by country.
type RegionMultipliers struct {
	byCountry         map[string]float64
	defaultMultiplier float64
}

// NewRegionMultipliers builds the table. Keys are uppercased; a "default"
// key overrides defaultMultiplier.
func NewRegionMultipliers(multipliers map[string]float64, defaultMultiplier float64) (*RegionMultipliers, error) {
	byCountry := make(map[string]float64, len(multipliers))
	for code, m := range multipliers {
		if m <= 0 {
			return nil, fmt.Errorf("multiplier for %q must be positive", code)
		}
		if strings.EqualFold(code, DefaultKey) {
			defaultMultiplier = m
			continue
		}
		byCountry[strings.ToUpper(strings.TrimSpace(code))] = m
	}
	if defaultMultiplier <= 0 {
		return nil, fmt.Errorf("default multiplier must be positive")
	}
	return &RegionMultipliers{byCountry: byCountry, defaultMultiplier: defaultMultiplier}, nil
}

// Multiplier returns the multiplier for countryCode, falling back to the default.
func (r *RegionMultipliers) Multiplier(countryCode string) float64 {
	if m, ok := r.byCountry[strings.ToUpper(countryCode)]; ok {
		return m
	}
	return r.defaultMultiplier
}

// DefaultPriceTable is the built-in grocery price list (USD per typical recipe portion).
func DefaultPriceTable() *PriceTable {
	t, err := NewPriceTable(defaultPriceEntries, DefaultBasePrice)
	if err != nil {
		panic(err)
	}
	return t
}

// DefaultRegionMultipliers is the built-in cost-of-living table.
func DefaultRegionMultipliers() *RegionMultipliers {
	r, err := NewRegionMultipliers(defaultMultipliers, DefaultMultiplier)
	if err != nil {
		panic(err)
	}
	return r
}

var defaultPriceEntries = []PriceEntry{
	{Key: "chicken breast", BasePriceUSD: 3.5},
	{Key: "chicken", BasePriceUSD: 3.0},
	{Key: "ground beef", BasePriceUSD: 4.5},
	{Key: "beef", BasePriceUSD: 5.0},
	{Key: "pork", BasePriceUSD: 4.0},
	{Key: "bacon", BasePriceUSD: 3.5},
	{Key: "salmon", BasePriceUSD: 6.0},
	{Key: "tuna", BasePriceUSD: 2.5},
	{Key: "shrimp", BasePriceUSD: 5.5},
	{Key: "fish", BasePriceUSD: 4.5},
	{Key: "tofu", BasePriceUSD: 2.0},
	{Key: "eggplant", BasePriceUSD: 0.9},
	{Key: "egg", BasePriceUSD: 0.3},
	{Key: "milk", BasePriceUSD: 1.0},
	{Key: "butter", BasePriceUSD: 0.8},
	{Key: "cheese", BasePriceUSD: 1.5},
	{Key: "yogurt", BasePriceUSD: 1.0},
	{Key: "cream", BasePriceUSD: 1.2},
	{Key: "brown rice", BasePriceUSD: 1.2},
	{Key: "rice", BasePriceUSD: 1.0},
	{Key: "pasta", BasePriceUSD: 1.0},
	{Key: "noodle", BasePriceUSD: 1.0},
	{Key: "bread", BasePriceUSD: 0.5},
	{Key: "flour", BasePriceUSD: 0.3},
	{Key: "oat", BasePriceUSD: 0.4},
	{Key: "quinoa", BasePriceUSD: 1.5},
	{Key: "lentil", BasePriceUSD: 0.8},
	{Key: "chickpea", BasePriceUSD: 0.8},
	{Key: "bean", BasePriceUSD: 0.8},
	{Key: "sweet potato", BasePriceUSD: 0.8},
	{Key: "potato", BasePriceUSD: 0.5},
	{Key: "tomato", BasePriceUSD: 0.5},
	{Key: "onion", BasePriceUSD: 0.3},
	{Key: "garlic", BasePriceUSD: 0.2},
	{Key: "ginger", BasePriceUSD: 0.3},
	{Key: "bell pepper", BasePriceUSD: 0.8},
	{Key: "pepper", BasePriceUSD: 0.6},
	{Key: "carrot", BasePriceUSD: 0.3},
	{Key: "broccoli", BasePriceUSD: 1.0},
	{Key: "cauliflower", BasePriceUSD: 1.2},
	{Key: "spinach", BasePriceUSD: 1.0},
	{Key: "kale", BasePriceUSD: 1.2},
	{Key: "lettuce", BasePriceUSD: 0.8},
	{Key: "cabbage", BasePriceUSD: 0.6},
	{Key: "cucumber", BasePriceUSD: 0.5},
	{Key: "zucchini", BasePriceUSD: 0.7},
	{Key: "mushroom", BasePriceUSD: 1.0},
	{Key: "corn", BasePriceUSD: 0.5},
	{Key: "pea", BasePriceUSD: 0.5},
	{Key: "avocado", BasePriceUSD: 1.2},
	{Key: "lemon", BasePriceUSD: 0.4},
	{Key: "lime", BasePriceUSD: 0.3},
	{Key: "apple", BasePriceUSD: 0.5},
	{Key: "banana", BasePriceUSD: 0.25},
	{Key: "orange", BasePriceUSD: 0.5},
	{Key: "berry", BasePriceUSD: 2.0},
	{Key: "olive oil", BasePriceUSD: 0.4},
	{Key: "oil", BasePriceUSD: 0.2},
	{Key: "soy sauce", BasePriceUSD: 0.2},
	{Key: "honey", BasePriceUSD: 0.5},
	{Key: "sugar", BasePriceUSD: 0.1},
	{Key: "salt", BasePriceUSD: 0.05},
	{Key: "herb", BasePriceUSD: 0.5},
	{Key: "nut", BasePriceUSD: 1.5},
}

var defaultMultipliers = map[string]float64{
	"US": 1.0,
	"CA": 1.1,
	"MX": 0.6,
	"BR": 0.6,
	"AR": 0.5,
	"GB": 1.1,
	"IE": 1.15,
	"FR": 1.1,
	"DE": 1.05,
	"ES": 0.9,
	"IT": 1.0,
	"NL": 1.1,
	"SE": 1.2,
	"NO": 1.4,
	"CH": 1.6,
	"PL": 0.7,
	"TR": 0.5,
	"RU": 0.6,
	"IN": 0.3,
	"PK": 0.3,
	"BD": 0.3,
	"CN": 0.6,
	"JP": 1.2,
	"KR": 1.1,
	"SG": 1.2,
	"TH": 0.5,
	"VN": 0.4,
	"ID": 0.4,
	"PH": 0.5,
	"AU": 1.2,
	"NZ": 1.2,
	"ZA": 0.6,
	"NG": 0.4,
	"EG": 0.3,
	"KE": 0.4,
	"AE": 1.0,
	"SA": 0.9,
	"IL": 1.3,
}
