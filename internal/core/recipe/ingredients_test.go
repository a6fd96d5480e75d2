package recipe

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlattenIngredients(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   []string
		wantOK bool
	}{
		{"strings", `["tomato", " rice "]`, []string{"tomato", "rice"}, true},
		{"object with numeric amount", `[{"name": "chicken", "amount": 200, "unit": "g"}]`, []string{"chicken (200g)"}, true},
		{"object with string amount", `[{"name": "milk", "amount": "1.5", "unit": " cup"}]`, []string{"milk (1.5cup)"}, true},
		{"object without amount", `[{"name": "salt"}]`, []string{"salt"}, true},
		{"mixed", `["egg", {"name": "flour", "amount": 2, "unit": "cup"}]`, []string{"egg", "flour (2cup)"}, true},
		{"skips unusable entries", `["", 42, null, {"amount": 1}, ["nested"], "basil"]`, []string{"basil"}, true},
		{"empty array", `[]`, []string{}, true},
		{"null", `null`, []string{}, false},
		{"missing", ``, []string{}, false},
		{"not an array", `{"name": "tomato"}`, []string{}, false},
		{"garbage", `tomato, rice`, []string{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FlattenIngredients(json.RawMessage(tt.raw))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMergeIngredients(t *testing.T) {
	got := MergeIngredients(
		[]string{"Tomato", "cheese", "tomato"},
		[]string{" Rice ", "", "cheese", "basil"},
	)
	assert.Equal(t, []string{"tomato", "cheese", "rice", "basil"}, got)

	assert.Empty(t, MergeIngredients(nil, []string{"  ", ""}))
}
