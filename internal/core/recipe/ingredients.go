package recipe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"fridge-recipes/internal/core/pricing"
	"fridge-recipes/internal/pkg/common"
)

// draftIngredient is the object form of a draft ingredient entry.
type draftIngredient struct {
	Name   string            `json:"name"`
	Amount common.FlexString `json:"amount"`
	Unit   string            `json:"unit"`
}

// FlattenIngredients renders a draft recipe's raw ingredient list as display
// strings. It reports false when the list is missing or not a JSON array;
// individual entries that cannot be rendered are skipped.
func FlattenIngredients(raw json.RawMessage) ([]string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []string{}, false
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return []string{}, false
	}

	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		if s, ok := renderIngredient(entry); ok {
			out = append(out, s)
		}
	}
	return out, true
}

func renderIngredient(entry json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(entry, &s); err == nil {
		s = strings.TrimSpace(s)
		return s, s != ""
	}

	var obj draftIngredient
	if err := json.Unmarshal(entry, &obj); err != nil {
		return "", false
	}
	name := strings.TrimSpace(obj.Name)
	if name == "" {
		return "", false
	}
	if amount := strings.TrimSpace(obj.Amount.String()); amount != "" {
		return fmt.Sprintf("%s (%s%s)", name, amount, strings.TrimSpace(obj.Unit)), true
	}
	return name, true
}

// MergeIngredients unions detected labels with manually entered ingredients.
// Manual entries are lowercased and trimmed, empties dropped; first
// occurrence order is preserved.
func MergeIngredients(detected, manual []string) []string {
	seen := make(map[string]bool, len(detected)+len(manual))
	merged := make([]string, 0, len(detected)+len(manual))

	add := func(items []string) {
		for _, item := range items {
			if seen[item] {
				continue
			}
			seen[item] = true
			merged = append(merged, item)
		}
	}
	add(pricing.CleanManualIngredients(detected))
	add(pricing.CleanManualIngredients(manual))
	return merged
}
