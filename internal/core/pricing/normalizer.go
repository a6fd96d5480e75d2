package pricing

import (
	"regexp"
	"strings"
)

// quantityPattern matches a quantity glued to a known unit, e.g. "200g", "2 tbsp", "1.5 kg".
var quantityPattern = regexp.MustCompile(`(?i)\b\d+(?:[.,]\d+)?\s*(?:pieces|piece|slices|slice|tbsp|tsp|cup|kg|ml|oz|lb|g|l)\b`)

// Normalize lowercases raw, strips quantity/unit tokens and trims whitespace.
// It is idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(raw string) string {
	s := strings.ToLower(raw)
	// removing one token can bring a number and a unit together ("1 200g g"),
	// so strip until nothing matches
	for {
		next := quantityPattern.ReplaceAllString(s, "")
		if next == s {
			break
		}
		s = next
	}
	return strings.TrimSpace(s)
}

// NormalizeList applies Normalize to every element. Empty results and
// duplicates are kept.
func NormalizeList(raws []string) []string {
	out := make([]string, len(raws))
	for i, raw := range raws {
		out[i] = Normalize(raw)
	}
	return out
}

// CleanManualIngredients lowercases and trims user-entered ingredients and
// drops entries that end up empty.
func CleanManualIngredients(raws []string) []string {
	out := make([]string, 0, len(raws))
	for _, raw := range raws {
		s := strings.ToLower(strings.TrimSpace(raw))
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
