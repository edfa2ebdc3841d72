// Package expand implements the rate expansion engine: it turns the sparse
// set of AI-extracted rate samples into the full deterministic cross product
// of (date period x meal plan x room category x room type) with stable
// grouping card ids, and derives the dependent inventory skeletons.
//
// This file holds the pure coercion helpers applied at the expansion
// boundary so the cross-product loop itself stays free of parsing concerns.
// Contract values arrive as strings (the extraction normalizer stringifies
// whatever JSON shape the model produced) and frequently carry junk such as
// currency suffixes ("250 USD") or percent signs.
package expand

import (
	"strconv"
	"strings"
)

// Money parses s as a decimal after stripping every character that is not a
// digit, '.', or '-'. Empty or unparseable input yields def. A parsed zero
// is kept as zero: only absent or garbage values fall back to the default.
func Money(s string, def float64) float64 {
	cleaned := stripNonNumeric(s)
	if cleaned == "" {
		return def
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return def
	}
	return v
}

// Int parses s as a base-10 integer, tolerating surrounding whitespace and a
// trailing decimal part ("2.0" parses as 2). Empty or unparseable input
// yields def.
func Int(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return def
}

// BoundedInt parses s like Int and clamps negative results up to zero.
// Occupancy and allotment columns use it: a negative occupancy is always
// extraction noise, never data.
func BoundedInt(s string, def int) int {
	v := Int(s, def)
	if v < 0 {
		return 0
	}
	return v
}

// firstNonEmpty returns the first non-empty string among the candidates,
// or the final fallback when all are empty.
func firstNonEmpty(fallback string, candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return fallback
}

// stripNonNumeric removes everything except digits, '.', and '-'.
func stripNonNumeric(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
