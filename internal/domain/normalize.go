package domain

import (
	"sort"
	"strings"
)

// NormalizeText trims, case-folds and collapses inner whitespace.
// Two values that normalize to the same string are considered equal
// by every exact-match aspect and consensus rule.
func NormalizeText(s string) string {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if normalized == "" {
		return ""
	}
	return strings.Join(strings.Fields(normalized), " ")
}

// NormalizeSet normalizes every member, drops blanks, de-duplicates and sorts.
// The result is order-insensitive, so two sets are equal iff their normalized
// slices are equal. Returns nil for an empty set.
func NormalizeSet(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		n := NormalizeText(v)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}

// EqualSets reports whether two normalized sets hold the same members.
func EqualSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
