package domain

import (
	"errors"
	"regexp"
	"slices"
	"strings"
)

// ErrTooFewPlatforms is returned when a selection has fewer than two usable names.
var ErrTooFewPlatforms = errors.New("select at least two solutions to form an agent concept")

const (
	MinAgentPlatforms = 2
	MaxAgentPlatforms = 3
)

var (
	spaceRun      = regexp.MustCompile(`\s+`)
	pairSeparator = regexp.MustCompile(`\+|&|→|->|—|–`)
	nonAlnum      = regexp.MustCompile(`[^a-z0-9\s]`)
)

// normalizeName folds a platform name for key comparison.
func normalizeName(name string) string {
	return spaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), " ")
}

// AgentKey is the order-independent identity of a platform combination.
// Names are trimmed and case-folded, so permutations and case variants of
// the same set share a key.
func AgentKey(names []string) string {
	parts := make([]string, 0, len(names))
	for _, n := range names {
		if n = normalizeName(n); n != "" {
			parts = append(parts, n)
		}
	}
	slices.Sort(parts)
	return strings.Join(parts, "|")
}

// SelectNames trims and de-duplicates names, keeping the first three.
// Duplicates are detected case-insensitively; the first spelling wins.
func SelectNames(names []string) ([]string, error) {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, MaxAgentPlatforms)
	for _, n := range names {
		n = strings.TrimSpace(n)
		k := normalizeName(n)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, n)
	}
	if len(out) < MinAgentPlatforms {
		return nil, ErrTooFewPlatforms
	}
	if len(out) > MaxAgentPlatforms {
		out = out[:MaxAgentPlatforms]
	}
	return out, nil
}

// CanonicalPair normalizes a heatmap pair label such as "SAP + Salesforce"
// or "Salesforce → SAP" to an order-independent key.
func CanonicalPair(pair string) string {
	parts := make([]string, 0, 2)
	for _, p := range pairSeparator.Split(pair, -1) {
		p = nonAlnum.ReplaceAllString(strings.ToLower(p), "")
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	slices.Sort(parts)
	return strings.Join(parts, "|")
}

// PairKey is the canonical key for two platform names.
func PairKey(a, b string) string {
	return CanonicalPair(a + " + " + b)
}
