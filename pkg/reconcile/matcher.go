package reconcile

import "strings"

// Method identifies which matching strategy produced a score. Higher
// values are stronger and win ties in the resolver.
type Method int

// Matching strategies, in ascending priority order.
const (
	// MethodNone means the pair did not match under any strategy.
	MethodNone Method = iota
	// MethodFuzzy is an edit-similarity match between the two keys.
	MethodFuzzy
	// MethodSubstring means one key contains the other.
	MethodSubstring
	// MethodExact means the normalized keys are identical.
	MethodExact
)

// String returns a string representation of the Method.
func (m Method) String() string {
	switch m {
	case MethodExact:
		return "exact"
	case MethodSubstring:
		return "substring"
	case MethodFuzzy:
		return "fuzzy"
	default:
		return "none"
	}
}

// Match scores, by strategy.
const (
	exactScore     = 1.0
	substringScore = 0.85
)

// score computes the similarity between two normalized keys, applying
// the first strategy that matches: exact identity, substring containment
// (guarded by a minimum length on the shorter key), then fuzzy
// edit-similarity against the configured threshold. A pair below the
// fuzzy threshold scores zero.
func score(a, b string, opts *options) (float64, Method) {
	if a == "" || b == "" {
		return 0, MethodNone
	}

	if a == b {
		return exactScore, MethodExact
	}

	shorter := len(a)
	if len(b) < shorter {
		shorter = len(b)
	}
	if shorter >= opts.minSubstringLength && (strings.Contains(a, b) || strings.Contains(b, a)) {
		return substringScore, MethodSubstring
	}

	if ratio := similarity(a, b); ratio >= opts.fuzzyThreshold {
		return ratio, MethodFuzzy
	}

	return 0, MethodNone
}

// similarity returns an alignment-based similarity ratio in [0,1]: the
// length of the longest common subsequence over the length of the longer
// key. Identical keys score 1, disjoint keys score 0, and a short name
// nested in a much longer one scores low, which is exactly why the
// substring strategy outranks this one.
func similarity(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	// Single-row LCS table; a few hundred entries per inventory keeps
	// the quadratic cost irrelevant.
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}

	longer := len(a)
	if len(b) > longer {
		longer = len(b)
	}
	return float64(prev[len(b)]) / float64(longer)
}
