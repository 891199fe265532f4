package reconcile

import (
	"fmt"

	"github.com/credtally/credtally/pkg/errors"
)

// Defaults for the matching heuristics.
const (
	// DefaultThreshold is the minimum score a candidate pair needs to be
	// considered by the resolver.
	DefaultThreshold = 0.80

	// DefaultFuzzyThreshold is the minimum edit-similarity ratio for a
	// fuzzy match to produce a score at all.
	DefaultFuzzyThreshold = 0.80

	// DefaultMinSubstringLength guards substring matching against trivial
	// short-string collisions: the shorter key must be at least this long.
	// Short nested names like "yaml" inside "pyyaml" fall through to the
	// fuzzy strategy instead of auto-matching on containment.
	DefaultMinSubstringLength = 5
)

// options holds the matching configuration. It is read-only during a
// run; per-call tuning goes through the Option functions.
type options struct {
	threshold          float64
	fuzzyThreshold     float64
	fuzzySet           bool
	minSubstringLength int
}

// Option configures a reconciliation run.
type Option func(*options)

// WithThreshold sets the minimum score for a candidate pair to be
// committed by the resolver.
func WithThreshold(threshold float64) Option {
	return func(o *options) {
		o.threshold = threshold
	}
}

// WithFuzzyThreshold sets the minimum edit-similarity ratio for fuzzy
// matching independently of the resolver threshold. Without it the
// fuzzy gate follows WithThreshold.
func WithFuzzyThreshold(threshold float64) Option {
	return func(o *options) {
		o.fuzzyThreshold = threshold
		o.fuzzySet = true
	}
}

// WithMinSubstringLength sets the minimum length of the shorter key for
// substring matching to apply.
func WithMinSubstringLength(length int) Option {
	return func(o *options) {
		o.minSubstringLength = length
	}
}

// newOptions applies the given options over the defaults and validates
// the result. Out-of-range thresholds are a configuration error
// reported before any matching occurs, never silently clamped.
func newOptions(opts []Option) (*options, error) {
	o := &options{
		threshold:          DefaultThreshold,
		fuzzyThreshold:     DefaultFuzzyThreshold,
		minSubstringLength: DefaultMinSubstringLength,
	}
	for _, opt := range opts {
		opt(o)
	}
	if !o.fuzzySet {
		o.fuzzyThreshold = o.threshold
	}

	if o.threshold < 0 || o.threshold > 1 {
		return nil, errors.NewValidationError("threshold", o.threshold,
			fmt.Sprintf("must be in [0,1], got %v", o.threshold))
	}
	if o.fuzzyThreshold < 0 || o.fuzzyThreshold > 1 {
		return nil, errors.NewValidationError("fuzzy_threshold", o.fuzzyThreshold,
			fmt.Sprintf("must be in [0,1], got %v", o.fuzzyThreshold))
	}
	if o.minSubstringLength < 1 {
		return nil, errors.NewValidationError("min_substring_length", o.minSubstringLength,
			"must be at least 1")
	}

	return o, nil
}
