package reconcile

import (
	"sort"
	"strings"

	"github.com/credtally/credtally/pkg/credits"
	"github.com/credtally/credtally/pkg/inventory"
)

// Match is a committed pairing between a detected component and a
// documented record, with the score and strategy that produced it.
type Match struct {
	DetectedName      string  `json:"detected_name" yaml:"detected_name"`
	DocumentedName    string  `json:"documented_name" yaml:"documented_name"`
	DetectedVersion   string  `json:"detected_version,omitempty" yaml:"detected_version,omitempty"`
	DocumentedVersion string  `json:"documented_version,omitempty" yaml:"documented_version,omitempty"`
	Origin            string  `json:"origin,omitempty" yaml:"origin,omitempty"` // Where the detected side was found
	Score             float64 `json:"score" yaml:"score"`
	Method            string  `json:"method" yaml:"method"`
}

// Summary holds the four classification counts.
type Summary struct {
	Correct           int `json:"correct" yaml:"correct"`
	VersionMismatch   int `json:"version_mismatches" yaml:"version_mismatches"`
	MissingInDocs     int `json:"missing_in_docs" yaml:"missing_in_docs"`
	MissingInRepo     int `json:"missing_in_repo" yaml:"missing_in_repo"`
	SkippedDetected   int `json:"skipped_detected,omitempty" yaml:"skipped_detected,omitempty"`
	SkippedDocumented int `json:"skipped_documented,omitempty" yaml:"skipped_documented,omitempty"`
}

// Result partitions both inputs into four disjoint lists. Every
// detected component with a usable name lands in exactly one of
// Correct, VersionMismatches or MissingInDocs; every documented record
// with a usable name lands in exactly one of Correct,
// VersionMismatches or MissingInRepo. Records whose name normalizes to
// the empty string are excluded from matching and surfaced in the
// Skipped lists instead of vanishing.
type Result struct {
	Correct           []Match               `json:"correct" yaml:"correct"`
	VersionMismatches []Match               `json:"version_mismatches" yaml:"version_mismatches"`
	MissingInDocs     []inventory.Component `json:"missing_in_docs" yaml:"missing_in_docs"`
	MissingInRepo     []credits.Record      `json:"missing_in_repo" yaml:"missing_in_repo"`
	SkippedDetected   []inventory.Component `json:"skipped_detected,omitempty" yaml:"skipped_detected,omitempty"`
	SkippedDocumented []credits.Record      `json:"skipped_documented,omitempty" yaml:"skipped_documented,omitempty"`
	Summary           Summary               `json:"summary" yaml:"summary"`
}

// HasDiscrepancies reports whether the result contains anything a
// reviewer must act on.
func (r *Result) HasDiscrepancies() bool {
	return len(r.VersionMismatches) > 0 || len(r.MissingInDocs) > 0 || len(r.MissingInRepo) > 0
}

// finalize sorts every list alphabetically for stable, diffable output
// and computes the summary counts. Matched lists sort by detected name,
// missing-in-repo by documented name.
func (r *Result) finalize() {
	sortMatches(r.Correct)
	sortMatches(r.VersionMismatches)
	sort.SliceStable(r.MissingInDocs, func(i, j int) bool {
		return lessFold(r.MissingInDocs[i].Name, r.MissingInDocs[j].Name)
	})
	sort.SliceStable(r.MissingInRepo, func(i, j int) bool {
		return lessFold(r.MissingInRepo[i].Name, r.MissingInRepo[j].Name)
	})

	r.Summary = Summary{
		Correct:           len(r.Correct),
		VersionMismatch:   len(r.VersionMismatches),
		MissingInDocs:     len(r.MissingInDocs),
		MissingInRepo:     len(r.MissingInRepo),
		SkippedDetected:   len(r.SkippedDetected),
		SkippedDocumented: len(r.SkippedDocumented),
	}
}

func sortMatches(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].DetectedName != matches[j].DetectedName {
			return lessFold(matches[i].DetectedName, matches[j].DetectedName)
		}
		return lessFold(matches[i].DocumentedName, matches[j].DocumentedName)
	})
}

// lessFold orders case-insensitively, falling back to the exact strings
// so equal-fold names still order deterministically.
func lessFold(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}
