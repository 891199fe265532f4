// Package reconcile pairs a repository's detected third-party
// components with the records documented in its software_credits file
// and classifies every component on both sides.
//
// The pipeline is a pure function of its inputs: names are normalized
// into comparison keys, every detected/documented pair is scored by the
// first matching strategy (exact, substring, fuzzy), the scored pairs
// are resolved into an exclusive 1:1 assignment by a deterministic
// greedy pass, and each committed pair's versions are compared as
// literal tokens. Running the same inputs twice yields byte-identical
// results, and independent runs can proceed in parallel since no state
// outlives a call.
package reconcile

import (
	"github.com/credtally/credtally/pkg/credits"
	"github.com/credtally/credtally/pkg/inventory"
)

// Reconcile classifies every detected component and documented record
// into the four-way result described on Result. Empty inputs are valid:
// with nothing detected every record is missing-in-repo, and with
// nothing documented every component is missing-in-docs. The only error
// condition is an out-of-range option, reported before any matching.
func Reconcile(detected []inventory.Component, documented []credits.Record, opts ...Option) (*Result, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Correct:           []Match{},
		VersionMismatches: []Match{},
		MissingInDocs:     []inventory.Component{},
		MissingInRepo:     []credits.Record{},
	}

	// Normalize both sides once, setting aside anything whose name
	// normalizes to empty: those can never match and are reported
	// rather than dropped.
	detectedKeys := make([]string, 0, len(detected))
	detectedIn := make([]inventory.Component, 0, len(detected))
	for _, c := range detected {
		if key := Normalize(c.Name); key != "" {
			detectedKeys = append(detectedKeys, key)
			detectedIn = append(detectedIn, c)
		} else {
			result.SkippedDetected = append(result.SkippedDetected, c)
		}
	}

	documentedKeys := make([]string, 0, len(documented))
	documentedIn := make([]credits.Record, 0, len(documented))
	for _, rec := range documented {
		if key := Normalize(rec.Name); key != "" {
			documentedKeys = append(documentedKeys, key)
			documentedIn = append(documentedIn, rec)
		} else {
			result.SkippedDocumented = append(result.SkippedDocumented, rec)
		}
	}

	// Score the full cross product and keep candidates at or above the
	// resolver threshold.
	var candidates []candidate
	for i, dk := range detectedKeys {
		for j, pk := range documentedKeys {
			s, method := score(dk, pk, o)
			if s > 0 && s >= o.threshold {
				candidates = append(candidates, candidate{
					detected:   i,
					documented: j,
					score:      s,
					method:     method,
				})
			}
		}
	}

	detectedNames := make([]string, len(detectedIn))
	for i, c := range detectedIn {
		detectedNames[i] = c.Name
	}
	documentedNames := make([]string, len(documentedIn))
	for j, rec := range documentedIn {
		documentedNames[j] = rec.Name
	}

	committed := resolve(candidates, detectedNames, documentedNames)

	detectedMatched := make(map[int]bool, len(committed))
	documentedMatched := make(map[int]bool, len(committed))
	for _, c := range committed {
		detectedMatched[c.detected] = true
		documentedMatched[c.documented] = true

		component := detectedIn[c.detected]
		record := documentedIn[c.documented]
		match := Match{
			DetectedName:      component.Name,
			DocumentedName:    record.Name,
			DetectedVersion:   component.VersionSpec,
			DocumentedVersion: record.Version,
			Origin:            component.Origin,
			Score:             c.score,
			Method:            c.method.String(),
		}

		switch compareVersions(component.VersionSpec, record.Version) {
		case versionsAgree:
			result.Correct = append(result.Correct, match)
		case versionsDiffer:
			result.VersionMismatches = append(result.VersionMismatches, match)
		}
	}

	for i, component := range detectedIn {
		if !detectedMatched[i] {
			result.MissingInDocs = append(result.MissingInDocs, component)
		}
	}
	for j, record := range documentedIn {
		if !documentedMatched[j] {
			result.MissingInRepo = append(result.MissingInRepo, record)
		}
	}

	result.finalize()
	return result, nil
}
