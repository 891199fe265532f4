package reconcile

import "sort"

// candidate is a scored pairing of a detected component index and a
// documented record index. Candidates never leave this package.
type candidate struct {
	detected   int
	documented int
	score      float64
	method     Method
}

// resolve turns the candidate list into an exclusive 1:1 assignment.
// Candidates are sorted descending by (score, method priority, detected
// name, documented name) so iteration order is fully deterministic even
// when scores coincide, then committed greedily: a pair is accepted only
// if neither side has been consumed by a stronger candidate. This is a
// greedy approximation of maximum-weight bipartite matching; it trades
// global optimality for reproducibility, which is plenty for
// inventories of a few hundred entries.
func resolve(candidates []candidate, detectedNames, documentedNames []string) []candidate {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.method != b.method {
			return a.method > b.method
		}
		if detectedNames[a.detected] != detectedNames[b.detected] {
			return detectedNames[a.detected] < detectedNames[b.detected]
		}
		return documentedNames[a.documented] < documentedNames[b.documented]
	})

	detectedUsed := make(map[int]bool, len(candidates))
	documentedUsed := make(map[int]bool, len(candidates))

	committed := make([]candidate, 0, len(candidates))
	for _, c := range candidates {
		if detectedUsed[c.detected] || documentedUsed[c.documented] {
			continue
		}
		detectedUsed[c.detected] = true
		documentedUsed[c.documented] = true
		committed = append(committed, c)
	}

	return committed
}
