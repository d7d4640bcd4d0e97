package recommend

import "strings"

// defaultOverlapScore is the neutral prior when the target has no subjects:
// the candidate cannot be disproven similar without information.
const defaultOverlapScore = 0.4

// SubjectSet lower-cases subjects into a set.
func SubjectSet(subjects []string) map[string]struct{} {
	set := make(map[string]struct{}, len(subjects))
	for _, s := range subjects {
		set[strings.ToLower(s)] = struct{}{}
	}
	return set
}

// OverlapScore is the share of the target's subjects present in the
// candidate, capped at 1.0. This measures recall of the target, not Jaccard:
// a candidate covering a superset of the target is not penalized.
func OverlapScore(target map[string]struct{}, candidate []string) float64 {
	if len(target) == 0 {
		return defaultOverlapScore
	}

	matched := make(map[string]struct{}, len(target))
	for _, s := range candidate {
		s = strings.ToLower(s)
		if _, ok := target[s]; ok {
			matched[s] = struct{}{}
		}
	}

	score := float64(len(matched)) / float64(len(target))
	if score > 1.0 {
		score = 1.0
	}
	return score
}
