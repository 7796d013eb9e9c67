package similarity

import "sort"

// Match is a candidate that met the threshold in FindSimilar.
type Match struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// FindSimilar scores every candidate against target with the combined
// measure and returns those scoring at least threshold, best first, at most
// maxResults of them. Equal scores keep candidate order. The target is not
// excluded from candidates; callers drop their own record beforehand.
func (e *Engine) FindSimilar(target string, candidates []string, threshold float64, maxResults int) []Match {
	matches := make([]Match, 0)
	if len(candidates) == 0 || maxResults <= 0 {
		return matches
	}

	for i, candidate := range candidates {
		score := e.Similarity(target, candidate, MethodCombined)
		if score >= threshold {
			matches = append(matches, Match{Index: i, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}
	return matches
}
