// pkg/mapper/scorer.go
package mapper

import "github.com/agnivade/levenshtein"

// Scorer computes a similarity in [0, 1] between two already-normalized
// header strings. It is a pluggable strategy so the matching algorithm can
// be swapped without touching the engine's control flow.
type Scorer interface {
	Score(a, b string) float64
}

// LevenshteinScorer scores by normalized edit distance:
// 1 - distance/max(len). Equal strings score 1.0, fully dissimilar 0.0.
type LevenshteinScorer struct{}

func (LevenshteinScorer) Score(a, b string) float64 {
	if a == b {
		return 1.0
	}
	la, lb := len([]rune(a)), len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1.0
	}
	dist := levenshtein.ComputeDistance(a, b)
	score := 1.0 - float64(dist)/float64(longest)
	if score < 0 {
		return 0
	}
	return score
}
