// Package elo estimates playing strength from match scores and derives
// the depth-to-rating lookup table shipped with the engine's strength
// settings.
package elo

import "math"

// Score clamp bounds. A 0% or 100% score sits on a singularity of the
// logistic inverse; the clamp caps any single estimate at roughly +/-800
// around the opponent. An explicit approximation, not a precision bug.
const (
	minScore = 0.01
	maxScore = 0.99
)

// Estimate inverts the logistic Elo expectation to rate a player scoring
// the given fraction against an opponent of known rating:
//
//	estimate = opponent - 400*log10(1/score - 1)
//
// A 50% score estimates exactly the opponent's rating. Callers must not
// derive score from zero games; that case is "no estimate", not 0.
func Estimate(opponent int, score float64) int {
	s := math.Min(math.Max(score, minScore), maxScore)
	return int(float64(opponent) - 400*math.Log10(1/s-1))
}
