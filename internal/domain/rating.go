package domain

import "math/rand"

// RatingStrategy computes the rating delta for a match outcome. The delta is
// a magnitude; wins add it, losses subtract it, ties must yield 0.
//
// The production strategy is a bounded random draw keyed only by outcome.
// A deterministic formula based on both players' ratings would be the obvious
// replacement, which is why the strategy sits behind an interface.
type RatingStrategy interface {
	Delta(result MatchResult) int
}

// Bounds for the random rating adjustment.
const (
	winDeltaMin  = 9
	winDeltaMax  = 25
	lossDeltaMin = 25
	lossDeltaMax = 35
)

// RandomRangeStrategy draws the delta uniformly from the outcome's range:
// wins from [9,25], losses from [25,35], ties 0.
type RandomRangeStrategy struct {
	intN func(n int) int
}

// NewRandomRangeStrategy returns the default strategy backed by math/rand.
func NewRandomRangeStrategy() *RandomRangeStrategy {
	return &RandomRangeStrategy{intN: rand.Intn}
}

// NewSeededRangeStrategy returns a strategy with an injected draw function,
// used by tests.
func NewSeededRangeStrategy(intN func(n int) int) *RandomRangeStrategy {
	return &RandomRangeStrategy{intN: intN}
}

func (s *RandomRangeStrategy) Delta(result MatchResult) int {
	switch result {
	case ResultWin:
		return winDeltaMin + s.intN(winDeltaMax-winDeltaMin+1)
	case ResultLoss:
		return lossDeltaMin + s.intN(lossDeltaMax-lossDeltaMin+1)
	default:
		return 0
	}
}
