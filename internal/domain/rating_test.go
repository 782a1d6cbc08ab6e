package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRating_WinDeltaRange(t *testing.T) {
	strategy := NewRandomRangeStrategy()
	for i := 0; i < 1000; i++ {
		delta := strategy.Delta(ResultWin)
		assert.GreaterOrEqual(t, delta, 9)
		assert.LessOrEqual(t, delta, 25)
	}
}

func TestRating_LossDeltaRange(t *testing.T) {
	strategy := NewRandomRangeStrategy()
	for i := 0; i < 1000; i++ {
		delta := strategy.Delta(ResultLoss)
		assert.GreaterOrEqual(t, delta, 25)
		assert.LessOrEqual(t, delta, 35)
	}
}

func TestRating_TieDeltaZero(t *testing.T) {
	strategy := NewRandomRangeStrategy()
	for i := 0; i < 100; i++ {
		assert.Equal(t, 0, strategy.Delta(ResultTie))
	}
}

func TestRating_SeededStrategyDeterministic(t *testing.T) {
	strategy := NewSeededRangeStrategy(func(n int) int { return 0 })
	assert.Equal(t, 9, strategy.Delta(ResultWin))
	assert.Equal(t, 25, strategy.Delta(ResultLoss))
	assert.Equal(t, 0, strategy.Delta(ResultTie))

	strategy = NewSeededRangeStrategy(func(n int) int { return n - 1 })
	assert.Equal(t, 25, strategy.Delta(ResultWin))
	assert.Equal(t, 35, strategy.Delta(ResultLoss))
}
