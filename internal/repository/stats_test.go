package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaderboardColumn_WhitelistedKeys(t *testing.T) {
	for key, column := range map[string]string{
		"rating":         "rating",
		"elo":            "rating",
		"wins":           "wins",
		"win_percentage": "win_percentage",
		"avg_kd":         "avg_kd",
		"avg_kills":      "avg_kills",
	} {
		assert.Equal(t, column, leaderboardColumn(key), key)
	}
}

func TestLeaderboardColumn_UnknownKeyFallsBackToRating(t *testing.T) {
	for _, key := range []string{"totally_invalid", "", "rating; DROP TABLE players", "deaths"} {
		assert.Equal(t, "rating", leaderboardColumn(key), key)
	}
}

func TestLeaderboardQuery_UnknownKeyMatchesRating(t *testing.T) {
	invalid, invalidArgs, err := leaderboardQuery("totally_invalid", 10)
	require.NoError(t, err)
	byRating, ratingArgs, err := leaderboardQuery("rating", 10)
	require.NoError(t, err)

	assert.Equal(t, byRating, invalid)
	assert.Equal(t, ratingArgs, invalidArgs)
}

func TestLeaderboardQuery_Shape(t *testing.T) {
	query, args, err := leaderboardQuery("wins", 25)
	require.NoError(t, err)

	assert.Contains(t, query, "ORDER BY wins DESC")
	assert.Contains(t, query, "matches > $1")
	assert.Contains(t, query, "is_banned = $2")
	assert.Contains(t, query, "LIMIT 25")
	assert.Equal(t, []interface{}{0, false}, args)
}
