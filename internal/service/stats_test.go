package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/scorekeep/server/internal/domain"
	"github.com/scorekeep/server/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPlayers struct {
	repository.PlayerRepository
}

func (s *stubPlayers) FindByNickname(ctx context.Context, db repository.DBTX, nickname string) (*domain.Player, error) {
	return &domain.Player{ID: 1, Nickname: nickname, Role: domain.RolePlayer}, nil
}

type stubStats struct {
	repository.StatsRepository
	timeStats *domain.TimeStats
}

func (s *stubStats) TimeStats(ctx context.Context, db repository.DBTX, playerID int64) (*domain.TimeStats, error) {
	return s.timeStats, nil
}

func TestTimeStatistics_EmptyHistoryYieldsEmptyBuckets(t *testing.T) {
	svc := NewStatsService(nil, &stubPlayers{}, nil, &stubStats{timeStats: &domain.TimeStats{}}, nil, nil)

	stats, err := svc.TimeStatistics(context.Background(), "alice")
	require.NoError(t, err)

	assert.NotNil(t, stats.Hours)
	assert.NotNil(t, stats.Days)

	payload, err := json.Marshal(stats)
	require.NoError(t, err)
	assert.JSONEq(t, `{"hours":[],"days":[]}`, string(payload))
}

func TestTimeStatistics_PopulatedBucketsPassThrough(t *testing.T) {
	filled := &domain.TimeStats{
		Hours: []domain.HourStats{{Hour: 21, TotalMatches: 4, Wins: 3, WinRate: 75.0}},
		Days:  []domain.DayStats{{Day: 0, TotalMatches: 2, Wins: 1, WinRate: 50.0}},
	}
	svc := NewStatsService(nil, &stubPlayers{}, nil, &stubStats{timeStats: filled}, nil, nil)

	stats, err := svc.TimeStatistics(context.Background(), "alice")
	require.NoError(t, err)

	assert.Len(t, stats.Hours, 1)
	assert.Equal(t, 21, stats.Hours[0].Hour)
	assert.Len(t, stats.Days, 1)
	assert.Equal(t, 50.0, stats.Days[0].WinRate)
}
