package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/scorekeep/server/internal/domain"
	"github.com/scorekeep/server/internal/repository"
)

const (
	defaultLeaderboardSize = 50
	maxLeaderboardSize     = 200
	defaultHistorySize     = 50
)

// StatsService owns the match engine and the read-side statistics queries.
type StatsService struct {
	pool    *pgxpool.Pool
	players repository.PlayerRepository
	matches repository.MatchRepository
	stats   repository.StatsRepository
	premium *PremiumService
	rating  domain.RatingStrategy
}

// NewStatsService creates a StatsService.
func NewStatsService(pool *pgxpool.Pool, players repository.PlayerRepository, matches repository.MatchRepository,
	stats repository.StatsRepository, premium *PremiumService, rating domain.RatingStrategy) *StatsService {
	return &StatsService{pool: pool, players: players, matches: matches, stats: stats, premium: premium, rating: rating}
}

// SubmitMatch records one match result. The server is authoritative: it locks
// the player row, draws the rating delta, folds the match into the running
// aggregates and appends the match row, all in one transaction.
func (s *StatsService) SubmitMatch(ctx context.Context, nickname string, sub domain.MatchSubmission) (*domain.PlayerStats, error) {
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	player, err := s.players.LockByNickname(ctx, tx, nickname)
	if err != nil {
		return nil, domain.ErrInternal("lock player", err)
	}
	if player == nil {
		return nil, domain.ErrNotFound("player", nickname)
	}
	if player.IsBanned && !player.BanExpired(time.Now()) {
		return nil, domain.ErrForbidden("banned players cannot submit matches")
	}

	delta := s.rating.Delta(sub.Result)
	before, after := player.ApplyMatch(sub, delta)

	if err := s.players.UpdateStats(ctx, tx, player); err != nil {
		return nil, domain.ErrInternal("update player stats", err)
	}

	match := &domain.Match{
		PlayerID:     player.ID,
		Result:       sub.Result,
		Kills:        sub.Kills,
		Deaths:       sub.Deaths,
		HSPercentage: sub.HSPercentage,
		MapName:      sub.MapName,
		RatingBefore: before,
		RatingAfter:  after,
		RatingDelta:  delta,
		IsVerified:   true,
	}
	if err := s.matches.Insert(ctx, tx, match); err != nil {
		return nil, domain.ErrInternal("insert match", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	stats := player.Stats()
	return &stats, nil
}

// SyncStats applies a legacy full-stats payload verbatim. Older clients keep
// their own counters and push the whole blob after each session; the match
// history gains no rows on this path.
func (s *StatsService) SyncStats(ctx context.Context, nickname string, update domain.StatsUpdate) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	player, err := s.players.LockByNickname(ctx, tx, nickname)
	if err != nil {
		return domain.ErrInternal("lock player", err)
	}
	if player == nil {
		return domain.ErrNotFound("player", nickname)
	}
	if player.IsBanned && !player.BanExpired(time.Now()) {
		return domain.ErrForbidden("banned players cannot update stats")
	}

	player.Rating = update.Rating
	player.Wins = update.Wins
	player.Losses = update.Losses
	player.Ties = update.Ties
	player.Matches = update.Matches
	player.AvgKD = update.AvgKD
	player.AvgHS = update.AvgHS
	player.WinPercentage = update.WinPercentage
	player.TotalKills = update.TotalKills
	player.TotalDeaths = update.TotalDeaths
	player.AvgKills = update.AvgKills

	if err := s.players.UpdateStats(ctx, tx, player); err != nil {
		return domain.ErrInternal("update player stats", err)
	}
	return tx.Commit(ctx)
}

// GetStats returns the public stats block of one player.
func (s *StatsService) GetStats(ctx context.Context, nickname string) (*domain.PlayerStats, error) {
	player, err := s.findPlayer(ctx, nickname)
	if err != nil {
		return nil, err
	}
	stats := player.Stats()
	return &stats, nil
}

// Leaderboard returns the ranking ordered by a whitelisted sort key. Banned
// players and players without matches are excluded.
func (s *StatsService) Leaderboard(ctx context.Context, sortBy string, limit int) ([]domain.PlayerStats, error) {
	if limit <= 0 {
		limit = defaultLeaderboardSize
	}
	if limit > maxLeaderboardSize {
		limit = maxLeaderboardSize
	}
	board, err := s.stats.Leaderboard(ctx, s.pool, sortBy, limit)
	if err != nil {
		return nil, domain.ErrInternal("query leaderboard", err)
	}
	return board, nil
}

// RatingHistory returns the player's rating trajectory in chronological order.
func (s *StatsService) RatingHistory(ctx context.Context, nickname string, limit int) ([]domain.RatingPoint, error) {
	player, err := s.findPlayer(ctx, nickname)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultHistorySize
	}
	points, err := s.matches.RatingHistory(ctx, s.pool, player.ID, limit)
	if err != nil {
		return nil, domain.ErrInternal("query rating history", err)
	}
	return points, nil
}

// MapStatistics returns the player's per-map aggregates.
func (s *StatsService) MapStatistics(ctx context.Context, nickname string) ([]domain.MapStats, error) {
	player, err := s.findPlayer(ctx, nickname)
	if err != nil {
		return nil, err
	}
	stats, err := s.stats.MapStats(ctx, s.pool, player.ID)
	if err != nil {
		return nil, domain.ErrInternal("query map stats", err)
	}
	return stats, nil
}

// TimeStatistics returns win rates by hour of day and day of week.
func (s *StatsService) TimeStatistics(ctx context.Context, nickname string) (*domain.TimeStats, error) {
	player, err := s.findPlayer(ctx, nickname)
	if err != nil {
		return nil, err
	}
	stats, err := s.stats.TimeStats(ctx, s.pool, player.ID)
	if err != nil {
		return nil, domain.ErrInternal("query time stats", err)
	}
	// Players with no matches still get empty buckets, not null.
	if stats.Hours == nil {
		stats.Hours = []domain.HourStats{}
	}
	if stats.Days == nil {
		stats.Days = []domain.DayStats{}
	}
	return stats, nil
}

// SeasonComparison slices the player's history by season windows.
func (s *StatsService) SeasonComparison(ctx context.Context, nickname string) ([]domain.SeasonStats, error) {
	player, err := s.findPlayer(ctx, nickname)
	if err != nil {
		return nil, err
	}
	seasons, err := s.stats.SeasonComparison(ctx, s.pool, player.ID)
	if err != nil {
		return nil, domain.ErrInternal("query season comparison", err)
	}
	return seasons, nil
}

// DetailedProfile joins the player's stats with their live premium status.
func (s *StatsService) DetailedProfile(ctx context.Context, nickname string) (*domain.DetailedProfile, error) {
	player, err := s.findPlayer(ctx, nickname)
	if err != nil {
		return nil, err
	}

	status, err := s.premium.Status(ctx, nickname)
	if err != nil {
		return nil, err
	}

	profile := &domain.DetailedProfile{
		PlayerStats: player.Stats(),
		IsPremium:   status.IsPremium,
	}
	if status.PremiumUntil != nil {
		profile.PremiumUntil = status.PremiumUntil.Format("2006-01-02 15:04:05")
	}
	return profile, nil
}

func (s *StatsService) findPlayer(ctx context.Context, nickname string) (*domain.Player, error) {
	player, err := s.players.FindByNickname(ctx, s.pool, nickname)
	if err != nil {
		return nil, domain.ErrInternal(fmt.Sprintf("find player %s", nickname), err)
	}
	if player == nil {
		return nil, domain.ErrNotFound("player", nickname)
	}
	return player, nil
}
