package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/scorekeep/server/internal/domain"
)

// leaderboardSortKeys is the whitelist of client-selectable sort columns.
// "elo" is the legacy alias the shipped client still sends. Anything else
// falls back to rating.
var leaderboardSortKeys = map[string]string{
	"rating":         "rating",
	"elo":            "rating",
	"wins":           "wins",
	"win_percentage": "win_percentage",
	"avg_kd":         "avg_kd",
	"avg_kills":      "avg_kills",
}

type statsRepo struct{}

// NewStatsRepository returns a pgx-backed StatsRepository.
func NewStatsRepository() StatsRepository {
	return &statsRepo{}
}

// leaderboardColumn resolves a client sort key through the whitelist; anything
// unrecognized falls back to rating. Keys are never interpolated from input.
func leaderboardColumn(sortBy string) string {
	if column, ok := leaderboardSortKeys[sortBy]; ok {
		return column
	}
	return "rating"
}

// leaderboardQuery builds the ranking query with squirrel since the ORDER BY
// column varies per request.
func leaderboardQuery(sortBy string, limit int) (string, []interface{}, error) {
	return sq.Select(
		"nickname", "rating", "wins", "losses", "ties", "matches",
		"avg_kd", "avg_hs", "win_percentage", "total_kills", "total_deaths", "avg_kills").
		From("players").
		Where(sq.Gt{"matches": 0}).
		Where(sq.Eq{"is_banned": false}).
		OrderBy(leaderboardColumn(sortBy) + " DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(sq.Dollar).
		ToSql()
}

func (r *statsRepo) Leaderboard(ctx context.Context, db DBTX, sortBy string, limit int) ([]domain.PlayerStats, error) {
	query, args, err := leaderboardQuery(sortBy, limit)
	if err != nil {
		return nil, fmt.Errorf("build leaderboard query: %w", err)
	}

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	var board []domain.PlayerStats
	for rows.Next() {
		var s domain.PlayerStats
		if err := rows.Scan(&s.Nickname, &s.Rating, &s.Wins, &s.Losses, &s.Ties,
			&s.Matches, &s.AvgKD, &s.AvgHS, &s.WinPercentage,
			&s.TotalKills, &s.TotalDeaths, &s.AvgKills); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		board = append(board, s)
	}
	return board, rows.Err()
}

func (r *statsRepo) MapStats(ctx context.Context, db DBTX, playerID int64) ([]domain.MapStats, error) {
	rows, err := db.Query(ctx, `
		SELECT map_name,
		       COUNT(*),
		       COUNT(*) FILTER (WHERE result = 'W'),
		       COUNT(*) FILTER (WHERE result = 'L'),
		       COALESCE(AVG(kills), 0),
		       COALESCE(AVG(deaths), 0)
		FROM matches
		WHERE player_id = $1 AND map_name <> ''
		GROUP BY map_name
		ORDER BY map_name`, playerID)
	if err != nil {
		return nil, fmt.Errorf("query map stats: %w", err)
	}
	defer rows.Close()

	var stats []domain.MapStats
	for rows.Next() {
		var s domain.MapStats
		var avgKills, avgDeaths float64
		if err := rows.Scan(&s.Map, &s.TotalMatches, &s.Wins, &s.Losses, &avgKills, &avgDeaths); err != nil {
			return nil, fmt.Errorf("scan map stats: %w", err)
		}
		if s.TotalMatches > 0 {
			s.WinRate = domain.Round1(float64(s.Wins) / float64(s.TotalMatches) * 100)
		}
		s.AvgKills = domain.Round1(avgKills)
		s.AvgDeaths = domain.Round1(avgDeaths)
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *statsRepo) TimeStats(ctx context.Context, db DBTX, playerID int64) (*domain.TimeStats, error) {
	stats := &domain.TimeStats{}

	rows, err := db.Query(ctx, `
		SELECT EXTRACT(HOUR FROM played_at)::int AS hour,
		       COUNT(*),
		       COUNT(*) FILTER (WHERE result = 'W')
		FROM matches
		WHERE player_id = $1
		GROUP BY hour
		ORDER BY hour`, playerID)
	if err != nil {
		return nil, fmt.Errorf("query hour stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var h domain.HourStats
		if err := rows.Scan(&h.Hour, &h.TotalMatches, &h.Wins); err != nil {
			return nil, fmt.Errorf("scan hour stats: %w", err)
		}
		if h.TotalMatches > 0 {
			h.WinRate = domain.Round1(float64(h.Wins) / float64(h.TotalMatches) * 100)
		}
		stats.Hours = append(stats.Hours, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// 0 = Sunday, matching EXTRACT(DOW).
	dayRows, err := db.Query(ctx, `
		SELECT EXTRACT(DOW FROM played_at)::int AS dow,
		       COUNT(*),
		       COUNT(*) FILTER (WHERE result = 'W')
		FROM matches
		WHERE player_id = $1
		GROUP BY dow
		ORDER BY dow`, playerID)
	if err != nil {
		return nil, fmt.Errorf("query day stats: %w", err)
	}
	defer dayRows.Close()

	for dayRows.Next() {
		var d domain.DayStats
		if err := dayRows.Scan(&d.Day, &d.TotalMatches, &d.Wins); err != nil {
			return nil, fmt.Errorf("scan day stats: %w", err)
		}
		if d.TotalMatches > 0 {
			d.WinRate = domain.Round1(float64(d.Wins) / float64(d.TotalMatches) * 100)
		}
		stats.Days = append(stats.Days, d)
	}
	return stats, dayRows.Err()
}

// SeasonComparison left-joins so that seasons with no matches for the player
// still appear with zero counters.
func (r *statsRepo) SeasonComparison(ctx context.Context, db DBTX, playerID int64) ([]domain.SeasonStats, error) {
	rows, err := db.Query(ctx, `
		SELECT s.id, s.name,
		       COUNT(m.id),
		       COUNT(m.id) FILTER (WHERE m.result = 'W'),
		       COALESCE(AVG(m.rating_after), 0)
		FROM seasons s
		LEFT JOIN matches m
		       ON m.player_id = $1
		      AND m.played_at BETWEEN s.start_date AND s.end_date
		GROUP BY s.id, s.name, s.start_date
		ORDER BY s.start_date DESC`, playerID)
	if err != nil {
		return nil, fmt.Errorf("query season comparison: %w", err)
	}
	defer rows.Close()

	var seasons []domain.SeasonStats
	for rows.Next() {
		var s domain.SeasonStats
		var avgRating float64
		if err := rows.Scan(&s.SeasonID, &s.Name, &s.Matches, &s.Wins, &avgRating); err != nil {
			return nil, fmt.Errorf("scan season stats: %w", err)
		}
		if s.Matches > 0 {
			s.WinRate = domain.Round1(float64(s.Wins) / float64(s.Matches) * 100)
		}
		s.AvgRating = domain.Round0(avgRating)
		seasons = append(seasons, s)
	}
	return seasons, rows.Err()
}

func (r *statsRepo) ServerCounts(ctx context.Context, db DBTX) (*domain.ServerStats, error) {
	stats := &domain.ServerStats{RolesDistribution: map[string]int{}}

	err := db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE matches > 0),
		       COUNT(*) FILTER (WHERE is_banned)
		FROM players`,
	).Scan(&stats.TotalPlayers, &stats.ActivePlayers, &stats.BannedPlayers)
	if err != nil {
		return nil, fmt.Errorf("count players: %w", err)
	}

	err = db.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE NOT is_verified) FROM matches`,
	).Scan(&stats.TotalMatches, &stats.UnverifiedMatches)
	if err != nil {
		return nil, fmt.Errorf("count matches: %w", err)
	}

	rows, err := db.Query(ctx, `SELECT role, COUNT(*) FROM players GROUP BY role`)
	if err != nil {
		return nil, fmt.Errorf("roles distribution: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var role string
		var n int
		if err := rows.Scan(&role, &n); err != nil {
			return nil, fmt.Errorf("scan role count: %w", err)
		}
		stats.RolesDistribution[role] = n
	}
	return stats, rows.Err()
}
