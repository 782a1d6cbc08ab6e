package repository

import (
	"context"
	"fmt"

	"github.com/scorekeep/server/internal/domain"
)

type matchRepo struct{}

// NewMatchRepository returns a pgx-backed MatchRepository.
func NewMatchRepository() MatchRepository {
	return &matchRepo{}
}

func (r *matchRepo) Insert(ctx context.Context, db DBTX, m *domain.Match) error {
	err := db.QueryRow(ctx, `
		INSERT INTO matches
			(player_id, result, kills, deaths, hs_percentage, map_name,
			 rating_before, rating_after, rating_delta, is_verified, verified_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, played_at`,
		m.PlayerID, m.Result, m.Kills, m.Deaths, m.HSPercentage, m.MapName,
		m.RatingBefore, m.RatingAfter, m.RatingDelta, m.IsVerified, m.VerifiedBy,
	).Scan(&m.ID, &m.PlayedAt)
	if err != nil {
		return fmt.Errorf("insert match: %w", err)
	}
	return nil
}

func (r *matchRepo) SetVerified(ctx context.Context, db DBTX, id int64, verified bool, verifierID int64) (bool, error) {
	tag, err := db.Exec(ctx, `
		UPDATE matches SET is_verified = $1, verified_by = $2 WHERE id = $3`,
		verified, verifierID, id)
	if err != nil {
		return false, fmt.Errorf("set match verified: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *matchRepo) Delete(ctx context.Context, db DBTX, id int64) (bool, error) {
	tag, err := db.Exec(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete match: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *matchRepo) DeleteByPlayer(ctx context.Context, db DBTX, playerID int64) error {
	if _, err := db.Exec(ctx, `DELETE FROM matches WHERE player_id = $1`, playerID); err != nil {
		return fmt.Errorf("delete player matches: %w", err)
	}
	return nil
}

func (r *matchRepo) Recent(ctx context.Context, db DBTX, limit int) ([]domain.AdminMatch, error) {
	rows, err := db.Query(ctx, `
		SELECT m.id, p.nickname, m.result, m.kills, m.deaths, m.hs_percentage,
		       m.map_name, m.rating_before, m.rating_after, m.rating_delta,
		       m.is_verified, m.played_at
		FROM matches m
		JOIN players p ON p.id = m.player_id
		ORDER BY m.played_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent matches: %w", err)
	}
	defer rows.Close()

	var matches []domain.AdminMatch
	for rows.Next() {
		var m domain.AdminMatch
		if err := rows.Scan(&m.ID, &m.Player, &m.Result, &m.Kills, &m.Deaths,
			&m.HSPercentage, &m.MapName, &m.RatingBefore, &m.RatingAfter,
			&m.RatingDelta, &m.IsVerified, &m.PlayedAt); err != nil {
			return nil, fmt.Errorf("scan admin match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *matchRepo) RatingHistory(ctx context.Context, db DBTX, playerID int64, limit int) ([]domain.RatingPoint, error) {
	rows, err := db.Query(ctx, `
		SELECT rating_after, played_at
		FROM matches
		WHERE player_id = $1
		ORDER BY played_at ASC
		LIMIT $2`, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("rating history: %w", err)
	}
	defer rows.Close()

	var history []domain.RatingPoint
	for rows.Next() {
		var p domain.RatingPoint
		if err := rows.Scan(&p.Rating, &p.Date); err != nil {
			return nil, fmt.Errorf("scan rating point: %w", err)
		}
		history = append(history, p)
	}
	return history, rows.Err()
}
