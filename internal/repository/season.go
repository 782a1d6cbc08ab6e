package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/scorekeep/server/internal/domain"
)

type seasonRepo struct{}

// NewSeasonRepository returns a pgx-backed SeasonRepository.
func NewSeasonRepository() SeasonRepository {
	return &seasonRepo{}
}

func (r *seasonRepo) Insert(ctx context.Context, db DBTX, s *domain.Season) error {
	err := db.QueryRow(ctx, `
		INSERT INTO seasons (name, start_date, end_date, premium_reward, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING id, created_at`,
		s.Name, s.StartDate, s.EndDate, s.PremiumReward,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert season: %w", err)
	}
	s.IsActive = true
	return nil
}

func (r *seasonRepo) ListActive(ctx context.Context, db DBTX) ([]domain.Season, error) {
	rows, err := db.Query(ctx, `
		SELECT id, name, start_date, end_date, premium_reward, is_active, created_at
		FROM seasons
		WHERE is_active
		ORDER BY start_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("list seasons: %w", err)
	}
	defer rows.Close()

	var seasons []domain.Season
	for rows.Next() {
		var s domain.Season
		if err := rows.Scan(&s.ID, &s.Name, &s.StartDate, &s.EndDate,
			&s.PremiumReward, &s.IsActive, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan season: %w", err)
		}
		seasons = append(seasons, s)
	}
	return seasons, rows.Err()
}

type premiumRepo struct{}

// NewPremiumRepository returns a pgx-backed PremiumRepository.
func NewPremiumRepository() PremiumRepository {
	return &premiumRepo{}
}

func (r *premiumRepo) FindByPlayer(ctx context.Context, db DBTX, playerID int64) (*domain.PremiumGrant, error) {
	var g domain.PremiumGrant
	err := db.QueryRow(ctx, `
		SELECT id, player_id, premium_until, is_premium, premium_source, created_at
		FROM premium_grants WHERE player_id = $1`, playerID,
	).Scan(&g.ID, &g.PlayerID, &g.Until, &g.IsPremium, &g.Source, &g.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find premium grant: %w", err)
	}
	return &g, nil
}

func (r *premiumRepo) Upsert(ctx context.Context, db DBTX, playerID int64, until time.Time, source string) error {
	_, err := db.Exec(ctx, `
		INSERT INTO premium_grants (player_id, premium_until, is_premium, premium_source)
		VALUES ($1, $2, TRUE, $3)
		ON CONFLICT (player_id) DO UPDATE
		SET premium_until = EXCLUDED.premium_until,
		    is_premium = TRUE,
		    premium_source = EXCLUDED.premium_source`,
		playerID, until, source)
	if err != nil {
		return fmt.Errorf("upsert premium grant: %w", err)
	}
	return nil
}

func (r *premiumRepo) Deactivate(ctx context.Context, db DBTX, playerID int64) error {
	_, err := db.Exec(ctx, `UPDATE premium_grants SET is_premium = FALSE WHERE player_id = $1`, playerID)
	if err != nil {
		return fmt.Errorf("deactivate premium grant: %w", err)
	}
	return nil
}

func (r *premiumRepo) Insert2v2(ctx context.Context, db DBTX, m *domain.Match2v2) error {
	err := db.QueryRow(ctx, `
		INSERT INTO matches_2v2
			(season_id, team1_player1_id, team1_player2_id,
			 team2_player1_id, team2_player2_id, team1_score, team2_score, winner_team)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, played_at`,
		m.SeasonID, m.Team1P1, m.Team1P2, m.Team2P1, m.Team2P2,
		m.Team1Score, m.Team2Score, m.WinnerTeam,
	).Scan(&m.ID, &m.PlayedAt)
	if err != nil {
		return fmt.Errorf("insert 2v2 match: %w", err)
	}
	return nil
}
