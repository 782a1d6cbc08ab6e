package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/scorekeep/server/internal/domain"
)

const tournamentColumns = `id, name, description, start_date, end_date,
	max_players, current_players, prize_pool, status, created_by, created_at`

type tournamentRepo struct{}

// NewTournamentRepository returns a pgx-backed TournamentRepository.
func NewTournamentRepository() TournamentRepository {
	return &tournamentRepo{}
}

func (r *tournamentRepo) Insert(ctx context.Context, db DBTX, t *domain.Tournament) error {
	err := db.QueryRow(ctx, `
		INSERT INTO tournaments
			(name, description, start_date, end_date, max_players, prize_pool, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`,
		t.Name, t.Description, t.StartDate, t.EndDate, t.MaxPlayers,
		t.PrizePool, t.Status, t.CreatedBy,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert tournament: %w", err)
	}
	return nil
}

func (r *tournamentRepo) List(ctx context.Context, db DBTX, status *domain.TournamentStatus) ([]domain.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments ORDER BY start_date DESC`
	args := []interface{}{}
	if status != nil {
		query = `SELECT ` + tournamentColumns + ` FROM tournaments WHERE status = $1 ORDER BY start_date DESC`
		args = append(args, *status)
	}

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}
	defer rows.Close()

	var tournaments []domain.Tournament
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, err
		}
		tournaments = append(tournaments, *t)
	}
	return tournaments, rows.Err()
}

func (r *tournamentRepo) LockByID(ctx context.Context, tx pgx.Tx, id int64) (*domain.Tournament, error) {
	row := tx.QueryRow(ctx, `SELECT `+tournamentColumns+` FROM tournaments WHERE id = $1 FOR UPDATE`, id)
	t, err := scanTournament(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

func (r *tournamentRepo) AddParticipant(ctx context.Context, db DBTX, tournamentID, playerID int64) error {
	_, err := db.Exec(ctx, `
		INSERT INTO tournament_participants (tournament_id, player_id)
		VALUES ($1, $2)`, tournamentID, playerID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict("already registered for this tournament")
		}
		return fmt.Errorf("insert participant: %w", err)
	}

	_, err = db.Exec(ctx, `
		UPDATE tournaments SET current_players = current_players + 1 WHERE id = $1`, tournamentID)
	if err != nil {
		return fmt.Errorf("increment participants: %w", err)
	}
	return nil
}

func (r *tournamentRepo) Matches(ctx context.Context, db DBTX, tournamentID int64) ([]domain.TournamentMatch, error) {
	rows, err := db.Query(ctx, `
		SELECT id, tournament_id, round_number, player1_id, player2_id,
		       winner_id, score1, score2, match_date, status
		FROM tournament_matches
		WHERE tournament_id = $1
		ORDER BY round_number, id`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list tournament matches: %w", err)
	}
	defer rows.Close()

	var matches []domain.TournamentMatch
	for rows.Next() {
		var m domain.TournamentMatch
		if err := rows.Scan(&m.ID, &m.TournamentID, &m.RoundNumber, &m.Player1ID,
			&m.Player2ID, &m.WinnerID, &m.Score1, &m.Score2, &m.MatchDate, &m.Status); err != nil {
			return nil, fmt.Errorf("scan tournament match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func scanTournament(row pgx.Row) (*domain.Tournament, error) {
	var t domain.Tournament
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.StartDate, &t.EndDate,
		&t.MaxPlayers, &t.CurrentPlayers, &t.PrizePool, &t.Status, &t.CreatedBy, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan tournament: %w", err)
	}
	return &t, nil
}
