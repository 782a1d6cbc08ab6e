package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/scorekeep/server/internal/domain"
)

const playerColumns = `id, nickname, password_hash, email, role, rating,
	wins, losses, ties, matches, avg_kd, avg_hs, win_percentage,
	total_kills, total_deaths, avg_kills,
	is_banned, ban_reason, ban_until, created_at, last_updated`

type playerRepo struct{}

// NewPlayerRepository returns a pgx-backed PlayerRepository.
func NewPlayerRepository() PlayerRepository {
	return &playerRepo{}
}

func (r *playerRepo) FindByNickname(ctx context.Context, db DBTX, nickname string) (*domain.Player, error) {
	row := db.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE nickname = $1`, nickname)
	return scanPlayer(row)
}

func (r *playerRepo) FindByID(ctx context.Context, db DBTX, id int64) (*domain.Player, error) {
	row := db.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE id = $1`, id)
	return scanPlayer(row)
}

func (r *playerRepo) LockByNickname(ctx context.Context, tx pgx.Tx, nickname string) (*domain.Player, error) {
	row := tx.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE nickname = $1 FOR UPDATE`, nickname)
	return scanPlayer(row)
}

func (r *playerRepo) Create(ctx context.Context, db DBTX, p *domain.Player) error {
	err := db.QueryRow(ctx, `
		INSERT INTO players (nickname, password_hash, email, role, rating)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, last_updated`,
		p.Nickname, p.PasswordHash, p.Email, p.Role, p.Rating,
	).Scan(&p.ID, &p.CreatedAt, &p.LastUpdated)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict("nickname already taken")
		}
		return fmt.Errorf("insert player: %w", err)
	}
	return nil
}

func (r *playerRepo) UpdateStats(ctx context.Context, db DBTX, p *domain.Player) error {
	_, err := db.Exec(ctx, `
		UPDATE players SET
			rating = $1, wins = $2, losses = $3, ties = $4, matches = $5,
			avg_kd = $6, avg_hs = $7, win_percentage = $8,
			total_kills = $9, total_deaths = $10, avg_kills = $11,
			last_updated = now()
		WHERE id = $12`,
		p.Rating, p.Wins, p.Losses, p.Ties, p.Matches,
		p.AvgKD, p.AvgHS, p.WinPercentage,
		p.TotalKills, p.TotalDeaths, p.AvgKills,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("update player stats: %w", err)
	}
	return nil
}

func (r *playerRepo) UpdateRole(ctx context.Context, db DBTX, id int64, role domain.Role) error {
	_, err := db.Exec(ctx, `UPDATE players SET role = $1, last_updated = now() WHERE id = $2`, role, id)
	if err != nil {
		return fmt.Errorf("update player role: %w", err)
	}
	return nil
}

func (r *playerRepo) SetBanMirror(ctx context.Context, db DBTX, id int64, banned bool, reason *string, until *time.Time) error {
	_, err := db.Exec(ctx, `
		UPDATE players SET is_banned = $1, ban_reason = $2, ban_until = $3, last_updated = now()
		WHERE id = $4`,
		banned, reason, until, id)
	if err != nil {
		return fmt.Errorf("update ban mirror: %w", err)
	}
	return nil
}

// List builds the paged admin listing with squirrel; limit/offset vary per
// request.
func (r *playerRepo) List(ctx context.Context, db DBTX, limit, offset int) ([]domain.PlayerSummary, int, error) {
	query, args, err := sq.Select(
		"id", "nickname", "rating", "wins", "losses", "matches",
		"win_percentage", "role", "is_banned", "created_at").
		From("players").
		OrderBy("id DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build player list query: %w", err)
	}

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	var players []domain.PlayerSummary
	for rows.Next() {
		var p domain.PlayerSummary
		if err := rows.Scan(&p.ID, &p.Nickname, &p.Rating, &p.Wins, &p.Losses,
			&p.Matches, &p.WinPercentage, &p.Role, &p.IsBanned, &p.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan player summary: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate players: %w", err)
	}

	var total int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM players`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count players: %w", err)
	}

	return players, total, nil
}

func scanPlayer(row pgx.Row) (*domain.Player, error) {
	var p domain.Player
	err := row.Scan(
		&p.ID, &p.Nickname, &p.PasswordHash, &p.Email, &p.Role, &p.Rating,
		&p.Wins, &p.Losses, &p.Ties, &p.Matches, &p.AvgKD, &p.AvgHS, &p.WinPercentage,
		&p.TotalKills, &p.TotalDeaths, &p.AvgKills,
		&p.IsBanned, &p.BanReason, &p.BanUntil, &p.CreatedAt, &p.LastUpdated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan player: %w", err)
	}
	return &p, nil
}

// isUniqueViolation reports SQLSTATE 23505.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
