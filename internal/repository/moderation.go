package repository

import (
	"context"
	"fmt"

	"github.com/scorekeep/server/internal/domain"
)

type banRepo struct{}

// NewBanRepository returns a pgx-backed BanRepository.
func NewBanRepository() BanRepository {
	return &banRepo{}
}

func (r *banRepo) Insert(ctx context.Context, db DBTX, b *domain.Ban) error {
	err := db.QueryRow(ctx, `
		INSERT INTO bans (player_id, admin_id, reason, unban_date, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING id, ban_date`,
		b.PlayerID, b.AdminID, b.Reason, b.UnbanDate,
	).Scan(&b.ID, &b.BanDate)
	if err != nil {
		return fmt.Errorf("insert ban: %w", err)
	}
	b.IsActive = true
	return nil
}

func (r *banRepo) DeactivateActive(ctx context.Context, db DBTX, playerID int64) error {
	_, err := db.Exec(ctx, `UPDATE bans SET is_active = FALSE WHERE player_id = $1 AND is_active`, playerID)
	if err != nil {
		return fmt.Errorf("deactivate bans: %w", err)
	}
	return nil
}

type auditRepo struct{}

// NewAuditRepository returns a pgx-backed AuditRepository.
func NewAuditRepository() AuditRepository {
	return &auditRepo{}
}

func (r *auditRepo) Insert(ctx context.Context, db DBTX, a *domain.AdminAction) error {
	err := db.QueryRow(ctx, `
		INSERT INTO admin_actions (admin_id, action_type, target_id, details)
		VALUES ($1, $2, $3, $4)
		RETURNING id, action_date`,
		a.AdminID, a.ActionType, a.TargetID, a.Details,
	).Scan(&a.ID, &a.ActionDate)
	if err != nil {
		return fmt.Errorf("insert admin action: %w", err)
	}
	return nil
}

func (r *auditRepo) Recent(ctx context.Context, db DBTX, limit int) ([]domain.AdminActionEntry, error) {
	rows, err := db.Query(ctx, `
		SELECT a.action_date, p.nickname, a.action_type, a.details
		FROM admin_actions a
		JOIN players p ON p.id = a.admin_id
		ORDER BY a.action_date DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list admin actions: %w", err)
	}
	defer rows.Close()

	var entries []domain.AdminActionEntry
	for rows.Next() {
		var e domain.AdminActionEntry
		if err := rows.Scan(&e.Date, &e.Admin, &e.Action, &e.Details); err != nil {
			return nil, fmt.Errorf("scan admin action: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
