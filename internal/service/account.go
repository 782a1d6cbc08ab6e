package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/scorekeep/server/internal/auth"
	"github.com/scorekeep/server/internal/domain"
	"github.com/scorekeep/server/internal/repository"
)

// AccountService handles registration and authentication.
type AccountService struct {
	pool    *pgxpool.Pool
	players repository.PlayerRepository
	bans    repository.BanRepository
}

// NewAccountService creates an AccountService.
func NewAccountService(pool *pgxpool.Pool, players repository.PlayerRepository, bans repository.BanRepository) *AccountService {
	return &AccountService{pool: pool, players: players, bans: bans}
}

// Register creates a new player account with the starting rating and zero
// counters. Nickname uniqueness is enforced by the schema and surfaced as a
// Conflict.
func (s *AccountService) Register(ctx context.Context, nickname, password, email string) error {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" || password == "" {
		return domain.ErrValidation("nickname and password are required")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return domain.ErrInternal("hash password", err)
	}

	player := &domain.Player{
		Nickname:     nickname,
		PasswordHash: hash,
		Email:        strings.TrimSpace(email),
		Role:         domain.RolePlayer,
		Rating:       domain.StartingRating,
	}
	if err := s.players.Create(ctx, s.pool, player); err != nil {
		return err
	}
	return nil
}

// Login authenticates a player and returns their role. An expired ban is
// cleared on the way in: the player mirror and the active ban rows are
// updated in one transaction before the password check.
func (s *AccountService) Login(ctx context.Context, nickname, password string) (domain.Role, error) {
	player, err := s.players.FindByNickname(ctx, s.pool, nickname)
	if err != nil {
		return "", domain.ErrInternal("find player", err)
	}
	if player == nil {
		return "", domain.ErrNotFound("player", nickname)
	}

	if player.IsBanned {
		if player.BanExpired(time.Now()) {
			if err := s.clearExpiredBan(ctx, nickname); err != nil {
				return "", domain.ErrInternal("clear expired ban", err)
			}
		} else {
			return "", domain.ErrForbidden(banText(player))
		}
	}

	if !auth.CheckPassword(player.PasswordHash, password) {
		return "", domain.ErrUnauthorized("invalid password")
	}
	return player.Role, nil
}

func (s *AccountService) clearExpiredBan(ctx context.Context, nickname string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	player, err := s.players.LockByNickname(ctx, tx, nickname)
	if err != nil {
		return err
	}
	// Re-check under the lock; a concurrent login may have cleared it.
	if player == nil || !player.BanExpired(time.Now()) {
		return nil
	}

	if err := s.players.SetBanMirror(ctx, tx, player.ID, false, nil, nil); err != nil {
		return err
	}
	if err := s.bans.DeactivateActive(ctx, tx, player.ID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func banText(p *domain.Player) string {
	reason := ""
	if p.BanReason != nil {
		reason = *p.BanReason
	}
	if p.BanUntil == nil {
		return fmt.Sprintf("account banned permanently: %s", reason)
	}
	return fmt.Sprintf("account banned until %s: %s", p.BanUntil.Format("2006-01-02 15:04:05"), reason)
}

// EnsureDefaultAdmin creates the bootstrap admin account with a random
// password on first startup. The password is logged once; there is no other
// way to recover it.
func (s *AccountService) EnsureDefaultAdmin(ctx context.Context, logger *slog.Logger) error {
	existing, err := s.players.FindByNickname(ctx, s.pool, "admin")
	if err != nil {
		return fmt.Errorf("find admin: %w", err)
	}
	if existing != nil {
		return nil
	}

	password, err := auth.GeneratePassword(12)
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin := &domain.Player{
		Nickname:     "admin",
		PasswordHash: hash,
		Email:        "admin@scorekeep.local",
		Role:         domain.RoleAdmin,
		Rating:       domain.StartingRating,
	}
	if err := s.players.Create(ctx, s.pool, admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	logger.Warn("default admin account created; save this password", "nickname", "admin", "password", password)
	return nil
}
