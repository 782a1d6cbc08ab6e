package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/scorekeep/server/internal/domain"
	"github.com/scorekeep/server/internal/repository"
)

// ModerationService implements the privileged operations: role changes, bans,
// match verification and deletion, stats resets and the admin read views.
// Every mutation writes one audit row in the same transaction.
type ModerationService struct {
	pool    *pgxpool.Pool
	players repository.PlayerRepository
	matches repository.MatchRepository
	bans    repository.BanRepository
	stats   repository.StatsRepository
	audit   *AuditLog
}

// NewModerationService creates a ModerationService.
func NewModerationService(pool *pgxpool.Pool, players repository.PlayerRepository, matches repository.MatchRepository,
	bans repository.BanRepository, stats repository.StatsRepository, audit *AuditLog) *ModerationService {
	return &ModerationService{pool: pool, players: players, matches: matches, bans: bans, stats: stats, audit: audit}
}

// ChangeRole sets a player's role. Moderators may manage roles below admin;
// only an admin can grant admin.
func (s *ModerationService) ChangeRole(ctx context.Context, actor *domain.Player, nickname string, newRole domain.Role) error {
	if !newRole.Valid() {
		return domain.ErrValidation("unknown role")
	}
	if newRole == domain.RoleAdmin && actor.Role != domain.RoleAdmin {
		return domain.ErrForbidden("only an admin can grant the admin role")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	target, err := s.players.LockByNickname(ctx, tx, nickname)
	if err != nil {
		return domain.ErrInternal("lock player", err)
	}
	if target == nil {
		return domain.ErrNotFound("player", nickname)
	}

	if err := s.players.UpdateRole(ctx, tx, target.ID, newRole); err != nil {
		return domain.ErrInternal("update role", err)
	}

	action := domain.AdminAction{
		AdminID:    actor.ID,
		ActionType: domain.ActionChangeRole,
		TargetID:   &target.ID,
		Details:    fmt.Sprintf("changed role of %s from %s to %s", nickname, target.Role, newRole),
	}
	if err := s.audit.Record(ctx, tx, &action); err != nil {
		return domain.ErrInternal("record audit", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.ErrInternal("commit tx", err)
	}
	s.audit.Publish(action)
	return nil
}

// Ban bans a player: a ban log row plus the mirror fields on the player, in
// one transaction. days == 0 means permanent.
func (s *ModerationService) Ban(ctx context.Context, actor *domain.Player, nickname, reason string, days int) (string, error) {
	if days < 0 {
		return "", domain.ErrValidation("days must not be negative")
	}
	if reason == "" {
		reason = "no reason given"
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	target, err := s.players.LockByNickname(ctx, tx, nickname)
	if err != nil {
		return "", domain.ErrInternal("lock player", err)
	}
	if target == nil {
		return "", domain.ErrNotFound("player", nickname)
	}

	var until *time.Time
	msg := fmt.Sprintf("player %s banned permanently", nickname)
	if days > 0 {
		t := time.Now().AddDate(0, 0, days)
		until = &t
		msg = fmt.Sprintf("player %s banned for %d days", nickname, days)
	}

	ban := &domain.Ban{
		PlayerID:  target.ID,
		AdminID:   actor.ID,
		Reason:    reason,
		UnbanDate: until,
	}
	if err := s.bans.Insert(ctx, tx, ban); err != nil {
		return "", domain.ErrInternal("insert ban", err)
	}
	if err := s.players.SetBanMirror(ctx, tx, target.ID, true, &reason, until); err != nil {
		return "", domain.ErrInternal("set ban mirror", err)
	}

	action := domain.AdminAction{
		AdminID:    actor.ID,
		ActionType: domain.ActionBan,
		TargetID:   &target.ID,
		Details:    fmt.Sprintf("%s: %s", msg, reason),
	}
	if err := s.audit.Record(ctx, tx, &action); err != nil {
		return "", domain.ErrInternal("record audit", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return "", domain.ErrInternal("commit tx", err)
	}
	s.audit.Publish(action)
	return msg, nil
}

// Unban lifts a player's ban: deactivates the active ban rows and clears the
// mirror fields.
func (s *ModerationService) Unban(ctx context.Context, actor *domain.Player, nickname string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	target, err := s.players.LockByNickname(ctx, tx, nickname)
	if err != nil {
		return domain.ErrInternal("lock player", err)
	}
	if target == nil {
		return domain.ErrNotFound("player", nickname)
	}

	if err := s.bans.DeactivateActive(ctx, tx, target.ID); err != nil {
		return domain.ErrInternal("deactivate bans", err)
	}
	if err := s.players.SetBanMirror(ctx, tx, target.ID, false, nil, nil); err != nil {
		return domain.ErrInternal("clear ban mirror", err)
	}

	action := domain.AdminAction{
		AdminID:    actor.ID,
		ActionType: domain.ActionUnban,
		TargetID:   &target.ID,
		Details:    fmt.Sprintf("unbanned %s", nickname),
	}
	if err := s.audit.Record(ctx, tx, &action); err != nil {
		return domain.ErrInternal("record audit", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.ErrInternal("commit tx", err)
	}
	s.audit.Publish(action)
	return nil
}

// SetMatchVerified toggles a match's verification flag.
func (s *ModerationService) SetMatchVerified(ctx context.Context, actor *domain.Player, matchID int64, verified bool) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	found, err := s.matches.SetVerified(ctx, tx, matchID, verified, actor.ID)
	if err != nil {
		return domain.ErrInternal("set match verified", err)
	}
	if !found {
		return domain.ErrNotFound("match", fmt.Sprintf("%d", matchID))
	}

	kind := domain.ActionVerifyMatch
	if !verified {
		kind = domain.ActionUnverifyMatch
	}
	action := domain.AdminAction{
		AdminID:    actor.ID,
		ActionType: kind,
		Details:    fmt.Sprintf("match #%d", matchID),
	}
	if err := s.audit.Record(ctx, tx, &action); err != nil {
		return domain.ErrInternal("record audit", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.ErrInternal("commit tx", err)
	}
	s.audit.Publish(action)
	return nil
}

// DeleteMatch removes a match row. Player aggregates are not recomputed; the
// row disappears from history and verification queues only.
func (s *ModerationService) DeleteMatch(ctx context.Context, actor *domain.Player, matchID int64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	found, err := s.matches.Delete(ctx, tx, matchID)
	if err != nil {
		return domain.ErrInternal("delete match", err)
	}
	if !found {
		return domain.ErrNotFound("match", fmt.Sprintf("%d", matchID))
	}

	action := domain.AdminAction{
		AdminID:    actor.ID,
		ActionType: domain.ActionDeleteMatch,
		Details:    fmt.Sprintf("deleted match #%d", matchID),
	}
	if err := s.audit.Record(ctx, tx, &action); err != nil {
		return domain.ErrInternal("record audit", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.ErrInternal("commit tx", err)
	}
	s.audit.Publish(action)
	return nil
}

// ResetStats restores a player to registration defaults and deletes their
// match history, in one transaction.
func (s *ModerationService) ResetStats(ctx context.Context, actor *domain.Player, nickname string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	target, err := s.players.LockByNickname(ctx, tx, nickname)
	if err != nil {
		return domain.ErrInternal("lock player", err)
	}
	if target == nil {
		return domain.ErrNotFound("player", nickname)
	}

	target.ResetStats()
	if err := s.players.UpdateStats(ctx, tx, target); err != nil {
		return domain.ErrInternal("update player stats", err)
	}
	if err := s.matches.DeleteByPlayer(ctx, tx, target.ID); err != nil {
		return domain.ErrInternal("delete matches", err)
	}

	action := domain.AdminAction{
		AdminID:    actor.ID,
		ActionType: domain.ActionResetStats,
		TargetID:   &target.ID,
		Details:    fmt.Sprintf("reset stats of %s", nickname),
	}
	if err := s.audit.Record(ctx, tx, &action); err != nil {
		return domain.ErrInternal("record audit", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.ErrInternal("commit tx", err)
	}
	s.audit.Publish(action)
	return nil
}

// ListPlayers returns a page of the admin player listing plus the total count.
func (s *ModerationService) ListPlayers(ctx context.Context, limit, offset int) ([]domain.PlayerSummary, int, error) {
	if limit <= 0 {
		limit = defaultLeaderboardSize
	}
	if limit > maxLeaderboardSize {
		limit = maxLeaderboardSize
	}
	if offset < 0 {
		offset = 0
	}
	players, total, err := s.players.List(ctx, s.pool, limit, offset)
	if err != nil {
		return nil, 0, domain.ErrInternal("list players", err)
	}
	return players, total, nil
}

// RecentMatches returns the latest matches across all players.
func (s *ModerationService) RecentMatches(ctx context.Context, limit int) ([]domain.AdminMatch, error) {
	if limit <= 0 {
		limit = defaultHistorySize
	}
	matches, err := s.matches.Recent(ctx, s.pool, limit)
	if err != nil {
		return nil, domain.ErrInternal("list matches", err)
	}
	return matches, nil
}

// ServerStats assembles the admin dashboard: counters, role distribution and
// the latest audit entries.
func (s *ModerationService) ServerStats(ctx context.Context) (*domain.ServerStats, error) {
	stats, err := s.stats.ServerCounts(ctx, s.pool)
	if err != nil {
		return nil, domain.ErrInternal("server counts", err)
	}
	recent, err := s.audit.repo.Recent(ctx, s.pool, 10)
	if err != nil {
		return nil, domain.ErrInternal("recent admin actions", err)
	}
	stats.RecentAdminActions = recent
	return stats, nil
}
