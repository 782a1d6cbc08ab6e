package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/scorekeep/server/internal/domain"
	"github.com/scorekeep/server/internal/repository"
)

// PremiumService manages premium grants, seasons and the 2v2 match log.
type PremiumService struct {
	pool    *pgxpool.Pool
	players repository.PlayerRepository
	premium repository.PremiumRepository
	seasons repository.SeasonRepository
	audit   *AuditLog
}

// NewPremiumService creates a PremiumService.
func NewPremiumService(pool *pgxpool.Pool, players repository.PlayerRepository,
	premium repository.PremiumRepository, seasons repository.SeasonRepository, audit *AuditLog) *PremiumService {
	return &PremiumService{pool: pool, players: players, premium: premium, seasons: seasons, audit: audit}
}

// Status returns the player's premium status. The expiry check is lazy: a
// grant whose stored expiry has passed is flagged inactive on this read and
// reported as such.
func (s *PremiumService) Status(ctx context.Context, nickname string) (*domain.PremiumStatus, error) {
	player, err := s.players.FindByNickname(ctx, s.pool, nickname)
	if err != nil {
		return nil, domain.ErrInternal("find player", err)
	}
	if player == nil {
		return nil, domain.ErrNotFound("player", nickname)
	}

	grant, err := s.premium.FindByPlayer(ctx, s.pool, player.ID)
	if err != nil {
		return nil, domain.ErrInternal("find premium grant", err)
	}
	if grant == nil {
		return &domain.PremiumStatus{}, nil
	}

	now := time.Now()
	if grant.IsPremium && !grant.ActiveAt(now) {
		if err := s.premium.Deactivate(ctx, s.pool, player.ID); err != nil {
			return nil, domain.ErrInternal("deactivate expired premium", err)
		}
		return &domain.PremiumStatus{}, nil
	}
	if !grant.ActiveAt(now) {
		return &domain.PremiumStatus{}, nil
	}
	return &domain.PremiumStatus{IsPremium: true, PremiumUntil: grant.Until}, nil
}

// Grant gives a player premium for the given number of days, replacing any
// previous grant. The grant and its audit entry commit together.
func (s *PremiumService) Grant(ctx context.Context, actor *domain.Player, nickname string, days int, source string) (*domain.PremiumStatus, error) {
	if days <= 0 {
		return nil, domain.ErrValidation("days must be positive")
	}
	switch source {
	case "":
		source = domain.PremiumSourceGift
	case domain.PremiumSourceGift, domain.PremiumSourceSeason, domain.PremiumSourcePurchase:
	default:
		return nil, domain.ErrValidation("unknown premium source")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	target, err := s.players.FindByNickname(ctx, tx, nickname)
	if err != nil {
		return nil, domain.ErrInternal("find player", err)
	}
	if target == nil {
		return nil, domain.ErrNotFound("player", nickname)
	}

	until := time.Now().AddDate(0, 0, days)
	if err := s.premium.Upsert(ctx, tx, target.ID, until, source); err != nil {
		return nil, domain.ErrInternal("upsert premium grant", err)
	}

	action := domain.AdminAction{
		AdminID:    actor.ID,
		ActionType: domain.ActionGrantPremium,
		TargetID:   &target.ID,
		Details:    fmt.Sprintf("granted premium to %s for %d days (%s)", nickname, days, source),
	}
	if err := s.audit.Record(ctx, tx, &action); err != nil {
		return nil, domain.ErrInternal("record audit", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}
	s.audit.Publish(action)

	return &domain.PremiumStatus{IsPremium: true, PremiumUntil: &until}, nil
}

// CreateSeason opens a new named date window for statistics slicing.
func (s *PremiumService) CreateSeason(ctx context.Context, actor *domain.Player, name string, start, end time.Time, reward int) (*domain.Season, error) {
	if name == "" {
		return nil, domain.ErrValidation("season name is required")
	}
	if !end.After(start) {
		return nil, domain.ErrValidation("end date must be after start date")
	}
	if reward < 0 {
		return nil, domain.ErrValidation("premium reward must not be negative")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	season := &domain.Season{
		Name:          name,
		StartDate:     start,
		EndDate:       end,
		PremiumReward: reward,
		IsActive:      true,
	}
	if err := s.seasons.Insert(ctx, tx, season); err != nil {
		return nil, domain.ErrInternal("insert season", err)
	}

	action := domain.AdminAction{
		AdminID:    actor.ID,
		ActionType: domain.ActionCreateSeason,
		Details:    fmt.Sprintf("created season %q (%s to %s)", name, start.Format("2006-01-02"), end.Format("2006-01-02")),
	}
	if err := s.audit.Record(ctx, tx, &action); err != nil {
		return nil, domain.ErrInternal("record audit", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}
	s.audit.Publish(action)

	return season, nil
}

// ActiveSeasons lists the currently active seasons, newest first.
func (s *PremiumService) ActiveSeasons(ctx context.Context) ([]domain.Season, error) {
	seasons, err := s.seasons.ListActive(ctx, s.pool)
	if err != nil {
		return nil, domain.ErrInternal("list seasons", err)
	}
	return seasons, nil
}

// Add2v2 records a season-scoped team match. The submitting player must hold
// an active premium grant; all four nicknames must resolve. The winner is
// decided by score, team 2 on a tie.
func (s *PremiumService) Add2v2(ctx context.Context, nickname string, seasonID int64, teammate, opponent1, opponent2 string, score1, score2 int) error {
	if seasonID <= 0 {
		return domain.ErrValidation("season_id is required")
	}
	if score1 < 0 || score2 < 0 {
		return domain.ErrValidation("scores must not be negative")
	}

	status, err := s.Status(ctx, nickname)
	if err != nil {
		return err
	}
	if !status.IsPremium {
		return domain.ErrForbidden("2v2 match recording requires premium")
	}

	ids := make([]int64, 0, 4)
	for _, nick := range []string{nickname, teammate, opponent1, opponent2} {
		p, err := s.players.FindByNickname(ctx, s.pool, nick)
		if err != nil {
			return domain.ErrInternal("find player", err)
		}
		if p == nil {
			return domain.ErrNotFound("player", nick)
		}
		ids = append(ids, p.ID)
	}

	winner := 2
	if score1 > score2 {
		winner = 1
	}

	match := &domain.Match2v2{
		SeasonID:   seasonID,
		Team1P1:    ids[0],
		Team1P2:    ids[1],
		Team2P1:    ids[2],
		Team2P2:    ids[3],
		Team1Score: score1,
		Team2Score: score2,
		WinnerTeam: winner,
	}
	if err := s.premium.Insert2v2(ctx, s.pool, match); err != nil {
		return domain.ErrInternal("insert 2v2 match", err)
	}
	return nil
}
