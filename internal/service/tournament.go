package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/scorekeep/server/internal/domain"
	"github.com/scorekeep/server/internal/repository"
)

// TournamentService manages tournaments and registrations.
type TournamentService struct {
	pool        *pgxpool.Pool
	players     repository.PlayerRepository
	tournaments repository.TournamentRepository
	audit       *AuditLog
}

// NewTournamentService creates a TournamentService.
func NewTournamentService(pool *pgxpool.Pool, players repository.PlayerRepository,
	tournaments repository.TournamentRepository, audit *AuditLog) *TournamentService {
	return &TournamentService{pool: pool, players: players, tournaments: tournaments, audit: audit}
}

// Create opens a new tournament in the planned state.
func (s *TournamentService) Create(ctx context.Context, actor *domain.Player, name, description string,
	start, end time.Time, maxPlayers int, prize string) (*domain.Tournament, error) {
	if name == "" {
		return nil, domain.ErrValidation("tournament name is required")
	}
	if maxPlayers <= 1 {
		return nil, domain.ErrValidation("max players must be at least 2")
	}
	if !end.After(start) {
		return nil, domain.ErrValidation("end date must be after start date")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	t := &domain.Tournament{
		Name:        name,
		Description: description,
		StartDate:   start,
		EndDate:     end,
		MaxPlayers:  maxPlayers,
		PrizePool:   prize,
		Status:      domain.TournamentPlanned,
		CreatedBy:   &actor.ID,
	}
	if err := s.tournaments.Insert(ctx, tx, t); err != nil {
		return nil, domain.ErrInternal("insert tournament", err)
	}

	action := domain.AdminAction{
		AdminID:    actor.ID,
		ActionType: domain.ActionCreateTournament,
		Details:    fmt.Sprintf("created tournament %q for %d players", name, maxPlayers),
	}
	if err := s.audit.Record(ctx, tx, &action); err != nil {
		return nil, domain.ErrInternal("record audit", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}
	s.audit.Publish(action)

	return t, nil
}

// List returns tournaments newest first, optionally filtered by status.
func (s *TournamentService) List(ctx context.Context, status string) ([]domain.Tournament, error) {
	var filter *domain.TournamentStatus
	if status != "" {
		st := domain.TournamentStatus(status)
		if !st.Valid() {
			return nil, domain.ErrValidation("unknown tournament status")
		}
		filter = &st
	}
	tournaments, err := s.tournaments.List(ctx, s.pool, filter)
	if err != nil {
		return nil, domain.ErrInternal("list tournaments", err)
	}
	return tournaments, nil
}

// Register signs a player up for a tournament. The tournament row is locked
// so the capacity check and the counter increment are atomic; duplicate
// registration surfaces as a Conflict.
func (s *TournamentService) Register(ctx context.Context, nickname string, tournamentID int64) error {
	player, err := s.players.FindByNickname(ctx, s.pool, nickname)
	if err != nil {
		return domain.ErrInternal("find player", err)
	}
	if player == nil {
		return domain.ErrNotFound("player", nickname)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	t, err := s.tournaments.LockByID(ctx, tx, tournamentID)
	if err != nil {
		return domain.ErrInternal("lock tournament", err)
	}
	if t == nil {
		return domain.ErrNotFound("tournament", fmt.Sprintf("%d", tournamentID))
	}
	if err := t.CanRegister(); err != nil {
		return err
	}

	if err := s.tournaments.AddParticipant(ctx, tx, t.ID, player.ID); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.ErrInternal("commit tx", err)
	}
	return nil
}

// Matches returns the bracket rows of a tournament.
func (s *TournamentService) Matches(ctx context.Context, tournamentID int64) ([]domain.TournamentMatch, error) {
	matches, err := s.tournaments.Matches(ctx, s.pool, tournamentID)
	if err != nil {
		return nil, domain.ErrInternal("list tournament matches", err)
	}
	return matches, nil
}
