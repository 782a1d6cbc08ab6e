package service

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/scorekeep/server/internal/domain"
	"github.com/scorekeep/server/internal/repository"
)

const (
	maxMessageLength   = 1000
	defaultMessagePage = 50
)

// ChatService handles direct messages between player pairs.
type ChatService struct {
	pool    *pgxpool.Pool
	players repository.PlayerRepository
	chats   repository.ChatRepository
}

// NewChatService creates a ChatService.
func NewChatService(pool *pgxpool.Pool, players repository.PlayerRepository, chats repository.ChatRepository) *ChatService {
	return &ChatService{pool: pool, players: players, chats: chats}
}

// SendMessage appends a message to the pair's chat, creating the chat on
// first contact.
func (s *ChatService) SendMessage(ctx context.Context, sender, receiver, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.ErrValidation("message text is required")
	}
	if len(text) > maxMessageLength {
		return domain.ErrValidation("message too long")
	}
	if sender == receiver {
		return domain.ErrValidation("cannot message yourself")
	}

	from, to, err := s.resolvePair(ctx, sender, receiver)
	if err != nil {
		return err
	}

	chat, err := s.pairChat(ctx, from.ID, to.ID)
	if err != nil {
		return err
	}
	if err := s.chats.InsertMessage(ctx, s.pool, chat.ID, from.ID, text); err != nil {
		return domain.ErrInternal("insert message", err)
	}
	return nil
}

// Messages returns the most recent messages of the pair's chat in
// chronological order, creating the chat if it does not exist yet.
func (s *ChatService) Messages(ctx context.Context, nickname, other string, limit int) ([]domain.Message, error) {
	p1, p2, err := s.resolvePair(ctx, nickname, other)
	if err != nil {
		return nil, err
	}

	chat, err := s.pairChat(ctx, p1.ID, p2.ID)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultMessagePage
	}
	msgs, err := s.chats.Messages(ctx, s.pool, chat.ID, limit)
	if err != nil {
		return nil, domain.ErrInternal("query messages", err)
	}
	return msgs, nil
}

// UserChats lists the player's chats, most recently active first.
func (s *ChatService) UserChats(ctx context.Context, nickname string) ([]domain.ChatSummary, error) {
	player, err := s.players.FindByNickname(ctx, s.pool, nickname)
	if err != nil {
		return nil, domain.ErrInternal("find player", err)
	}
	if player == nil {
		return nil, domain.ErrNotFound("player", nickname)
	}

	chats, err := s.chats.ListForPlayer(ctx, s.pool, player.ID)
	if err != nil {
		return nil, domain.ErrInternal("list chats", err)
	}
	return chats, nil
}

// pairChat finds the chat for an unordered player pair, creating it when
// absent. A concurrent create loses the race on the unique pair constraint
// and re-reads.
func (s *ChatService) pairChat(ctx context.Context, p1, p2 int64) (*domain.Chat, error) {
	chat, err := s.chats.FindByPair(ctx, s.pool, p1, p2)
	if err != nil {
		return nil, domain.ErrInternal("find chat", err)
	}
	if chat != nil {
		return chat, nil
	}

	chat, err = s.chats.Create(ctx, s.pool, p1, p2)
	if err == nil {
		return chat, nil
	}

	chat, ferr := s.chats.FindByPair(ctx, s.pool, p1, p2)
	if ferr == nil && chat != nil {
		return chat, nil
	}
	return nil, domain.ErrInternal("create chat", err)
}

func (s *ChatService) resolvePair(ctx context.Context, n1, n2 string) (*domain.Player, *domain.Player, error) {
	p1, err := s.players.FindByNickname(ctx, s.pool, n1)
	if err != nil {
		return nil, nil, domain.ErrInternal("find player", err)
	}
	if p1 == nil {
		return nil, nil, domain.ErrNotFound("player", n1)
	}
	p2, err := s.players.FindByNickname(ctx, s.pool, n2)
	if err != nil {
		return nil, nil, domain.ErrInternal("find player", err)
	}
	if p2 == nil {
		return nil, nil, domain.ErrNotFound("player", n2)
	}
	return p1, p2, nil
}
