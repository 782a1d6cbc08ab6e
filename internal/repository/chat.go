package repository

import (
	"context"
	"fmt"

	"github.com/scorekeep/server/internal/domain"
)

type chatRepo struct{}

// NewChatRepository returns a pgx-backed ChatRepository.
func NewChatRepository() ChatRepository {
	return &chatRepo{}
}

func (r *chatRepo) FindByPair(ctx context.Context, db DBTX, p1, p2 int64) (*domain.Chat, error) {
	var c domain.Chat
	err := db.QueryRow(ctx, `
		SELECT id, player1_id, player2_id, last_message_time, created_at
		FROM chats
		WHERE (player1_id = $1 AND player2_id = $2)
		   OR (player1_id = $2 AND player2_id = $1)`,
		p1, p2,
	).Scan(&c.ID, &c.Player1ID, &c.Player2ID, &c.LastMessageTime, &c.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find chat: %w", err)
	}
	return &c, nil
}

func (r *chatRepo) Create(ctx context.Context, db DBTX, p1, p2 int64) (*domain.Chat, error) {
	var c domain.Chat
	err := db.QueryRow(ctx, `
		INSERT INTO chats (player1_id, player2_id)
		VALUES ($1, $2)
		RETURNING id, player1_id, player2_id, last_message_time, created_at`,
		p1, p2,
	).Scan(&c.ID, &c.Player1ID, &c.Player2ID, &c.LastMessageTime, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}
	return &c, nil
}

func (r *chatRepo) InsertMessage(ctx context.Context, db DBTX, chatID, senderID int64, text string) error {
	if _, err := db.Exec(ctx, `
		INSERT INTO messages (chat_id, sender_id, message_text)
		VALUES ($1, $2, $3)`, chatID, senderID, text); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	if _, err := db.Exec(ctx, `
		UPDATE chats SET last_message_time = now() WHERE id = $1`, chatID); err != nil {
		return fmt.Errorf("touch chat: %w", err)
	}
	return nil
}

// Messages selects the newest limit rows, then flips them to chronological
// order for display.
func (r *chatRepo) Messages(ctx context.Context, db DBTX, chatID int64, limit int) ([]domain.Message, error) {
	rows, err := db.Query(ctx, `
		SELECT m.id, m.chat_id, p.nickname, m.message_text, m.is_read, m.sent_at
		FROM messages m
		JOIN players p ON p.id = m.sender_id
		WHERE m.chat_id = $1
		ORDER BY m.sent_at DESC
		LIMIT $2`, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.ChatID, &m.Sender, &m.Text, &m.IsRead, &m.SentAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (r *chatRepo) ListForPlayer(ctx context.Context, db DBTX, playerID int64) ([]domain.ChatSummary, error) {
	rows, err := db.Query(ctx, `
		SELECT c.id,
		       CASE WHEN c.player1_id = $1 THEN p2.nickname ELSE p1.nickname END,
		       c.last_message_time
		FROM chats c
		JOIN players p1 ON c.player1_id = p1.id
		JOIN players p2 ON c.player2_id = p2.id
		WHERE c.player1_id = $1 OR c.player2_id = $1
		ORDER BY c.last_message_time DESC NULLS LAST`, playerID)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	defer rows.Close()

	var chats []domain.ChatSummary
	for rows.Next() {
		var c domain.ChatSummary
		if err := rows.Scan(&c.ID, &c.OtherPlayer, &c.LastMessage); err != nil {
			return nil, fmt.Errorf("scan chat summary: %w", err)
		}
		chats = append(chats, c)
	}
	return chats, rows.Err()
}
