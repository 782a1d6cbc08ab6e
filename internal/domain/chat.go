package domain

import "time"

// Chat is a direct-message channel keyed by an unordered pair of players.
// Lookups must check both column orderings; there is exactly one channel per
// pair.
type Chat struct {
	ID              int64      `json:"id"`
	Player1ID       int64      `json:"player1_id"`
	Player2ID       int64      `json:"player2_id"`
	LastMessageTime *time.Time `json:"last_message_time,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Message is one append-only chat message.
type Message struct {
	ID     int64     `json:"id"`
	ChatID int64     `json:"-"`
	Sender string    `json:"sender"`
	Text   string    `json:"text"`
	IsRead bool      `json:"is_read"`
	SentAt time.Time `json:"time"`
}

// ChatSummary is one entry of a player's chat list: the channel and the other
// participant.
type ChatSummary struct {
	ID          int64      `json:"id"`
	OtherPlayer string     `json:"other_player"`
	LastMessage *time.Time `json:"last_message,omitempty"`
}
