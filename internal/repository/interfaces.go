package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/scorekeep/server/internal/domain"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// PlayerRepository provides access to the players table.
type PlayerRepository interface {
	// FindByNickname returns a player by nickname, or nil if absent.
	FindByNickname(ctx context.Context, db DBTX, nickname string) (*domain.Player, error)

	// FindByID returns a player by id, or nil if absent.
	FindByID(ctx context.Context, db DBTX, id int64) (*domain.Player, error)

	// LockByNickname acquires a row-level lock (SELECT FOR UPDATE) and returns
	// the player, or nil if absent.
	LockByNickname(ctx context.Context, tx pgx.Tx, nickname string) (*domain.Player, error)

	// Create inserts a new player and fills in its generated ID.
	Create(ctx context.Context, db DBTX, player *domain.Player) error

	// UpdateStats persists the rating, counters and aggregates of a player
	// previously locked in the same transaction.
	UpdateStats(ctx context.Context, db DBTX, player *domain.Player) error

	// UpdateRole sets a player's role.
	UpdateRole(ctx context.Context, db DBTX, id int64, role domain.Role) error

	// SetBanMirror writes the fast-path ban fields mirrored from the ban log.
	SetBanMirror(ctx context.Context, db DBTX, id int64, banned bool, reason *string, until *time.Time) error

	// List returns a page of player summaries ordered by id descending, plus
	// the total player count.
	List(ctx context.Context, db DBTX, limit, offset int) ([]domain.PlayerSummary, int, error)
}

// MatchRepository provides access to the matches table.
type MatchRepository interface {
	// Insert appends a match row and fills in its generated ID.
	Insert(ctx context.Context, db DBTX, m *domain.Match) error

	// SetVerified toggles the verification flag. Returns false if the match
	// does not exist.
	SetVerified(ctx context.Context, db DBTX, id int64, verified bool, verifierID int64) (bool, error)

	// Delete removes a match row. Returns false if it does not exist.
	Delete(ctx context.Context, db DBTX, id int64) (bool, error)

	// DeleteByPlayer removes all of a player's match rows.
	DeleteByPlayer(ctx context.Context, db DBTX, playerID int64) error

	// Recent returns the latest matches across all players, newest first.
	Recent(ctx context.Context, db DBTX, limit int) ([]domain.AdminMatch, error)

	// RatingHistory returns (rating_after, played_at) pairs in chronological
	// order.
	RatingHistory(ctx context.Context, db DBTX, playerID int64, limit int) ([]domain.RatingPoint, error)
}

// BanRepository provides access to the bans history log.
type BanRepository interface {
	// Insert appends a ban row.
	Insert(ctx context.Context, db DBTX, b *domain.Ban) error

	// DeactivateActive marks all active ban rows of a player inactive.
	DeactivateActive(ctx context.Context, db DBTX, playerID int64) error
}

// AuditRepository provides access to the append-only admin_actions log.
type AuditRepository interface {
	// Insert appends an audit row and fills in its generated ID.
	Insert(ctx context.Context, db DBTX, a *domain.AdminAction) error

	// Recent returns the latest audit entries joined with actor nicknames.
	Recent(ctx context.Context, db DBTX, limit int) ([]domain.AdminActionEntry, error)
}

// SeasonRepository provides access to the seasons table.
type SeasonRepository interface {
	Insert(ctx context.Context, db DBTX, s *domain.Season) error
	ListActive(ctx context.Context, db DBTX) ([]domain.Season, error)
}

// PremiumRepository provides access to premium_grants and matches_2v2.
type PremiumRepository interface {
	// FindByPlayer returns the player's grant, or nil if absent.
	FindByPlayer(ctx context.Context, db DBTX, playerID int64) (*domain.PremiumGrant, error)

	// Upsert replaces the single grant row for a player.
	Upsert(ctx context.Context, db DBTX, playerID int64, until time.Time, source string) error

	// Deactivate clears the premium flag after a lazy expiry check.
	Deactivate(ctx context.Context, db DBTX, playerID int64) error

	// Insert2v2 appends an immutable 2v2 match row.
	Insert2v2(ctx context.Context, db DBTX, m *domain.Match2v2) error
}

// ChatRepository provides access to chats and messages.
type ChatRepository interface {
	// FindByPair returns the chat for an unordered player pair, checking both
	// orderings, or nil if absent.
	FindByPair(ctx context.Context, db DBTX, p1, p2 int64) (*domain.Chat, error)

	// Create inserts a chat row for the pair.
	Create(ctx context.Context, db DBTX, p1, p2 int64) (*domain.Chat, error)

	// InsertMessage appends a message and bumps the chat's last-activity time.
	InsertMessage(ctx context.Context, db DBTX, chatID, senderID int64, text string) error

	// Messages returns the most recent limit messages in chronological order.
	Messages(ctx context.Context, db DBTX, chatID int64, limit int) ([]domain.Message, error)

	// ListForPlayer returns the player's chats, most recently active first.
	ListForPlayer(ctx context.Context, db DBTX, playerID int64) ([]domain.ChatSummary, error)
}

// TournamentRepository provides access to tournaments, participants and
// bracket matches.
type TournamentRepository interface {
	Insert(ctx context.Context, db DBTX, t *domain.Tournament) error

	// List returns tournaments newest first, optionally filtered by status.
	List(ctx context.Context, db DBTX, status *domain.TournamentStatus) ([]domain.Tournament, error)

	// LockByID locks a tournament row for a registration check, or nil if
	// absent.
	LockByID(ctx context.Context, tx pgx.Tx, id int64) (*domain.Tournament, error)

	// AddParticipant inserts the participant link and increments the counter.
	// Returns a Conflict error on duplicate registration.
	AddParticipant(ctx context.Context, db DBTX, tournamentID, playerID int64) error

	// Matches returns the bracket rows of a tournament ordered by round.
	// Rows are written by the external bracket process.
	Matches(ctx context.Context, db DBTX, tournamentID int64) ([]domain.TournamentMatch, error)
}

// StatsRepository serves the read-side analytics queries.
type StatsRepository interface {
	// Leaderboard returns active players with at least one match, ordered
	// descending by the whitelisted sort key.
	Leaderboard(ctx context.Context, db DBTX, sortBy string, limit int) ([]domain.PlayerStats, error)

	// MapStats aggregates a player's history per map.
	MapStats(ctx context.Context, db DBTX, playerID int64) ([]domain.MapStats, error)

	// TimeStats aggregates win rates per hour of day and day of week.
	TimeStats(ctx context.Context, db DBTX, playerID int64) (*domain.TimeStats, error)

	// SeasonComparison slices a player's history by season windows, including
	// seasons with no matches.
	SeasonComparison(ctx context.Context, db DBTX, playerID int64) ([]domain.SeasonStats, error)

	// ServerCounts fills the scalar dashboard counters and role distribution.
	ServerCounts(ctx context.Context, db DBTX) (*domain.ServerStats, error)
}
