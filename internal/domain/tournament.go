package domain

import "time"

// TournamentStatus is the tournament state machine:
// planned -> ongoing -> finished, with cancelled reachable from planned.
type TournamentStatus string

const (
	TournamentPlanned   TournamentStatus = "planned"
	TournamentOngoing   TournamentStatus = "ongoing"
	TournamentFinished  TournamentStatus = "finished"
	TournamentCancelled TournamentStatus = "cancelled"
)

// Valid reports whether s is a known tournament status.
func (s TournamentStatus) Valid() bool {
	switch s {
	case TournamentPlanned, TournamentOngoing, TournamentFinished, TournamentCancelled:
		return true
	}
	return false
}

// Tournament is a bracketed competition with a capped participant list.
type Tournament struct {
	ID             int64            `json:"id"`
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	StartDate      time.Time        `json:"start_date"`
	EndDate        time.Time        `json:"end_date"`
	MaxPlayers     int              `json:"max_players"`
	CurrentPlayers int              `json:"current_players"`
	PrizePool      string           `json:"prize_pool"`
	Status         TournamentStatus `json:"status"`
	CreatedBy      *int64           `json:"-"`
	CreatedAt      time.Time        `json:"-"`
}

// CanRegister reports whether a new participant may join.
func (t *Tournament) CanRegister() error {
	if t.Status != TournamentPlanned {
		return ErrForbidden("registration is closed")
	}
	if t.CurrentPlayers >= t.MaxPlayers {
		return ErrForbidden("tournament is full")
	}
	return nil
}

// TournamentParticipant links a player to a tournament, at most once.
type TournamentParticipant struct {
	ID            int64     `json:"id"`
	TournamentID  int64     `json:"tournament_id"`
	PlayerID      int64     `json:"player_id"`
	RegisteredAt  time.Time `json:"registered_at"`
	FinalPosition *int      `json:"final_position,omitempty"`
	Prize         *string   `json:"prize,omitempty"`
}

// TournamentMatch is one bracket slot. Bracket generation and advancement are
// an external process; this service only persists and reads the rows.
type TournamentMatch struct {
	ID           int64      `json:"id"`
	TournamentID int64      `json:"tournament_id"`
	RoundNumber  int        `json:"round_number"`
	Player1ID    *int64     `json:"player1_id,omitempty"`
	Player2ID    *int64     `json:"player2_id,omitempty"`
	WinnerID     *int64     `json:"winner_id,omitempty"`
	Score1       int        `json:"score1"`
	Score2       int        `json:"score2"`
	MatchDate    *time.Time `json:"match_date,omitempty"`
	Status       string     `json:"status"`
}
