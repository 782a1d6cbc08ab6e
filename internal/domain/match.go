package domain

import "time"

// MatchResult is the outcome of a singles match.
type MatchResult string

const (
	ResultWin  MatchResult = "W"
	ResultLoss MatchResult = "L"
	ResultTie  MatchResult = "T"
)

// Valid reports whether r is a known result.
func (r MatchResult) Valid() bool {
	switch r {
	case ResultWin, ResultLoss, ResultTie:
		return true
	}
	return false
}

// Match is one row of a player's match history. Rows are append-only except
// for moderator verification toggles and admin deletion.
type Match struct {
	ID           int64       `json:"id"`
	PlayerID     int64       `json:"-"`
	Result       MatchResult `json:"result"`
	Kills        int         `json:"kills"`
	Deaths       int         `json:"deaths"`
	HSPercentage float64     `json:"hs_percentage"`
	MapName      string      `json:"map"`
	RatingBefore int         `json:"rating_before"`
	RatingAfter  int         `json:"rating_after"`
	RatingDelta  int         `json:"rating_delta"`
	IsVerified   bool        `json:"is_verified"`
	VerifiedBy   *int64      `json:"-"`
	PlayedAt     time.Time   `json:"date"`
}

// AdminMatch is a match row joined with its player's nickname for the admin
// match listing.
type AdminMatch struct {
	Match
	Player string `json:"player"`
}

// MatchSubmission is the validated input of one match submission.
type MatchSubmission struct {
	Result       MatchResult
	Kills        int
	Deaths       int
	HSPercentage float64
	MapName      string
}

// Validate checks submission field ranges.
func (m MatchSubmission) Validate() error {
	if !m.Result.Valid() {
		return ErrValidation("result must be one of W, L, T")
	}
	if m.Kills < 0 || m.Deaths < 0 {
		return ErrValidation("kills and deaths must not be negative")
	}
	if m.HSPercentage < 0 || m.HSPercentage > 100 {
		return ErrValidation("hs percentage must be between 0 and 100")
	}
	if m.MapName == "" {
		return ErrValidation("map name is required")
	}
	return nil
}

// KDRatio is the per-match kill/death ratio, 2 decimals. A deathless match
// counts the raw kill count, matching the client-side computation.
func (m MatchSubmission) KDRatio() float64 {
	if m.Deaths > 0 {
		return Round2(float64(m.Kills) / float64(m.Deaths))
	}
	return Round2(float64(m.Kills))
}

// RatingPoint is one step of a player's rating history.
type RatingPoint struct {
	Rating int       `json:"rating"`
	Date   time.Time `json:"date"`
}
