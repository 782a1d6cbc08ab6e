package domain

import "time"

// Role is the player's authorization level.
type Role string

const (
	RolePlayer    Role = "player"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RolePlayer, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// StartingRating is assigned on registration and restored by a stats reset.
const StartingRating = 1050

// Player represents a players row. Counters and averages are mirrors of the
// match history, maintained incrementally by the stats engine.
type Player struct {
	ID            int64      `json:"id"`
	Nickname      string     `json:"nickname"`
	PasswordHash  string     `json:"-"`
	Email         string     `json:"email,omitempty"`
	Role          Role       `json:"role"`
	Rating        int        `json:"rating"`
	Wins          int        `json:"wins"`
	Losses        int        `json:"losses"`
	Ties          int        `json:"ties"`
	Matches       int        `json:"matches"`
	AvgKD         float64    `json:"avg_kd"`
	AvgHS         float64    `json:"avg_hs"`
	WinPercentage float64    `json:"win_percentage"`
	TotalKills    int        `json:"total_kills"`
	TotalDeaths   int        `json:"total_deaths"`
	AvgKills      float64    `json:"avg_kills"`
	IsBanned      bool       `json:"is_banned"`
	BanReason     *string    `json:"ban_reason,omitempty"`
	BanUntil      *time.Time `json:"ban_until,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	LastUpdated   time.Time  `json:"last_updated"`
}

// BanExpired reports whether the player carries a ban whose stored expiry has
// passed. Permanent bans (nil BanUntil) never expire.
func (p *Player) BanExpired(now time.Time) bool {
	return p.IsBanned && p.BanUntil != nil && !p.BanUntil.After(now)
}

// PlayerStats is the stats payload returned to clients.
type PlayerStats struct {
	Nickname      string  `json:"nickname"`
	Rating        int     `json:"rating"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	Ties          int     `json:"ties"`
	Matches       int     `json:"matches"`
	AvgKD         float64 `json:"avg_kd"`
	AvgHS         float64 `json:"avg_hs"`
	WinPercentage float64 `json:"win_percentage"`
	TotalKills    int     `json:"total_kills"`
	TotalDeaths   int     `json:"total_deaths"`
	AvgKills      float64 `json:"avg_kills"`
	Role          Role    `json:"role"`
	IsBanned      bool    `json:"is_banned"`
	BanReason     *string `json:"ban_reason,omitempty"`
}

// Stats returns the client-facing stats snapshot for the player.
func (p *Player) Stats() PlayerStats {
	return PlayerStats{
		Nickname:      p.Nickname,
		Rating:        p.Rating,
		Wins:          p.Wins,
		Losses:        p.Losses,
		Ties:          p.Ties,
		Matches:       p.Matches,
		AvgKD:         p.AvgKD,
		AvgHS:         p.AvgHS,
		WinPercentage: p.WinPercentage,
		TotalKills:    p.TotalKills,
		TotalDeaths:   p.TotalDeaths,
		AvgKills:      p.AvgKills,
		Role:          p.Role,
		IsBanned:      p.IsBanned,
		BanReason:     p.BanReason,
	}
}

// PlayerSummary is one row of the admin player listing.
type PlayerSummary struct {
	ID            int64     `json:"id"`
	Nickname      string    `json:"nickname"`
	Rating        int       `json:"rating"`
	Wins          int       `json:"wins"`
	Losses        int       `json:"losses"`
	Matches       int       `json:"matches"`
	WinPercentage float64   `json:"win_percentage"`
	Role          Role      `json:"role"`
	IsBanned      bool      `json:"is_banned"`
	CreatedAt     time.Time `json:"created_at"`
}
