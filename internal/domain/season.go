package domain

import "time"

// Season is a named date window used to slice statistics. PremiumReward is
// the premium-day count associated with finishing the season; issuing that
// reward is not an automatic process here.
type Season struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	PremiumReward int       `json:"premium_reward"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

// Premium grant source tags.
const (
	PremiumSourceGift     = "gift"
	PremiumSourceSeason   = "season"
	PremiumSourcePurchase = "purchase"
)

// PremiumGrant is the single premium row per player. The flag is read lazily:
// any read must treat an elapsed expiry as inactive and persist the clear.
type PremiumGrant struct {
	ID        int64      `json:"id"`
	PlayerID  int64      `json:"player_id"`
	Until     *time.Time `json:"premium_until,omitempty"`
	IsPremium bool       `json:"is_premium"`
	Source    string     `json:"premium_source"`
	CreatedAt time.Time  `json:"created_at"`
}

// ActiveAt reports whether the grant is active: flagged and with an expiry
// strictly in the future.
func (g *PremiumGrant) ActiveAt(now time.Time) bool {
	return g != nil && g.IsPremium && g.Until != nil && g.Until.After(now)
}

// PremiumStatus is the client-facing premium payload.
type PremiumStatus struct {
	IsPremium    bool       `json:"is_premium"`
	PremiumUntil *time.Time `json:"premium_until"`
}

// Match2v2 is a season-scoped team match. Rows are accepted as submitted and
// never verified, unlike singles matches.
type Match2v2 struct {
	ID         int64     `json:"id"`
	SeasonID   int64     `json:"season_id"`
	Team1P1    int64     `json:"-"`
	Team1P2    int64     `json:"-"`
	Team2P1    int64     `json:"-"`
	Team2P2    int64     `json:"-"`
	Team1Score int       `json:"team1_score"`
	Team2Score int       `json:"team2_score"`
	WinnerTeam int       `json:"winner_team"`
	PlayedAt   time.Time `json:"played_at"`
}
