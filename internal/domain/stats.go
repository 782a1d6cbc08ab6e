package domain

import "math"

// Round2 rounds to 2 decimals (kd-style values).
func Round2(v float64) float64 { return math.Round(v*100) / 100 }

// Round1 rounds to 1 decimal (percentage-style values).
func Round1(v float64) float64 { return math.Round(v*10) / 10 }

// Round0 rounds to a whole number (rating-average values).
func Round0(v float64) float64 { return math.Round(v) }

// ApplyMatch folds one match into the player's counters and running averages
// and moves the rating by delta (a magnitude; sign comes from the result).
// It returns the rating before and after the adjustment.
//
// Averages use the incremental mean new = (old*(n-1) + x) / n so that
// replaying the history in order reproduces the stored aggregates. Rounding
// is fixed at 2 decimals for avg_kd and 1 decimal for avg_hs, avg_kills and
// win_percentage; the client applies the identical policy.
func (p *Player) ApplyMatch(m MatchSubmission, delta int) (before, after int) {
	before = p.Rating

	switch m.Result {
	case ResultWin:
		p.Wins++
		p.Rating += delta
	case ResultLoss:
		p.Losses++
		p.Rating -= delta
	default:
		p.Ties++
	}
	p.Matches++
	p.TotalKills += m.Kills
	p.TotalDeaths += m.Deaths

	n := float64(p.Matches)
	p.AvgKD = Round2((p.AvgKD*(n-1) + m.KDRatio()) / n)
	p.AvgHS = Round1((p.AvgHS*(n-1) + m.HSPercentage) / n)
	p.AvgKills = Round1(float64(p.TotalKills) / n)
	p.WinPercentage = Round1(float64(p.Wins) / n * 100)

	return before, p.Rating
}

// ResetStats restores the registration defaults: starting rating, zero
// counters, zero aggregates. The caller is responsible for deleting the
// player's match rows in the same transaction.
func (p *Player) ResetStats() {
	p.Rating = StartingRating
	p.Wins, p.Losses, p.Ties, p.Matches = 0, 0, 0, 0
	p.TotalKills, p.TotalDeaths = 0, 0
	p.AvgKD, p.AvgHS, p.AvgKills, p.WinPercentage = 0, 0, 0, 0
}

// StatsUpdate is the legacy full-stats sync payload: the client's own view of
// the counters, applied verbatim when no match payload accompanies it.
type StatsUpdate struct {
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
}

// MapStats is the per-map aggregate of a player's history.
type MapStats struct {
	Map          string  `json:"map"`
	TotalMatches int     `json:"total_matches"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	WinRate      float64 `json:"win_rate"`
	AvgKills     float64 `json:"avg_kills"`
	AvgDeaths    float64 `json:"avg_deaths"`
}

// TimeStats groups the per-hour and per-day breakdowns.
type TimeStats struct {
	Hours []HourStats `json:"hours"`
	Days  []DayStats  `json:"days"`
}

// HourStats is TimeBucketStats keyed by hour of day.
type HourStats struct {
	Hour         int     `json:"hour"`
	TotalMatches int     `json:"total_matches"`
	Wins         int     `json:"wins"`
	WinRate      float64 `json:"win_rate"`
}

// DayStats is TimeBucketStats keyed by day of week.
type DayStats struct {
	Day          int     `json:"day"`
	TotalMatches int     `json:"total_matches"`
	Wins         int     `json:"wins"`
	WinRate      float64 `json:"win_rate"`
}

// SeasonStats is one season's slice of a player's history. Seasons without
// matches for the player are included with zero counters.
type SeasonStats struct {
	SeasonID  int64   `json:"season_id"`
	Name      string  `json:"name"`
	Matches   int     `json:"matches"`
	Wins      int     `json:"wins"`
	WinRate   float64 `json:"win_rate"`
	AvgRating float64 `json:"avg_rating"`
}

// DetailedProfile joins the player's stats with their premium status.
type DetailedProfile struct {
	PlayerStats
	IsPremium    bool   `json:"is_premium"`
	PremiumUntil string `json:"premium_until,omitempty"`
}

// ServerStats is the admin dashboard summary.
type ServerStats struct {
	TotalPlayers       int                `json:"total_players"`
	ActivePlayers      int                `json:"active_players"`
	BannedPlayers      int                `json:"banned_players"`
	TotalMatches       int                `json:"total_matches"`
	UnverifiedMatches  int                `json:"unverified_matches"`
	RolesDistribution  map[string]int     `json:"roles_distribution"`
	RecentAdminActions []AdminActionEntry `json:"recent_admin_actions"`
}
