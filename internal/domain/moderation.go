package domain

import "time"

// Ban is one row of the ban history log. The players table mirrors the
// currently active ban for fast reads; this table is the audit trail.
type Ban struct {
	ID        int64      `json:"id"`
	PlayerID  int64      `json:"player_id"`
	AdminID   int64      `json:"admin_id"`
	Reason    string     `json:"reason"`
	BanDate   time.Time  `json:"ban_date"`
	UnbanDate *time.Time `json:"unban_date,omitempty"`
	IsActive  bool       `json:"is_active"`
}

// Admin action kinds written to the audit log.
const (
	ActionChangeRole       = "change_role"
	ActionBan              = "ban"
	ActionUnban            = "unban"
	ActionVerifyMatch      = "verify_match"
	ActionUnverifyMatch    = "unverify_match"
	ActionDeleteMatch      = "delete_match"
	ActionResetStats       = "reset_stats"
	ActionGrantPremium     = "grant_premium"
	ActionCreateSeason     = "create_season"
	ActionCreateTournament = "create_tournament"
)

// AdminAction is one append-only audit row. Every privileged mutation writes
// exactly one, in the same transaction as the mutation itself.
type AdminAction struct {
	ID         int64     `json:"id"`
	AdminID    int64     `json:"admin_id"`
	ActionType string    `json:"action_type"`
	TargetID   *int64    `json:"target_id,omitempty"`
	Details    string    `json:"details"`
	ActionDate time.Time `json:"action_date"`
}

// AdminActionEntry is an audit row joined with the actor's nickname for the
// dashboard listing.
type AdminActionEntry struct {
	Date    time.Time `json:"date"`
	Admin   string    `json:"admin"`
	Action  string    `json:"action"`
	Details string    `json:"details"`
}
