// Package auth holds the role model: the declarative capability matrix the
// router consults before dispatch, and password hashing helpers.
package auth

import "github.com/scorekeep/server/internal/domain"

// Capability describes the authorization requirement of one protocol action:
// which request field names the actor, and which roles may invoke it.
// Actions absent from the matrix are open to anyone.
type Capability struct {
	ActorField string
	Roles      []domain.Role
}

var adminOnly = []domain.Role{domain.RoleAdmin}
var adminOrModerator = []domain.Role{domain.RoleAdmin, domain.RoleModerator}

// capabilities is the single source of truth for role-gated actions.
// Per-action nuances that depend on request content (a moderator may change
// roles but never grant admin) stay in the domain services.
var capabilities = map[string]Capability{
	"admin_get_players":  {ActorField: "nickname", Roles: adminOrModerator},
	"admin_get_matches":  {ActorField: "nickname", Roles: adminOrModerator},
	"admin_get_stats":    {ActorField: "nickname", Roles: adminOrModerator},
	"admin_change_role":  {ActorField: "admin_nickname", Roles: adminOrModerator},
	"admin_ban_player":   {ActorField: "admin_nickname", Roles: adminOrModerator},
	"admin_unban_player": {ActorField: "admin_nickname", Roles: adminOrModerator},
	"admin_verify_match": {ActorField: "admin_nickname", Roles: adminOrModerator},
	"admin_delete_match": {ActorField: "admin_nickname", Roles: adminOrModerator},
	"admin_reset_stats":  {ActorField: "admin_nickname", Roles: adminOnly},
	"create_season":      {ActorField: "admin_nickname", Roles: adminOnly},
	"grant_premium":      {ActorField: "admin_nickname", Roles: adminOrModerator},
	"create_tournament":  {ActorField: "admin_nickname", Roles: adminOrModerator},
}

// Required returns the capability entry for an action, if the action is
// role-gated.
func Required(action string) (Capability, bool) {
	c, ok := capabilities[action]
	return c, ok
}

// Allowed reports whether a role satisfies the capability.
func (c Capability) Allowed(role domain.Role) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}
