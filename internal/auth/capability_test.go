package auth

import (
	"testing"

	"github.com/scorekeep/server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequired_UngatedActionsOpen(t *testing.T) {
	for _, action := range []string{"register", "login", "ping", "get_stats", "get_leaderboard", "send_message"} {
		_, gated := Required(action)
		assert.False(t, gated, action)
	}
}

func TestRequired_AdminOnlyActions(t *testing.T) {
	for _, action := range []string{"admin_reset_stats", "create_season"} {
		c, gated := Required(action)
		require.True(t, gated, action)
		assert.True(t, c.Allowed(domain.RoleAdmin), action)
		assert.False(t, c.Allowed(domain.RoleModerator), action)
		assert.False(t, c.Allowed(domain.RolePlayer), action)
	}
}

func TestRequired_ModeratorActions(t *testing.T) {
	for _, action := range []string{"admin_ban_player", "admin_unban_player", "admin_verify_match",
		"admin_delete_match", "admin_change_role", "grant_premium", "create_tournament", "admin_get_players"} {
		c, gated := Required(action)
		require.True(t, gated, action)
		assert.True(t, c.Allowed(domain.RoleAdmin), action)
		assert.True(t, c.Allowed(domain.RoleModerator), action)
		assert.False(t, c.Allowed(domain.RolePlayer), action)
	}
}

func TestRequired_ActorFieldNames(t *testing.T) {
	c, _ := Required("admin_get_players")
	assert.Equal(t, "nickname", c.ActorField)

	c, _ = Required("admin_ban_player")
	assert.Equal(t, "admin_nickname", c.ActorField)
}
