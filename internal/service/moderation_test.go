package service

import (
	"context"
	"testing"

	"github.com/scorekeep/server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeRole_ModeratorCannotGrantAdmin(t *testing.T) {
	svc := NewModerationService(nil, nil, nil, nil, nil, nil)
	moderator := &domain.Player{ID: 7, Nickname: "mod", Role: domain.RoleModerator}

	err := svc.ChangeRole(context.Background(), moderator, "bob", domain.RoleAdmin)

	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "FORBIDDEN", appErr.Code)
}

func TestChangeRole_PlayerCannotGrantAdmin(t *testing.T) {
	svc := NewModerationService(nil, nil, nil, nil, nil, nil)
	player := &domain.Player{ID: 8, Nickname: "pleb", Role: domain.RolePlayer}

	err := svc.ChangeRole(context.Background(), player, "bob", domain.RoleAdmin)

	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "FORBIDDEN", appErr.Code)
}

func TestChangeRole_UnknownRoleRejected(t *testing.T) {
	svc := NewModerationService(nil, nil, nil, nil, nil, nil)
	admin := &domain.Player{ID: 1, Nickname: "root", Role: domain.RoleAdmin}

	err := svc.ChangeRole(context.Background(), admin, "bob", domain.Role("superuser"))

	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}
