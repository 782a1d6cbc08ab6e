package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/scorekeep/server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testActors(players map[string]domain.Role) ActorLookup {
	return func(ctx context.Context, nickname string) (*domain.Player, error) {
		role, ok := players[nickname]
		if !ok {
			return nil, nil
		}
		return &domain.Player{ID: 1, Nickname: nickname, Role: role}, nil
	}
}

func TestRouter_UnknownAction(t *testing.T) {
	r := NewRouter(testActors(nil), testLogger())

	resp := r.Dispatch(context.Background(), json.RawMessage(`{"action":"no_such_action"}`))

	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "unknown action", resp["message"])
}

func TestRouter_MissingAction(t *testing.T) {
	r := NewRouter(testActors(nil), testLogger())

	resp := r.Dispatch(context.Background(), json.RawMessage(`{"nickname":"alice"}`))

	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "action is required", resp["message"])
}

func TestRouter_DispatchesRegisteredHandler(t *testing.T) {
	r := NewRouter(testActors(nil), testLogger())
	r.Handle("ping", func(ctx context.Context, raw json.RawMessage) (Response, error) {
		return OK("pong"), nil
	})

	resp := r.Dispatch(context.Background(), json.RawMessage(`{"action":"ping"}`))

	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "pong", resp["message"])
}

func TestRouter_GatedActionRequiresActorField(t *testing.T) {
	r := NewRouter(testActors(map[string]domain.Role{"mod": domain.RoleModerator}), testLogger())
	r.Handle("admin_ban_player", func(ctx context.Context, raw json.RawMessage) (Response, error) {
		return OK("banned"), nil
	})

	resp := r.Dispatch(context.Background(), json.RawMessage(`{"action":"admin_ban_player","target_nickname":"bob"}`))

	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "admin_nickname is required", resp["message"])
}

func TestRouter_GatedActionUnknownActor(t *testing.T) {
	r := NewRouter(testActors(nil), testLogger())
	r.Handle("admin_ban_player", func(ctx context.Context, raw json.RawMessage) (Response, error) {
		return OK("banned"), nil
	})

	resp := r.Dispatch(context.Background(),
		json.RawMessage(`{"action":"admin_ban_player","admin_nickname":"ghost","target_nickname":"bob"}`))

	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "player ghost not found", resp["message"])
}

func TestRouter_GatedActionInsufficientRole(t *testing.T) {
	players := map[string]domain.Role{"pleb": domain.RolePlayer, "mod": domain.RoleModerator}
	r := NewRouter(testActors(players), testLogger())
	r.Handle("admin_reset_stats", func(ctx context.Context, raw json.RawMessage) (Response, error) {
		return OK("reset"), nil
	})

	for _, actor := range []string{"pleb", "mod"} {
		resp := r.Dispatch(context.Background(),
			json.RawMessage(`{"action":"admin_reset_stats","admin_nickname":"`+actor+`","target_nickname":"bob"}`))
		assert.Equal(t, false, resp["success"], actor)
		assert.Equal(t, "insufficient permissions", resp["message"], actor)
	}
}

func TestRouter_GatedActionPassesActorToHandler(t *testing.T) {
	r := NewRouter(testActors(map[string]domain.Role{"root": domain.RoleAdmin}), testLogger())
	r.Handle("admin_reset_stats", func(ctx context.Context, raw json.RawMessage) (Response, error) {
		actor := ActorFrom(ctx)
		require.NotNil(t, actor)
		return OK("reset by " + actor.Nickname), nil
	})

	resp := r.Dispatch(context.Background(),
		json.RawMessage(`{"action":"admin_reset_stats","admin_nickname":"root","target_nickname":"bob"}`))

	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "reset by root", resp["message"])
}

func TestRouter_DomainErrorMessageSurfaced(t *testing.T) {
	r := NewRouter(testActors(nil), testLogger())
	r.Handle("login", func(ctx context.Context, raw json.RawMessage) (Response, error) {
		return nil, domain.ErrUnauthorized("invalid password")
	})

	resp := r.Dispatch(context.Background(), json.RawMessage(`{"action":"login"}`))

	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "invalid password", resp["message"])
}

func TestRouter_InternalErrorHidden(t *testing.T) {
	r := NewRouter(testActors(nil), testLogger())
	r.Handle("get_stats", func(ctx context.Context, raw json.RawMessage) (Response, error) {
		return nil, domain.ErrInternal("query stats", errors.New("connection refused"))
	})

	resp := r.Dispatch(context.Background(), json.RawMessage(`{"action":"get_stats"}`))

	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "internal server error", resp["message"])
}
