package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/scorekeep/server/internal/auth"
	"github.com/scorekeep/server/internal/domain"
)

// Handler processes one decoded request envelope.
type Handler func(ctx context.Context, raw json.RawMessage) (Response, error)

// ActorLookup resolves the acting player for role-gated actions. It returns
// nil when the nickname is unknown.
type ActorLookup func(ctx context.Context, nickname string) (*domain.Player, error)

type actorKey struct{}

// ActorFrom returns the authorized actor stashed by the router, or nil for
// ungated actions.
func ActorFrom(ctx context.Context) *domain.Player {
	actor, _ := ctx.Value(actorKey{}).(*domain.Player)
	return actor
}

// Router dispatches request envelopes by action name. Role-gated actions are
// checked against the capability matrix before their handler runs.
type Router struct {
	handlers map[string]Handler
	actors   ActorLookup
	logger   *slog.Logger
}

// NewRouter creates an empty router.
func NewRouter(actors ActorLookup, logger *slog.Logger) *Router {
	return &Router{handlers: make(map[string]Handler), actors: actors, logger: logger}
}

// Handle registers a handler for an action name.
func (r *Router) Handle(action string, h Handler) {
	r.handlers[action] = h
}

// Dispatch decodes the envelope, authorizes and runs the handler, and maps
// errors to protocol failures. Unknown actions fail without closing the
// connection.
func (r *Router) Dispatch(ctx context.Context, raw json.RawMessage) Response {
	var env struct {
		Action string `json:"action"`
	}
	if err := json.Unmarshal(raw, &env); err != nil || env.Action == "" {
		return Fail("action is required")
	}

	handler, ok := r.handlers[env.Action]
	if !ok {
		return Fail("unknown action")
	}

	if capability, gated := auth.Required(env.Action); gated {
		actor, resp := r.authorize(ctx, capability, raw)
		if resp != nil {
			return resp
		}
		ctx = context.WithValue(ctx, actorKey{}, actor)
	}

	resp, err := handler(ctx, raw)
	if err != nil {
		return r.failure(env.Action, err)
	}
	return resp
}

// authorize extracts the actor field named by the capability, resolves the
// player and checks the role. A non-nil Response short-circuits dispatch.
func (r *Router) authorize(ctx context.Context, c auth.Capability, raw json.RawMessage) (*domain.Player, Response) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, Fail("malformed request")
	}
	nickname, _ := fields[c.ActorField].(string)
	if nickname == "" {
		return nil, Fail(c.ActorField + " is required")
	}

	actor, err := r.actors(ctx, nickname)
	if err != nil {
		return nil, r.failure("authorize", err)
	}
	if actor == nil {
		return nil, Fail("player " + nickname + " not found")
	}
	if !c.Allowed(actor.Role) {
		return nil, Fail("insufficient permissions")
	}
	return actor, nil
}

// failure maps domain errors to client messages. Internal failures are logged
// with their cause and reported generically.
func (r *Router) failure(action string, err error) Response {
	var appErr *domain.AppError
	if errors.As(err, &appErr) && appErr.Code != "INTERNAL_ERROR" {
		return Fail(appErr.Message)
	}
	r.logger.Error("action failed", "action", action, "error", err)
	return Fail("internal server error")
}
