package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"runtime/debug"
)

// serveConn runs the request/response loop for one client. Requests are
// newline-delimited JSON objects; the decoder tolerates fragmented and
// coalesced reads. A malformed payload gets one error response and ends the
// connection; other connections are unaffected.
func serveConn(ctx context.Context, c net.Conn, router *Router, logger *slog.Logger) {
	defer c.Close()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("connection panic", "panic", r, "stack", string(debug.Stack()))
		}
	}()

	dec := json.NewDecoder(bufio.NewReader(c))
	enc := json.NewEncoder(c)

	for {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				return
			}
			if ctx.Err() != nil {
				return
			}
			logger.Debug("malformed request", "error", err)
			_ = enc.Encode(Fail("malformed request"))
			return
		}

		resp := dispatch(ctx, router, raw, logger)
		if err := enc.Encode(resp); err != nil {
			logger.Debug("write response", "error", err)
			return
		}
	}
}

// dispatch isolates handler panics to the failing request.
func dispatch(ctx context.Context, router *Router, raw json.RawMessage, logger *slog.Logger) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("handler panic", "panic", r, "stack", string(debug.Stack()))
			resp = Fail("internal server error")
		}
	}()
	return router.Dispatch(ctx, raw)
}
