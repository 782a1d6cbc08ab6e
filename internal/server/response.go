// Package server implements the TCP protocol surface: a newline-delimited
// JSON codec, an action router with declarative role gating, and the
// connection-per-goroutine accept loop.
package server

// Response is one protocol reply. Every response carries success and message;
// actions attach their payload under an action-specific key.
type Response map[string]any

// OK builds a success response.
func OK(message string) Response {
	return Response{"success": true, "message": message}
}

// Fail builds a failure response. The connection stays open.
func Fail(message string) Response {
	return Response{"success": false, "message": message}
}

// With attaches a payload key and returns the response for chaining.
func (r Response) With(key string, value any) Response {
	r[key] = value
	return r
}
