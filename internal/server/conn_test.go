package server

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pingRouter() *Router {
	r := NewRouter(testActors(nil), testLogger())
	r.Handle("ping", func(ctx context.Context, raw json.RawMessage) (Response, error) {
		return OK("pong"), nil
	})
	r.Handle("boom", func(ctx context.Context, raw json.RawMessage) (Response, error) {
		panic("handler exploded")
	})
	return r
}

func startConn(t *testing.T) (net.Conn, <-chan struct{}) {
	t.Helper()
	client, srv := net.Pipe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		serveConn(context.Background(), srv, pingRouter(), testLogger())
	}()
	t.Cleanup(func() { client.Close() })
	return client, done
}

func readResponse(t *testing.T, dec *json.Decoder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, dec.Decode(&resp))
	return resp
}

func TestServeConn_PingPong(t *testing.T) {
	client, _ := startConn(t)
	dec := json.NewDecoder(client)

	_, err := client.Write([]byte(`{"action":"ping"}` + "\n"))
	require.NoError(t, err)

	resp := readResponse(t, dec)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "pong", resp["message"])
}

func TestServeConn_CoalescedRequests(t *testing.T) {
	client, _ := startConn(t)
	dec := json.NewDecoder(client)

	// Two requests in a single write; the decoder must split them.
	go func() {
		client.Write([]byte(`{"action":"ping"}` + "\n" + `{"action":"ping"}` + "\n"))
	}()

	for i := 0; i < 2; i++ {
		resp := readResponse(t, dec)
		assert.Equal(t, true, resp["success"])
	}
}

func TestServeConn_MalformedRequestClosesConnection(t *testing.T) {
	client, done := startConn(t)
	dec := json.NewDecoder(client)

	go func() {
		client.Write([]byte("{not json at all\n"))
	}()

	resp := readResponse(t, dec)
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "malformed request", resp["message"])

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("connection was not closed after malformed request")
	}
}

func TestServeConn_HandlerPanicIsolated(t *testing.T) {
	client, _ := startConn(t)
	dec := json.NewDecoder(client)

	_, err := client.Write([]byte(`{"action":"boom"}` + "\n"))
	require.NoError(t, err)

	resp := readResponse(t, dec)
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "internal server error", resp["message"])

	// The connection survives a handler panic.
	_, err = client.Write([]byte(`{"action":"ping"}` + "\n"))
	require.NoError(t, err)
	resp = readResponse(t, dec)
	assert.Equal(t, true, resp["success"])
}
