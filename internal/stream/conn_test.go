package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wsEcho is a minimal websocket endpoint that feeds received frames into
// a channel.
func wsEcho(t *testing.T, frames chan<- string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			frames <- string(msg)
		}
	}))
}

func wsURL(s *httptest.Server) string {
	return "ws" + strings.TrimPrefix(s.URL, "http")
}

func TestConnectAndSend(t *testing.T) {
	frames := make(chan string, 1)
	srv := wsEcho(t, frames)
	defer srv.Close()

	c := NewConn(wsURL(srv), time.Millisecond, 10*time.Millisecond)
	assert.Equal(t, StateDisconnected, c.State())

	require.NoError(t, c.Connect())
	assert.Equal(t, StateConnected, c.State())
	defer c.Close()

	require.NoError(t, c.Send([]byte(`["tok",[[1,2]]]`)))

	select {
	case got := <-frames:
		assert.Equal(t, `["tok",[[1,2]]]`, got)
	case <-time.After(time.Second):
		t.Fatal("server never received the frame")
	}
}

func TestSendRequiresConnected(t *testing.T) {
	c := NewConn("ws://127.0.0.1:1", time.Millisecond, 10*time.Millisecond)
	err := c.Send([]byte("x"))
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestConnectFailureStaysDisconnected(t *testing.T) {
	// Nothing listens on this port.
	c := NewConn("ws://127.0.0.1:1", time.Millisecond, 10*time.Millisecond)
	err := c.Connect()
	assert.Error(t, err)
	assert.Equal(t, StateDisconnected, c.State())
}

func TestSendFailureTransitionsToDisconnected(t *testing.T) {
	frames := make(chan string, 1)
	srv := wsEcho(t, frames)

	c := NewConn(wsURL(srv), time.Millisecond, 10*time.Millisecond)
	require.NoError(t, c.Connect())

	// Kill the server, then force the write to fail.
	srv.CloseClientConnections()
	srv.Close()

	var lastErr error
	for i := 0; i < 10; i++ {
		if lastErr = c.Send([]byte("x")); lastErr != nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.Error(t, lastErr, "send against a dead server must eventually fail")
	assert.Equal(t, StateDisconnected, c.State())
}

func TestReconnectBackoffGrows(t *testing.T) {
	c := NewConn("ws://127.0.0.1:1", 5*time.Millisecond, 20*time.Millisecond)

	ctx := context.Background()
	assert.Error(t, c.Reconnect(ctx))
	assert.Equal(t, 10*time.Millisecond, c.nextDelay)
	assert.Error(t, c.Reconnect(ctx))
	assert.Equal(t, 20*time.Millisecond, c.nextDelay)
	assert.Error(t, c.Reconnect(ctx))
	assert.Equal(t, 20*time.Millisecond, c.nextDelay, "cooldown is capped")
}

func TestReconnectObservesContext(t *testing.T) {
	c := NewConn("ws://127.0.0.1:1", time.Hour, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Reconnect(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("reconnect ignored cancellation during cooldown")
	}
}

func TestReconnectResetsBackoffOnSuccess(t *testing.T) {
	c := NewConn("ws://127.0.0.1:1", time.Millisecond, 8*time.Millisecond)

	ctx := context.Background()
	assert.Error(t, c.Reconnect(ctx))
	assert.Error(t, c.Reconnect(ctx))
	require.Equal(t, 4*time.Millisecond, c.nextDelay)

	frames := make(chan string, 1)
	srv := wsEcho(t, frames)
	defer srv.Close()
	c.endpoint = wsURL(srv)

	require.NoError(t, c.Reconnect(ctx))
	defer c.Close()
	assert.Equal(t, StateConnected, c.State())
	assert.Equal(t, time.Millisecond, c.nextDelay)
}
