package transport

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

// echoServer upgrades with the graphql-ws subprotocol and echoes every
// text message back to the client.
func echoServer(t *testing.T) (*httptest.Server, chan string) {
	t.Helper()

	negotiated := make(chan string, 1)
	upgrader := websocket.Upgrader{
		Subprotocols: []string{"graphql-ws"},
	}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		negotiated <- conn.Subprotocol()
		defer conn.Close()

		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(mt, data); err != nil {
				return
			}
		}
	}))
	t.Cleanup(ts.Close)
	return ts, negotiated
}

func wsURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http")
}

func TestDialNegotiatesSubprotocol(t *testing.T) {
	ts, negotiated := echoServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ws, err := Dial(ctx, wsURL(ts))
	require.NoError(t, err)
	defer ws.Close()

	select {
	case proto := <-negotiated:
		assert.Equal(t, "graphql-ws", proto)
	case <-ctx.Done():
		t.Fatal("server never negotiated")
	}
}

func TestSendRecvRoundTrip(t *testing.T) {
	ts, _ := echoServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ws, err := Dial(ctx, wsURL(ts))
	require.NoError(t, err)
	defer ws.Close()

	msg := []byte(`{"type":"connection_init","payload":{}}`)
	require.NoError(t, ws.Send(ctx, msg))

	got, err := ws.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}

func TestDialFailureSurfacesImmediately(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := Dial(ctx, "ws://127.0.0.1:1") // nothing listening
	require.Error(t, err)
}

func TestOperationsAfterClose(t *testing.T) {
	ts, _ := echoServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ws, err := Dial(ctx, wsURL(ts))
	require.NoError(t, err)

	require.NoError(t, ws.Close())
	require.NoError(t, ws.Close(), "second close is a no-op")

	assert.ErrorIs(t, ws.Send(ctx, []byte("x")), ErrClosed)
	_, err = ws.Recv(ctx)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestDialSendsExtraHeaders(t *testing.T) {
	headerSeen := make(chan string, 1)
	upgrader := websocket.Upgrader{Subprotocols: []string{"graphql-ws"}}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headerSeen <- r.Header.Get("Authorization")
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.Close()
	}))
	t.Cleanup(ts.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	header := http.Header{}
	header.Set("Authorization", "Bearer tok")

	ws, err := Dial(ctx, wsURL(ts), WithHTTPHeader(header))
	require.NoError(t, err)
	defer ws.Close()

	assert.Equal(t, "Bearer tok", <-headerSeen)
}
