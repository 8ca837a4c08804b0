package transport

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"

	"github.com/graphsock/graphsock/pkg/protocol"
)

// DialOption configures a websocket transport before dialing.
type DialOption func(*dialConfig)

type dialConfig struct {
	header           http.Header
	httpClient       *http.Client
	handshakeTimeout time.Duration
}

// WithHTTPHeader sets extra HTTP headers sent with the websocket
// handshake request.
func WithHTTPHeader(header http.Header) DialOption {
	return func(c *dialConfig) {
		c.header = header
	}
}

// WithHTTPClient sets the HTTP client used for the handshake.
func WithHTTPClient(client *http.Client) DialOption {
	return func(c *dialConfig) {
		c.httpClient = client
	}
}

// WithHandshakeTimeout bounds the dial. Zero means no timeout beyond the
// caller's context.
func WithHandshakeTimeout(d time.Duration) DialOption {
	return func(c *dialConfig) {
		c.handshakeTimeout = d
	}
}

// WebSocket is a Transport over a single websocket connection negotiated
// with the graphql-ws subprotocol.
type WebSocket struct {
	conn   *websocket.Conn
	url    string
	closed atomic.Bool

	// coder/websocket allows one concurrent writer; serialize sends.
	writeMu sync.Mutex
}

// Dial connects to the given ws:// or wss:// URL. Connection failure is
// fatal and surfaces immediately.
func Dial(ctx context.Context, url string, opts ...DialOption) (*WebSocket, error) {
	cfg := dialConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.handshakeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.handshakeTimeout)
		defer cancel()
	}

	conn, resp, err := websocket.Dial(ctx, url, &websocket.DialOptions{
		HTTPClient:   cfg.httpClient,
		HTTPHeader:   cfg.header,
		Subprotocols: []string{protocol.Subprotocol},
	})
	if resp != nil && resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	// No read limit: data frames carry arbitrarily large query results.
	conn.SetReadLimit(-1)

	return &WebSocket{conn: conn, url: url}, nil
}

// Send writes one text message.
func (ws *WebSocket) Send(ctx context.Context, data []byte) error {
	if ws.closed.Load() {
		return ErrClosed
	}

	ws.writeMu.Lock()
	defer ws.writeMu.Unlock()

	if err := ws.conn.Write(ctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	return nil
}

// Recv blocks until one message arrives and returns its bytes. Binary
// messages are passed through unchanged; the protocol layer decides
// whether the content parses.
func (ws *WebSocket) Recv(ctx context.Context) ([]byte, error) {
	if ws.closed.Load() {
		return nil, ErrClosed
	}

	_, data, err := ws.conn.Read(ctx)
	if err != nil {
		if ws.closed.Load() {
			return nil, ErrClosed
		}
		return nil, fmt.Errorf("recv: %w", err)
	}
	return data, nil
}

// Close closes the websocket with a normal closure status. Safe to call
// more than once.
func (ws *WebSocket) Close() error {
	if !ws.closed.CompareAndSwap(false, true) {
		return nil
	}
	return ws.conn.Close(websocket.StatusNormalClosure, "client closed")
}

// URL returns the endpoint this transport dialed.
func (ws *WebSocket) URL() string {
	return ws.url
}
