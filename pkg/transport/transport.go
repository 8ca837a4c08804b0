package transport

import (
	"context"
	"errors"
)

// ErrClosed indicates an operation on a transport that has been closed.
var ErrClosed = errors.New("transport closed")

// Transport is a bidirectional message-oriented connection. One message
// per Send/Recv call; both block until the operation completes or the
// context is done. Close releases the connection; subsequent calls fail
// with ErrClosed.
type Transport interface {
	Send(ctx context.Context, data []byte) error
	Recv(ctx context.Context) ([]byte, error)
	Close() error
}
