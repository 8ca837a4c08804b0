package subscription

import (
	"log/slog"
	"time"

	"github.com/graphsock/graphsock/pkg/transport"
)

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used for session diagnostics and the default
// subscription callback.
func WithLogger(log *slog.Logger) Option {
	return func(s *Session) {
		s.log = log
	}
}

// WithReceiveTimeout bounds every control-path wait (handshake ack, query
// reply, stop reply). Zero waits indefinitely.
func WithReceiveTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.recvTimeout = d
	}
}

// WithDeliveryInterval inserts a fixed pause between callback invocations
// of one delivery loop, as a coarse backpressure valve. Zero (the
// default) paces nothing.
func WithDeliveryInterval(d time.Duration) Option {
	return func(s *Session) {
		s.deliveryInterval = d
	}
}

// WithDialOptions forwards options (headers, handshake timeout, HTTP
// client) to the websocket dial performed by Dial. Ignored by NewSession.
func WithDialOptions(opts ...transport.DialOption) Option {
	return func(s *Session) {
		s.dialOpts = opts
	}
}

// WithQueueSize sets the per-identifier frame queue capacity.
func WithQueueSize(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.queueSize = n
		}
	}
}
