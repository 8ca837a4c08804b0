package subscription

import "errors"

// Common errors for the subscription package.
var (
	// ErrSessionClosed indicates an operation on a closed session.
	ErrSessionClosed = errors.New("session closed")
	// ErrReceiveTimeout indicates no frame arrived within the configured
	// receive timeout.
	ErrReceiveTimeout = errors.New("receive timeout")
	// ErrConnectionLost indicates the reader stopped because the
	// underlying transport failed.
	ErrConnectionLost = errors.New("connection lost")
)
