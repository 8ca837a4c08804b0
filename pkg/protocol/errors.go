package protocol

// ProtocolError indicates a frame that could not be encoded or decoded,
// or that does not belong to the graphql-ws vocabulary.
type ProtocolError struct {
	// Reason describes what went wrong.
	Reason string
	// Err is the underlying cause, when there is one.
	Err error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return "protocol: " + e.Reason + ": " + e.Err.Error()
	}
	return "protocol: " + e.Reason
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}
