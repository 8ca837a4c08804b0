package protocol

import (
	"encoding/json"
)

// Subprotocol is the websocket subprotocol token negotiated during
// connection setup.
const Subprotocol = "graphql-ws"

// Frame types for the graphql-ws protocol.
const (
	// Client -> server
	MsgConnectionInit      = "connection_init"
	MsgConnectionTerminate = "connection_terminate"
	MsgStart               = "start"
	MsgStop                = "stop"

	// Server -> client
	MsgConnectionAck   = "connection_ack"
	MsgConnectionError = "connection_error"
	MsgData            = "data"
	MsgError           = "error"
	MsgComplete        = "complete"
	MsgKeepAlive       = "ka"
)

// Message is one discrete protocol frame.
type Message struct {
	// ID correlates the frame to a subscription. Empty for
	// connection-level frames.
	ID string `json:"id,omitempty"`

	// Type is one of the Msg* constants.
	Type string `json:"type"`

	// Payload is the frame body, left opaque until a consumer decodes it.
	Payload json.RawMessage `json:"payload,omitempty"`
}

// IsKeepAlive reports whether the frame is a keepalive. Keepalives are
// filtered before delivery and never reach application callbacks.
func (m *Message) IsKeepAlive() bool {
	return m.Type == MsgKeepAlive
}

// IsTerminal reports whether the frame ends its subscription. The server
// sends error or complete exactly once per subscription; the delivery
// loop exits when it sees either.
func (m *Message) IsTerminal() bool {
	return m.Type == MsgError || m.Type == MsgComplete
}

// OperationPayload is the body of a start frame: the operation document,
// its variables, and any per-operation headers. Opaque to this package
// beyond serialization.
type OperationPayload struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
	OperationName string                 `json:"operationName,omitempty"`
	Headers       map[string]string      `json:"headers,omitempty"`
}

// initPayload wraps the optional headers carried by connection_init.
type initPayload struct {
	Headers map[string]string `json:"headers,omitempty"`
}

// NewConnectionInit builds a connection_init frame carrying the optional
// headers.
func NewConnectionInit(headers map[string]string) *Message {
	payload, _ := json.Marshal(initPayload{Headers: headers})
	return &Message{Type: MsgConnectionInit, Payload: payload}
}

// NewStart builds a start frame for the given subscription identifier.
func NewStart(id string, payload *OperationPayload) (*Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &ProtocolError{Reason: "encode start payload", Err: err}
	}
	return &Message{ID: id, Type: MsgStart, Payload: body}, nil
}

// NewStop builds a stop frame for the given subscription identifier.
func NewStop(id string) *Message {
	return &Message{ID: id, Type: MsgStop}
}
