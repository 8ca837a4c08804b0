package protocol

import (
	"encoding/json"
	"fmt"
)

// knownTypes is the set of frame types this client understands.
var knownTypes = map[string]bool{
	MsgConnectionInit:      true,
	MsgConnectionTerminate: true,
	MsgStart:               true,
	MsgStop:                true,
	MsgConnectionAck:       true,
	MsgConnectionError:     true,
	MsgData:                true,
	MsgError:               true,
	MsgComplete:            true,
	MsgKeepAlive:           true,
}

// Encode serializes a frame to its wire representation.
func Encode(m *Message) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, &ProtocolError{Reason: "encode frame", Err: err}
	}
	return data, nil
}

// Decode parses a wire frame. It fails with *ProtocolError when the bytes
// are not well-formed JSON or the type field is missing or unrecognized.
func Decode(data []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &ProtocolError{Reason: "malformed frame", Err: err}
	}
	if m.Type == "" {
		return nil, &ProtocolError{Reason: "frame has no type"}
	}
	if !knownTypes[m.Type] {
		return nil, &ProtocolError{Reason: fmt.Sprintf("unrecognized frame type %q", m.Type)}
	}
	return &m, nil
}
