package protocol

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		msg  *Message
	}{
		{
			name: "connection_init with headers",
			msg:  NewConnectionInit(map[string]string{"Authorization": "Bearer tok"}),
		},
		{
			name: "connection_ack",
			msg:  &Message{Type: MsgConnectionAck},
		},
		{
			name: "keepalive",
			msg:  &Message{Type: MsgKeepAlive},
		},
		{
			name: "stop",
			msg:  NewStop("Ab3xYz"),
		},
		{
			name: "data with payload",
			msg:  &Message{ID: "Ab3xYz", Type: MsgData, Payload: json.RawMessage(`{"data":{"user":{"id":"1"}}}`)},
		},
		{
			name: "error with payload",
			msg:  &Message{ID: "Ab3xYz", Type: MsgError, Payload: json.RawMessage(`{"message":"boom"}`)},
		},
		{
			name: "complete",
			msg:  &Message{ID: "Ab3xYz", Type: MsgComplete},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Encode(tt.msg)
			require.NoError(t, err)

			got, err := Decode(data)
			require.NoError(t, err)

			assert.Equal(t, tt.msg.ID, got.ID)
			assert.Equal(t, tt.msg.Type, got.Type)
			if tt.msg.Payload != nil {
				assert.JSONEq(t, string(tt.msg.Payload), string(got.Payload))
			}
		})
	}
}

func TestEncodeStartFrame(t *testing.T) {
	msg, err := NewStart("q1w2e3", &OperationPayload{
		Query:     `query($id: ID!) { user(id: $id) { name } }`,
		Variables: map[string]interface{}{"id": "42"},
		Headers:   map[string]string{"Authorization": "Bearer tok"},
	})
	require.NoError(t, err)
	assert.Equal(t, "q1w2e3", msg.ID)
	assert.Equal(t, MsgStart, msg.Type)

	data, err := Encode(msg)
	require.NoError(t, err)

	var wire map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &wire))
	assert.Equal(t, "start", wire["type"])
	payload := wire["payload"].(map[string]interface{})
	assert.Contains(t, payload["query"], "user(id: $id)")
	assert.Equal(t, map[string]interface{}{"id": "42"}, payload["variables"])
}

func TestDecodeRejectsMalformedFrames(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: `{{{`},
		{name: "missing type", data: `{"id":"abc"}`},
		{name: "unknown type", data: `{"type":"subscribe_v2"}`},
		{name: "empty object", data: `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			require.Error(t, err)

			var perr *ProtocolError
			assert.True(t, errors.As(err, &perr), "want *ProtocolError, got %T", err)
		})
	}
}

func TestMessagePredicates(t *testing.T) {
	ka := &Message{Type: MsgKeepAlive}
	assert.True(t, ka.IsKeepAlive())
	assert.False(t, ka.IsTerminal())

	data := &Message{ID: "x", Type: MsgData}
	assert.False(t, data.IsKeepAlive())
	assert.False(t, data.IsTerminal())

	assert.True(t, (&Message{ID: "x", Type: MsgError}).IsTerminal())
	assert.True(t, (&Message{ID: "x", Type: MsgComplete}).IsTerminal())
}
