// Package protocol defines the wire frames exchanged over a GraphQL
// subscription websocket following the graphql-ws
// (subscriptions-transport-ws) convention.
//
// A frame is a small JSON object {"id": ..., "type": ..., "payload": ...}.
// The id correlates start/stop/data/error/complete frames to one
// subscription; connection-level frames (connection_init, connection_ack,
// ka) carry no id. The package provides the Message type, constructors for
// the client-sent frames, and Encode/Decode for the wire representation.
//
// Protocol reference:
// https://github.com/apollographql/subscriptions-transport-ws/blob/master/PROTOCOL.md
package protocol
