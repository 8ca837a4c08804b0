// Package transport owns the persistent bidirectional connection used by
// the subscription session. It exposes whole-message send/receive over an
// abstract Transport interface and ships a websocket implementation that
// negotiates the graphql-ws subprotocol.
//
// The transport delivers complete messages per receive call; no partial
// frame buffering happens above it.
package transport
