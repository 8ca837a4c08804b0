// Package subscription implements the client side of the graphql-ws
// subscription protocol: the connection_init/connection_ack handshake,
// per-subscription start/data/error/complete/stop lifecycle, keepalive
// filtering, and concurrent delivery of pushed frames to caller-supplied
// callbacks.
//
// One Session owns one transport connection. A single reader goroutine
// consumes all raw frames and fans them out by subscription identifier to
// per-identifier queues, so multiple subscriptions can run concurrently
// over the shared socket without racing on the receive call. Delivery
// loops are cancelled cooperatively: Unsubscribe and Close return only
// after the affected loops have fully exited, so no callback for an
// identifier fires after the call that stopped it returns.
package subscription
