// Package client is the synchronous request/response side of the GraphQL
// client: it POSTs an operation document and variables as JSON, attaches
// an optional auth header, retries a fixed number of times on non-2xx
// statuses, and parses the JSON reply.
//
// The retry policy is best-effort, not a success guarantee: after the
// attempts are exhausted the last response is returned for the caller to
// inspect, whatever its status.
package client
