// Package id generates the short random identifiers that correlate
// subscription requests with their server responses.
//
// Identifiers are drawn from crypto/rand. At the default length of 6
// characters over a 62-symbol alphabet the collision probability between
// concurrently active subscriptions on one session is negligible
// (62^6 ≈ 5.7e10 values).
package id

import (
	"crypto/rand"
)

// DefaultLength is the identifier length used by New.
const DefaultLength = 6

// alphabet is the set of symbols identifiers are drawn from.
const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// New returns a fresh subscription identifier of the default length.
// Safe to call without external synchronization.
func New() string {
	return NewWithLength(DefaultLength)
}

// NewWithLength returns a fresh identifier of the given length.
func NewWithLength(length int) string {
	b := make([]byte, length)
	randBytes := make([]byte, length)
	_, _ = rand.Read(randBytes)
	for i := range b {
		b[i] = alphabet[int(randBytes[i])%len(alphabet)]
	}
	return string(b)
}
