// Package hashing provides content-addressed key derivation for the
// embedding cache and the skill-list fingerprint used to invalidate
// the lexical index.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns the SHA-256 hex digest of text.
// The digest is derived from the exact bytes of the input, so two
// different embedding texts for the same skill never share a key.
func Hash(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}
