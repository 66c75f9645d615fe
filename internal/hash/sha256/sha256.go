// Package sha256 adapts crypto/sha256 to the crawler's Hasher interface.
// The crawler hashes image URLs with it to derive stable object names, so
// re-crawling a product never stores the same image twice.
package sha256

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hasher implements crawler.Hasher using SHA-256.
type Hasher struct{}

// New returns a SHA-256 hasher.
func New() *Hasher {
	return &Hasher{}
}

// Hash returns the hex-encoded SHA-256 digest of data. The digest is what
// image sinks receive as the suggested object name.
func (h *Hasher) Hash(data []byte) (string, error) {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
