package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// Short returns the first 12 hex characters, enough to tell fits apart in logs.
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// ComputeLayoutHash fingerprints an encoded column layout. Two fitted states
// with the same hash produce interchangeable matrices.
func ComputeLayoutHash(featureNames []string) Hash {
	var data strings.Builder
	for _, name := range featureNames {
		data.WriteString(name)
		data.WriteByte(0)
	}
	return NewHash([]byte(data.String()))
}
