package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// KeyGenerator creates namespaced cache keys from query text using SHA-256.
// Hashing keeps arbitrary user input safe to use as a backend key while
// preserving exact-match semantics.
type KeyGenerator struct {
	// Prefix is prepended to all generated keys.
	Prefix string
}

// NewKeyGenerator creates a new KeyGenerator with optional prefix.
func NewKeyGenerator(prefix string) *KeyGenerator {
	return &KeyGenerator{Prefix: prefix}
}

// FromQuery creates a cache key from raw query text.
// The key format is: [prefix:]sha256(query)
func (g *KeyGenerator) FromQuery(query string) string {
	hash := sha256.Sum256([]byte(query))
	hashHex := hex.EncodeToString(hash[:])

	if g.Prefix == "" {
		return hashHex
	}

	var key strings.Builder
	key.WriteString(g.Prefix)
	key.WriteString(":")
	key.WriteString(hashHex)
	return key.String()
}
