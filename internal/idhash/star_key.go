package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeStarKey computes a deterministic key for a star in an origin.
// Formula: SHA256(origin|identifier), first 16 hex characters.
// Used to name light-curve files in the local star store.
func ComputeStarKey(origin, identifier string) string {
	data := fmt.Sprintf("%s|%s", origin, identifier)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])[:16]
}
