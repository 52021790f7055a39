// Package revocation holds the in-memory revoked-token registry and the key
// derivation shared by every revocation backend.
package revocation

import (
	"crypto/sha256"
	"encoding/hex"
)

// Key derives the storage key of a token, so backends never hold usable bearer strings.
func Key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
