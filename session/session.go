// Package session generates the 16-byte hex identifiers assigned to each
// connection at connection_made.
package session

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// Generator produces a fresh session identifier. The command server
// depends on this function type, not on Fresh directly, so a test can
// inject a deterministic producer.
type Generator func() string

// Fresh returns a 16-byte session identifier hex-encoded to 32
// characters, derived from a random UUID's first 16 raw bytes (a UUID is
// already exactly 16 bytes, so this is simply its hex form without
// dashes).
func Fresh() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}
