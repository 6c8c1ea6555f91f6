package telemetry

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
)

// Session IDs are opaque, client-generated tokens. The format rule bounds
// key cardinality and keeps them safe to embed in store keys.
var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,128}$`)

// ValidSessionID reports whether id satisfies the session token format.
func ValidSessionID(id string) bool {
	return sessionIDPattern.MatchString(id)
}

// hashIP derives the rate-limit key for a client address. Only a truncated
// one-way hash is ever stored; the raw IP never reaches the presence store.
func hashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:])[:20]
}
