package session

import (
	"crypto/sha1"
	"encoding/hex"
)

// Record defines a public type used by gatehouse APIs.
//
// Record instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Record struct {
	PrincipalID string
	SessionID   string
	IP          string
	CookieName  string
	Hash        string

	LastActivity int64
}

// BindingHash derives the session-binding hash from the low-level session ID,
// the client IP, and the cookie name. Pass an empty clientIP when the IP
// check is disabled. The same derivation is used for the outbound cookie
// value and for revalidating an inbound one, so a presented hash is only
// accepted when it could have been computed server-side for this exact
// client.
func BindingHash(sessionID, clientIP, cookieName string) string {
	sum := sha1.Sum([]byte(sessionID + clientIP + cookieName))
	return hex.EncodeToString(sum[:])
}
