package password

import (
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
	"io"
	"strings"
)

// SaltLength is the length, in hex characters, of a generated salt.
const SaltLength = 23

// Verifier checks submissions against stored "digest:salt" credentials.
//
// Verifier instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Verifier struct{}

// NewVerifier describes the newverifier operation and its observable behavior.
//
// NewVerifier does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewVerifier() *Verifier {
	return &Verifier{}
}

// Verify checks submitted against the stored credential. When the stored
// credential is in the unsalted legacy format and matches, migrated is the
// salted replacement the caller must persist; otherwise migrated is empty.
// The comparison is constant time regardless of where a mismatch occurs.
func (v *Verifier) Verify(stored, submitted string) (accepted bool, migrated string, err error) {
	if stored == "" || submitted == "" {
		return false, "", nil
	}

	digest, salt, _ := strings.Cut(stored, ":")

	if salt == "" {
		if !constantTimeEqual(digest, sha1Hex(submitted)) {
			return false, "", nil
		}

		newSalt, err := newSalt()
		if err != nil {
			return false, "", err
		}
		return true, sha1Hex(newSalt+submitted) + ":" + newSalt, nil
	}

	return constantTimeEqual(digest, sha1Hex(salt+submitted)), "", nil
}

// Generate produces a salted credential for the given plaintext, in the
// stored format. Intended for provisioning and tests; login-path migration
// happens inside [Verifier.Verify].
func (v *Verifier) Generate(plaintext string) (string, error) {
	salt, err := newSalt()
	if err != nil {
		return "", err
	}
	return sha1Hex(salt+plaintext) + ":" + salt, nil
}

func sha1Hex(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func constantTimeEqual(a, b string) bool {
	// ConstantTimeCompare short-circuits on length, which only reveals the
	// digest length, a public constant.
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func newSalt() (string, error) {
	raw := make([]byte, (SaltLength+1)/2)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw)[:SaltLength], nil
}
