package security

import (
	"crypto/sha256"
	"crypto/subtle"
)

// PINEqual compares a submitted PIN against the stored one in constant time.
// PINs are short and low-entropy, so a length-leaking compare would narrow the
// search space; hashing both sides first keeps the comparison fixed-length.
func PINEqual(submitted, stored string) bool {
	a := sha256.Sum256([]byte(submitted))
	b := sha256.Sum256([]byte(stored))
	return subtle.ConstantTimeCompare(a[:], b[:]) == 1
}
