package utils

import "golang.org/x/crypto/bcrypt"

// Password policy applied at registration and password change.  The
// upper bound matches bcrypt's input limit; beyond 72 bytes the extra
// characters would be silently ignored, so they are rejected instead.
const (
	MinPasswordLen = 8
	MaxPasswordLen = 72
)

// ValidPassword reports whether a new password satisfies the policy.
func ValidPassword(plain string) bool {
	return len(plain) >= MinPasswordLen && len(plain) <= MaxPasswordLen
}

// HashPassword returns the bcrypt hash of plain at the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
