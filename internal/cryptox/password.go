package cryptox

import "golang.org/x/crypto/bcrypt"

// HashPassword produces a salted one-way bcrypt hash of the raw password.
// The original password cannot be recovered from the result, only verified.
func HashPassword(raw string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether raw matches the stored bcrypt hash.
// The comparison inside bcrypt is constant-time.
func VerifyPassword(raw, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}
