package utils

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns a bcrypt hash of plain.  A cost outside bcrypt's
// range falls back to bcrypt.DefaultCost.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares bcrypt hash and plain password.  An empty
// hash never verifies.
func VerifyPassword(hash, plain string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// VerifyAdmin checks a login attempt against the configured admin name and
// password hash.  The name comparison is constant time; the password check
// runs even on a name mismatch so both failures take the same time.
func VerifyAdmin(user, wantUser, plain, hash string) bool {
	nameOK := subtle.ConstantTimeCompare([]byte(user), []byte(wantUser)) == 1
	passOK := VerifyPassword(hash, plain)
	return nameOK && passOK
}
