package utils

import "golang.org/x/crypto/bcrypt"

// VerifyPassword safely compares bcrypt hash and plain password.
// Accounts are seeded with their hashes before a run, so the
// application only ever verifies.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
