// Package authn implements the password-verification primitive,
// wrapping bcrypt around a stored hash.
package authn

import "golang.org/x/crypto/bcrypt"

// Cost matches bcrypt.DefaultCost; called out explicitly so the engine's
// hashing cost is a documented decision rather than an implicit default.
const Cost = bcrypt.DefaultCost

// Hash produces a bcrypt hash suitable for storage in role_manager_users.
func Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), Cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether password matches hash. It never distinguishes
// its failure modes to the caller: a bad hash and a
// wrong password both return false.
func Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
