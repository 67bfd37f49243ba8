package auth

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Verifier is the injected credential-verification capability. The server
// never sees raw credentials beyond handing them here, so a deployment can
// swap in a directory-backed implementation without touching the handlers.
type Verifier interface {
	// Verify checks an admin username/password pair.
	Verify(username, password string) bool
	// VerifyPIN checks the vault-unlock PIN.
	VerifyPIN(pin string) bool
}

// StaticVerifier checks against a single configured admin account and PIN.
// The password is a bcrypt hash when it looks like one, otherwise a plain
// string compared in constant time (the out-of-the-box default).
type StaticVerifier struct {
	Username string
	Password string // bcrypt hash or plaintext
	PIN      string
}

func (v *StaticVerifier) Verify(username, password string) bool {
	if subtle.ConstantTimeCompare([]byte(username), []byte(v.Username)) != 1 {
		return false
	}
	if isBcryptHash(v.Password) {
		return bcrypt.CompareHashAndPassword([]byte(v.Password), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(v.Password)) == 1
}

func (v *StaticVerifier) VerifyPIN(pin string) bool {
	return subtle.ConstantTimeCompare([]byte(pin), []byte(v.PIN)) == 1
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
