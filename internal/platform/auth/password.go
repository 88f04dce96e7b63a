package auth

import (
	"crypto/subtle"

	"github.com/alexedwards/argon2id"
)

// CredentialScheme tags how a stored credential matched. The legacy
// plain-text variant exists only to migrate historical records on login;
// retire it by deleting the variant and its branch in VerifyPassword.
type CredentialScheme int

const (
	SchemeArgon2id CredentialScheme = iota
	SchemeLegacyPlainText
)

type PasswordCheck struct {
	Matched bool
	Scheme  CredentialScheme
}

// VerifyPassword checks a candidate against the stored value. Argon2id is
// authoritative; if that fails, a constant-time byte comparison against the
// stored value catches legacy plain-text records. The caller must rehash and
// persist immediately on a legacy match. An empty stored value never matches.
func VerifyPassword(storedHash, candidate string) PasswordCheck {
	if storedHash == "" {
		return PasswordCheck{}
	}

	match, err := argon2id.ComparePasswordAndHash(candidate, storedHash)
	if err == nil && match {
		return PasswordCheck{Matched: true, Scheme: SchemeArgon2id}
	}

	if subtle.ConstantTimeCompare([]byte(storedHash), []byte(candidate)) == 1 {
		return PasswordCheck{Matched: true, Scheme: SchemeLegacyPlainText}
	}

	return PasswordCheck{}
}

func HashPassword(password string) (string, error) {
	return argon2id.CreateHash(password, argon2id.DefaultParams)
}
