package security

import (
	"github.com/matthewhartstonge/argon2"
)

// HashPassword derives an argon2id hash from a plaintext password. The hash
// embeds its own salt and parameters, so the output differs on every call.
func HashPassword(password string) (string, error) {
	argon := argon2.DefaultConfig()

	encoded, err := argon.HashEncoded([]byte(password))
	if err != nil {
		return "", err
	}

	return string(encoded), nil
}

// VerifyPassword checks a plaintext candidate against a stored encoded hash.
// A malformed or truncated hash counts as a failed verification rather than
// an error, so a corrupted record can never authenticate anyone.
func VerifyPassword(password, encodedHash string) (bool, error) {
	ok, err := argon2.VerifyEncoded([]byte(password), []byte(encodedHash))
	if err != nil {
		return false, nil
	}

	return ok, nil
}
