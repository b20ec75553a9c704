// Package password guarda senhas de funcionários com bcrypt e aceita, uma
// única vez, valores em texto puro herdados da importação antiga.
package password

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const MinLength = 4

func Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func IsHashed(stored string) bool {
	return strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") || strings.HasPrefix(stored, "$2y$")
}

// Verify compara a senha informada. needsRehash indica valor legado em texto puro.
func Verify(stored, plain string) (ok bool, needsRehash bool) {
	if stored == "" {
		return false, false
	}
	if IsHashed(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil, false
	}
	return stored == plain, stored == plain
}
