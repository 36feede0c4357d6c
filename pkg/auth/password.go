package auth

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor for stored hashes.
const PasswordCost = 10

// HashPassword returns a bcrypt hash of plain.
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), PasswordCost)
	return string(b), err
}

// CheckPassword compares a bcrypt hash against plain.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

var placeholderHash = sync.OnceValue(func() string {
	h, _ := HashPassword("no-such-account")
	return h
})

// CheckMissing compares plain against a placeholder hash of the same cost
// and always reports false. Login calls it when the username is unknown so
// a miss takes as long as a wrong password.
func CheckMissing(plain string) bool {
	CheckPassword(placeholderHash(), plain)
	return false
}
