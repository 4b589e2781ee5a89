package util

import (
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor for admin passwords.
const PasswordCost = bcrypt.DefaultCost

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPasswordHash reports whether password matches hash. A malformed hash
// is a mismatch.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// MaskUsername keeps the first two characters of a username for log output.
func MaskUsername(username string) string {
	runes := []rune(username)
	if len(runes) <= 2 {
		return "***"
	}
	return string(runes[:2]) + "***"
}
