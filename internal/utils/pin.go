package utils

import "golang.org/x/crypto/bcrypt"

// HashPIN returns the bcrypt hash of the admin PIN using the given cost.
// The plain PIN only lives in the environment; everything else compares
// against the hash.
func HashPIN(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPIN safely compares a bcrypt hash and a submitted PIN.
func VerifyPIN(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
