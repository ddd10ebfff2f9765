package pkg

import "golang.org/x/crypto/bcrypt"

const passwordHashCost = 12

// HashPassword bcrypt-hashes a secret, e.g. the admin token kept in the service environment.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	return BytesToString(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
