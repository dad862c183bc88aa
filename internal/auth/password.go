package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword returns a bcrypt hash of raw. cost <= 0 uses bcrypt.DefaultCost.
func HashPassword(raw string, cost int) (string, error) {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(raw), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func CheckPassword(hash, raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}
