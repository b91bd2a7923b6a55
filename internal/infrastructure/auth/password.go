package auth

import "golang.org/x/crypto/bcrypt"

// Password cost for bcrypt
const bcryptCost = 12

// HashPassword hashes a plaintext password with bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext password against a stored value. The
// stored value may be a bcrypt hash or, for development setups, the plain
// password itself.
func VerifyPassword(stored, password string) bool {
	if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)); err == nil {
		return true
	}
	// Not a valid bcrypt hash: fall back to constant comparison for dev configs.
	if !looksLikeBcrypt(stored) {
		return stored != "" && stored == password
	}
	return false
}

func looksLikeBcrypt(s string) bool {
	return len(s) > 4 && s[0] == '$' && (s[1] == '2')
}
