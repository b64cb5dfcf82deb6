package auth

import (
	"errors"

	"weather_gateway/internal/apperr"

	"golang.org/x/crypto/bcrypt"
)

var ErrPasswordTooLong = apperr.Validation("PASSWORD_TOO_LONG", "Password must be at most 72 bytes")

// PasswordHasher derives salted bcrypt hashes. bcrypt embeds a random salt in
// every hash, so equal passwords never produce equal hashes.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", err
	}

	return string(hashedPassword), nil
}

// Compare checks password against hashedPassword in constant time with respect
// to the stored hash. It returns bcrypt.ErrMismatchedHashAndPassword on mismatch.
func (h *PasswordHasher) Compare(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func (h *PasswordHasher) Cost() int {
	return h.cost
}
