package services

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials   = errors.New("invalid password")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

// AuthService guards the board with a single passphrase. With no passphrase
// configured the board is open.
type AuthService struct {
	passwordHash []byte
}

// NewAuthService hashes password once so it is never compared in plain text.
func NewAuthService(password string) (*AuthService, error) {
	if password == "" {
		return &AuthService{}, nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	return &AuthService{passwordHash: hashed}, nil
}

// Enabled reports whether a passphrase is required
func (s *AuthService) Enabled() bool {
	return len(s.passwordHash) > 0
}

// Login verifies the passphrase.
func (s *AuthService) Login(password string) error {
	if !s.Enabled() {
		return nil
	}

	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return ErrInvalidCredentials
	}

	return nil
}
