package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/brightshift/clockin-system/internal/core/domain"
)

// AuthService exchanges the shared manager passcode for a bearer token.
type AuthService struct {
	passcodeHash []byte
	jwtSecret    string
	tokenTTL     time.Duration
}

// NewAuthService hashes passcode once at startup. An empty passcode disables
// login entirely.
func NewAuthService(passcode, jwtSecret string, tokenTTL time.Duration) (*AuthService, error) {
	if tokenTTL <= 0 {
		tokenTTL = 12 * time.Hour
	}
	s := &AuthService{jwtSecret: jwtSecret, tokenTTL: tokenTTL}
	if passcode == "" {
		return s, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash passcode: %w", err)
	}
	s.passcodeHash = hash
	return s, nil
}

func (s *AuthService) Login(_ context.Context, passcode string) (string, error) {
	passcode = strings.TrimSpace(passcode)
	if passcode == "" {
		return "", fmt.Errorf("%w: passcode is required", domain.ErrInvalidInput)
	}
	if s.passcodeHash == nil {
		return "", domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(s.passcodeHash, []byte(passcode)) != nil {
		return "", domain.ErrInvalidCredentials
	}
	return s.generateToken()
}

func (s *AuthService) generateToken() (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  domain.RoleManager,
		"role": domain.RoleManager,
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
