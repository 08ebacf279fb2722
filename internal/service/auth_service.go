package service

import (
	"context"

	"taskhub/internal/apperr"
	"taskhub/internal/auth"
	"taskhub/pkg/metrics"
)

type AuthService struct {
	users    UserStore
	verifier *auth.Verifier
}

func NewAuthService(users UserStore, verifier *auth.Verifier) *AuthService {
	return &AuthService{users: users, verifier: verifier}
}

// Login checks the credentials and returns a signed bearer token. Bad email
// and bad password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if apperr.IsKind(err, apperr.NotFound) {
			metrics.IncrementAuthFailure("unknown_email")
			return "", apperr.New(apperr.Unauthorized, "invalid email or password")
		}
		return "", err
	}

	if !auth.CheckPassword(password, u.PasswordHash) {
		metrics.IncrementAuthFailure("bad_password")
		return "", apperr.New(apperr.Unauthorized, "invalid email or password")
	}

	return s.verifier.Mint(u)
}
