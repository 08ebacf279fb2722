package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"taskhub/internal/apperr"
	"taskhub/internal/model"
)

const tokenTTL = 24 * time.Hour

// UserResolver resolves a token subject against the user store.
type UserResolver interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// Verifier validates bearer credentials and produces the request Principal.
type Verifier struct {
	secret       []byte
	issuer       string
	elevatedRole string
	users        UserResolver
}

func NewVerifier(secret, issuer, elevatedRole string, users UserResolver) *Verifier {
	return &Verifier{
		secret:       []byte(secret),
		issuer:       issuer,
		elevatedRole: elevatedRole,
		users:        users,
	}
}

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Mint signs a token for the given user.
func (v *Verifier) Mint(u *model.User) (string, error) {
	now := time.Now()
	c := claims{
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    v.issuer,
			Subject:   u.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return token.SignedString(v.secret)
}

// Verify validates the credential's signature, expiry and issuer, then
// resolves the subject against the user store. Pure function of the input and
// the configured trust anchor.
func (v *Verifier) Verify(ctx context.Context, credential string) (model.Principal, error) {
	var c claims
	token, err := jwt.ParseWithClaims(credential, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return v.secret, nil
	}, jwt.WithIssuer(v.issuer))

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return model.Principal{}, apperr.Wrap(apperr.Unauthorized, "token expired", err)
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return model.Principal{}, apperr.Wrap(apperr.Unauthorized, "token not valid yet", err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return model.Principal{}, apperr.Wrap(apperr.Unauthorized, "invalid token signature", err)
		default:
			return model.Principal{}, apperr.Wrap(apperr.Unauthorized, "malformed token", err)
		}
	}

	if !token.Valid {
		return model.Principal{}, apperr.New(apperr.Unauthorized, "invalid token")
	}

	u, err := v.users.FindByEmail(ctx, c.Subject)
	if err != nil {
		if apperr.IsKind(err, apperr.NotFound) {
			return model.Principal{}, apperr.New(apperr.Unauthorized, "unknown token subject")
		}
		return model.Principal{}, err
	}

	return model.Principal{
		UserID:   u.ID,
		Email:    u.Email,
		Elevated: c.Role == v.elevatedRole,
	}, nil
}
