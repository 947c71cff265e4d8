package services

import (
	"errors"
	"fmt"
	"time"

	"quicknotes/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrMissingKey   = errors.New("token verifier has no signing key")
)

// TokenClaims mirrors the access token claims issued by the auth provider.
type TokenClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type TokenVerifier struct {
	secret []byte
	issuer string
	leeway time.Duration
	now    func() time.Time
}

type VerifierOption func(*TokenVerifier)

func WithIssuer(issuer string) VerifierOption {
	return func(v *TokenVerifier) { v.issuer = issuer }
}

func WithLeeway(d time.Duration) VerifierOption {
	return func(v *TokenVerifier) { v.leeway = d }
}

func WithClock(now func() time.Time) VerifierOption {
	return func(v *TokenVerifier) { v.now = now }
}

func NewTokenVerifier(secret string, opts ...VerifierOption) (*TokenVerifier, error) {
	if secret == "" {
		return nil, ErrMissingKey
	}
	v := &TokenVerifier{secret: []byte(secret), now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Verify checks signature, expiry and issuer and converts the claims into a
// session. Only HS256 tokens are accepted.
func (v *TokenVerifier) Verify(tokenString string) (*model.Session, error) {
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(v.issuer))
	}

	claims := &TokenClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, parserOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	session := &model.Session{
		UserID:    claims.Subject,
		Email:     claims.Email,
		Token:     tokenString,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time
	}
	return session, nil
}

// IssueToken mints a token the verifier accepts. Used by tests and local runs.
func (v *TokenVerifier) IssueToken(userID, email string, ttl time.Duration) (string, error) {
	now := v.now()
	claims := TokenClaims{
		Email: email,
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
