// Package auth issues and validates the bearer tokens that protect the admin
// HTTP surface. Tokens are HS256 JWTs signed with a shared secret.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/phrazzld/pokepc/internal/platform/logger"
)

// AdminScope is the only scope tokens are issued for.
const AdminScope = "admin"

// MinSecretLength is the minimum signing secret length.
const MinSecretLength = 32

// DefaultClockSkew is the leeway applied to time claims.
const DefaultClockSkew = 2 * time.Minute

// Claims are the validated contents of a token.
type Claims struct {
	Subject   string    `json:"sub,omitempty"`
	Scope     string    `json:"scope,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}

type tokenClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// TokenService signs and validates admin tokens.
type TokenService struct {
	signingKey []byte
	timeFunc   func() time.Time
	clockSkew  time.Duration
}

// NewTokenService creates a TokenService. The secret must be at least
// MinSecretLength bytes.
func NewTokenService(secret string) (*TokenService, error) {
	return NewTokenServiceWithClock(secret, time.Now)
}

// NewTokenServiceWithClock creates a TokenService with an injectable clock.
func NewTokenServiceWithClock(secret string, now func() time.Time) (*TokenService, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: need at least %d characters", ErrWeakSecret, MinSecretLength)
	}
	return &TokenService{
		signingKey: []byte(secret),
		timeFunc:   now,
		clockSkew:  DefaultClockSkew,
	}, nil
}

// Generate signs an admin token for subject valid for lifetime.
func (s *TokenService) Generate(ctx context.Context, subject string, lifetime time.Duration) (string, error) {
	now := s.timeFunc()
	claims := tokenClaims{
		Scope: AdminScope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		logger.FromContext(ctx).Error("failed to sign admin token",
			"error", err,
			"subject", subject)
		return "", fmt.Errorf("failed to sign admin token: %w", err)
	}
	return signed, nil
}

// Validate parses tokenString and returns its claims if it is a valid,
// unexpired admin token.
func (s *TokenService) Validate(ctx context.Context, tokenString string) (*Claims, error) {
	log := logger.FromContext(ctx)
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	now := s.timeFunc()
	token, err := jwt.ParseWithClaims(
		tokenString,
		&tokenClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(s.clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			log.Debug("admin token expired", "error", err)
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			log.Debug("admin token not yet valid", "error", err)
			return nil, ErrTokenNotYetValid
		default:
			log.Debug("admin token rejected", "error", err, "error_type", fmt.Sprintf("%T", err))
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Scope != AdminScope {
		log.Debug("admin token has wrong scope", "scope", claims.Scope)
		return nil, ErrWrongScope
	}

	return &Claims{
		Subject:   claims.Subject,
		Scope:     claims.Scope,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
		ID:        claims.ID,
	}, nil
}
