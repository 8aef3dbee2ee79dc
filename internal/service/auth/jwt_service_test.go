package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret  = "test-secret-that-is-long-enough-for-testing"
	wrongSecret = "wrong-secret-that-is-long-enough-for-testing"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNewTokenServiceRejectsWeakSecret(t *testing.T) {
	t.Parallel()
	_, err := NewTokenService("short")
	assert.ErrorIs(t, err, ErrWeakSecret)
}

func TestGenerateAndValidate(t *testing.T) {
	t.Parallel()
	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc, err := NewTokenServiceWithClock(testSecret, fixedClock(fixedTime))
	require.NoError(t, err)

	token, err := svc.Generate(context.Background(), "ops", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Validate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
	assert.Equal(t, AdminScope, claims.Scope)
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, fixedTime.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)
}

func TestValidateToken(t *testing.T) {
	t.Parallel()
	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	sign := func(t *testing.T, secret string, issuedAt time.Time, lifetime time.Duration) string {
		t.Helper()
		svc, err := NewTokenServiceWithClock(secret, fixedClock(issuedAt))
		require.NoError(t, err)
		token, err := svc.Generate(context.Background(), "ops", lifetime)
		require.NoError(t, err)
		return token
	}

	foreignScope := func(t *testing.T) string {
		t.Helper()
		claims := tokenClaims{
			Scope: "player",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		return token
	}

	tests := []struct {
		name    string
		token   func(t *testing.T) string
		wantErr error
	}{
		{
			name:  "valid token",
			token: func(t *testing.T) string { return sign(t, testSecret, fixedTime, time.Hour) },
		},
		{
			name:    "expired token",
			token:   func(t *testing.T) string { return sign(t, testSecret, fixedTime.Add(-3*time.Hour), time.Hour) },
			wantErr: ErrExpiredToken,
		},
		{
			name:  "expired within clock skew",
			token: func(t *testing.T) string { return sign(t, testSecret, fixedTime.Add(-61*time.Minute), time.Hour) },
		},
		{
			name:    "wrong secret",
			token:   func(t *testing.T) string { return sign(t, wrongSecret, fixedTime, time.Hour) },
			wantErr: ErrInvalidToken,
		},
		{
			name:    "malformed",
			token:   func(*testing.T) string { return "not.a.token" },
			wantErr: ErrInvalidToken,
		},
		{
			name:    "missing",
			token:   func(*testing.T) string { return "" },
			wantErr: ErrMissingToken,
		},
		{
			name:    "wrong scope",
			token:   foreignScope,
			wantErr: ErrWrongScope,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, err := NewTokenServiceWithClock(testSecret, fixedClock(fixedTime))
			require.NoError(t, err)

			claims, err := svc.Validate(context.Background(), tt.token(t))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, AdminScope, claims.Scope)
		})
	}
}
