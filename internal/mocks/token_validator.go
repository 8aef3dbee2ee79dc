package mocks

import (
	"context"

	"github.com/phrazzld/pokepc/internal/service/auth"
)

// MockTokenValidator returns fixed claims or a fixed error. ValidateFn
// overrides both when set.
type MockTokenValidator struct {
	ValidateFn  func(ctx context.Context, token string) (*auth.Claims, error)
	Claims      *auth.Claims
	ValidateErr error
}

// Validate implements the admin API's token validator.
func (m *MockTokenValidator) Validate(ctx context.Context, token string) (*auth.Claims, error) {
	if m.ValidateFn != nil {
		return m.ValidateFn(ctx, token)
	}
	if m.ValidateErr != nil {
		return nil, m.ValidateErr
	}
	return m.Claims, nil
}
