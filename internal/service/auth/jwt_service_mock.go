package auth

import (
	"context"

	"github.com/editorialhq/editorial-api/internal/domain"
)

// MockJWTService is a configurable JWTService test double. Each method
// delegates to the corresponding Fn field when set and falls back to a
// harmless default otherwise.
type MockJWTService struct {
	GenerateTokenFn        func(ctx context.Context, user *domain.User) (string, error)
	ValidateTokenFn        func(ctx context.Context, tokenString string) (*Claims, error)
	GenerateRefreshTokenFn func(ctx context.Context, user *domain.User) (string, error)
	ValidateRefreshTokenFn func(ctx context.Context, tokenString string) (*Claims, error)
}

// Ensure MockJWTService implements the JWTService interface
var _ JWTService = (*MockJWTService)(nil)

// GenerateToken implements JWTService.GenerateToken
func (m *MockJWTService) GenerateToken(ctx context.Context, user *domain.User) (string, error) {
	if m.GenerateTokenFn != nil {
		return m.GenerateTokenFn(ctx, user)
	}
	return "mock-access-token", nil
}

// ValidateToken implements JWTService.ValidateToken
func (m *MockJWTService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, tokenString)
	}
	return nil, ErrInvalidToken
}

// GenerateRefreshToken implements JWTService.GenerateRefreshToken
func (m *MockJWTService) GenerateRefreshToken(ctx context.Context, user *domain.User) (string, error) {
	if m.GenerateRefreshTokenFn != nil {
		return m.GenerateRefreshTokenFn(ctx, user)
	}
	return "mock-refresh-token", nil
}

// ValidateRefreshToken implements JWTService.ValidateRefreshToken
func (m *MockJWTService) ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error) {
	if m.ValidateRefreshTokenFn != nil {
		return m.ValidateRefreshTokenFn(ctx, tokenString)
	}
	return nil, ErrInvalidRefreshToken
}
