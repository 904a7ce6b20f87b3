package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/editorialhq/editorial-api/internal/domain"
	"github.com/editorialhq/editorial-api/internal/service/auth"
	"github.com/editorialhq/editorial-api/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser(t *testing.T, role domain.Role) *domain.User {
	t.Helper()
	user, err := domain.NewUser("user@example.com", "Test User", role)
	require.NoError(t, err)
	user.HashedPassword = "$2a$10$notarealhash"
	return user
}

func TestAuthHandler_Login(t *testing.T) {
	t.Parallel()

	t.Run("valid credentials return a token pair", func(t *testing.T) {
		t.Parallel()

		user := testUser(t, domain.RoleAuthor)
		handler := NewAuthHandler(
			&mockUserStore{
				GetByEmailFn: func(ctx context.Context, email string) (*domain.User, error) {
					assert.Equal(t, user.Email, email)
					return user, nil
				},
			},
			&auth.MockJWTService{},
			&mockPasswordVerifier{accept: "correct-horse"},
		)

		rr := httptest.NewRecorder()
		handler.Login(rr, newRequest(t, http.MethodPost, "/api/auth/login",
			LoginRequest{Email: user.Email, Password: "correct-horse"}, nil, ""))

		require.Equal(t, http.StatusOK, rr.Code)
		var got AuthResponse
		decodeBody(t, rr, &got)
		assert.Equal(t, user.ID, got.UserID)
		assert.Equal(t, "mock-access-token", got.AccessToken)
		assert.Equal(t, "mock-refresh-token", got.RefreshToken)
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		t.Parallel()

		user := testUser(t, domain.RoleAuthor)
		handler := NewAuthHandler(
			&mockUserStore{
				GetByEmailFn: func(ctx context.Context, email string) (*domain.User, error) {
					if email == user.Email {
						return user, nil
					}
					return nil, store.ErrUserNotFound
				},
			},
			&auth.MockJWTService{},
			&mockPasswordVerifier{accept: "correct-horse"},
		)

		wrongPassword := httptest.NewRecorder()
		handler.Login(wrongPassword, newRequest(t, http.MethodPost, "/api/auth/login",
			LoginRequest{Email: user.Email, Password: "wrong"}, nil, ""))

		unknownEmail := httptest.NewRecorder()
		handler.Login(unknownEmail, newRequest(t, http.MethodPost, "/api/auth/login",
			LoginRequest{Email: "nobody@example.com", Password: "wrong"}, nil, ""))

		assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
		assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
		assert.JSONEq(t,
			wrongPassword.Body.String(),
			unknownEmail.Body.String(),
			"responses must not reveal whether the account exists")
	})

	t.Run("missing fields are rejected", func(t *testing.T) {
		t.Parallel()

		handler := NewAuthHandler(&mockUserStore{}, &auth.MockJWTService{}, &mockPasswordVerifier{})

		rr := httptest.NewRecorder()
		handler.Login(rr, newRequest(t, http.MethodPost, "/api/auth/login",
			LoginRequest{Email: "not-an-email"}, nil, ""))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestAuthHandler_Refresh(t *testing.T) {
	t.Parallel()

	t.Run("reloads the user so role changes take effect", func(t *testing.T) {
		t.Parallel()

		user := testUser(t, domain.RoleEditor) // promoted since the token was issued
		jwtService := &auth.MockJWTService{
			ValidateRefreshTokenFn: func(ctx context.Context, tokenString string) (*auth.Claims, error) {
				return &auth.Claims{
					UserID:    user.ID,
					Role:      domain.RoleAuthor,
					Email:     user.Email,
					TokenType: "refresh",
				}, nil
			},
			GenerateTokenFn: func(ctx context.Context, u *domain.User) (string, error) {
				assert.Equal(t, domain.RoleEditor, u.Role, "new token should carry the reloaded role")
				return "fresh-access-token", nil
			},
		}
		handler := NewAuthHandler(
			&mockUserStore{
				GetByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
					require.Equal(t, user.ID, id)
					return user, nil
				},
			},
			jwtService,
			&mockPasswordVerifier{},
		)

		rr := httptest.NewRecorder()
		handler.Refresh(rr, newRequest(t, http.MethodPost, "/api/auth/refresh",
			RefreshRequest{RefreshToken: "some-refresh-token"}, nil, ""))

		require.Equal(t, http.StatusOK, rr.Code)
		var got AuthResponse
		decodeBody(t, rr, &got)
		assert.Equal(t, "fresh-access-token", got.AccessToken)
	})

	t.Run("invalid refresh token is 401", func(t *testing.T) {
		t.Parallel()

		handler := NewAuthHandler(&mockUserStore{}, &auth.MockJWTService{}, &mockPasswordVerifier{})

		rr := httptest.NewRecorder()
		handler.Refresh(rr, newRequest(t, http.MethodPost, "/api/auth/refresh",
			RefreshRequest{RefreshToken: "garbage"}, nil, ""))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("deleted user is 401, not 404", func(t *testing.T) {
		t.Parallel()

		jwtService := &auth.MockJWTService{
			ValidateRefreshTokenFn: func(ctx context.Context, tokenString string) (*auth.Claims, error) {
				return &auth.Claims{UserID: uuid.New(), Role: domain.RoleAuthor, TokenType: "refresh"}, nil
			},
		}
		handler := NewAuthHandler(&mockUserStore{}, jwtService, &mockPasswordVerifier{})

		rr := httptest.NewRecorder()
		handler.Refresh(rr, newRequest(t, http.MethodPost, "/api/auth/refresh",
			RefreshRequest{RefreshToken: "orphaned"}, nil, ""))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
