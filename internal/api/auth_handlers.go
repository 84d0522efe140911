package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"

	apperrors "github.com/binderapp/binder-server/internal/errors"

	"github.com/binderapp/binder-server/internal/domain"
	"github.com/binderapp/binder-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "register",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/register",
		Summary:     "Register a new account",
		Tags:        []string{"Auth"},
	}, s.handleRegister)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/login",
		Summary:     "Log in with email and password",
		Tags:        []string{"Auth"},
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get the authenticated user",
		Tags:        []string{"Auth"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCurrentUser)
}

// === DTOs ===

// RegisterInput contains the registration request body.
type RegisterInput struct {
	Body struct {
		Email       string `json:"email" doc:"Account email, used for login"`
		Password    string `json:"password" doc:"Password, 8-128 characters"`
		DisplayName string `json:"display_name" doc:"Public display name"`
	}
}

// LoginInput contains the login request body.
type LoginInput struct {
	Body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
}

// UserResponse is the public shape of a user account.
type UserResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// AuthResponse carries a token plus the account it belongs to.
type AuthResponse struct {
	Token string       `json:"token" doc:"PASETO access token"`
	User  UserResponse `json:"user"`
}

// AuthOutput wraps the auth response for Huma.
type AuthOutput struct {
	Body AuthResponse
}

// UserOutput wraps a user response for Huma.
type UserOutput struct {
	Body UserResponse
}

// GetCurrentUserInput contains the auth header.
type GetCurrentUserInput struct {
	Authorization string `header:"Authorization"`
}

func userResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

// === Handlers ===

func (s *Server) handleRegister(ctx context.Context, input *RegisterInput) (*AuthOutput, error) {
	if err := s.allowAuthAttempt(input.Body.Email); err != nil {
		return nil, err
	}

	user, token, err := s.services.Auth.Register(ctx, service.RegisterInput{
		Email:       input.Body.Email,
		Password:    input.Body.Password,
		DisplayName: input.Body.DisplayName,
	})
	if err != nil {
		return nil, err
	}

	return &AuthOutput{Body: AuthResponse{Token: token, User: userResponse(user)}}, nil
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*AuthOutput, error) {
	if err := s.allowAuthAttempt(input.Body.Email); err != nil {
		return nil, err
	}

	user, token, err := s.services.Auth.Login(ctx, input.Body.Email, input.Body.Password)
	if err != nil {
		return nil, err
	}

	return &AuthOutput{Body: AuthResponse{Token: token, User: userResponse(user)}}, nil
}

func (s *Server) handleGetCurrentUser(ctx context.Context, input *GetCurrentUserInput) (*UserOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, huma.Error401Unauthorized("User not found")
	}

	return &UserOutput{Body: userResponse(user)}, nil
}

// allowAuthAttempt throttles credential guessing per account rather than
// per IP, so a NAT full of players doesn't lock each other out.
func (s *Server) allowAuthAttempt(email string) error {
	key := strings.ToLower(strings.TrimSpace(email))
	if key == "" {
		return nil // Validation rejects it anyway
	}
	if !s.authLimiter.Allow(key) {
		return apperrors.RateLimited("too many attempts, slow down")
	}
	return nil
}
