package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	apperrors "github.com/binderapp/binder-server/internal/errors"

	"github.com/binderapp/binder-server/internal/auth"
	"github.com/binderapp/binder-server/internal/domain"
	"github.com/binderapp/binder-server/internal/id"
	"github.com/binderapp/binder-server/internal/store"
	"github.com/binderapp/binder-server/internal/validation"
)

// AuthService handles registration, login and token verification.
type AuthService struct {
	store     *store.Store
	tokens    *auth.TokenService
	validator *validation.Validator
	logger    *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(store *store.Store, tokens *auth.TokenService, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:     store,
		tokens:    tokens,
		validator: validation.New(),
		logger:    logger,
	}
}

// RegisterInput carries the fields needed to create an account.
type RegisterInput struct {
	Email       string `validate:"required,email"`
	Password    string `validate:"required,min=8,max=128"`
	DisplayName string `validate:"required,min=1,max=100"`
}

// Register creates a new account and returns the user with a fresh token.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, string, error) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	input.DisplayName = strings.TrimSpace(input.DisplayName)

	if err := s.validator.Validate(input); err != nil {
		return nil, "", apperrors.Validation(err.Error())
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate("usr")
	if err != nil {
		return nil, "", fmt.Errorf("generate user ID: %w", err)
	}

	user := &domain.User{
		Syncable:     domain.Syncable{ID: userID},
		Email:        input.Email,
		DisplayName:  input.DisplayName,
		PasswordHash: hash,
	}
	user.InitTimestamps()

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return nil, "", apperrors.AlreadyExists("an account with this email already exists")
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID)

	return user, token, nil
}

// Login verifies credentials and returns the user with a fresh token.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, "", apperrors.InvalidCredentials("invalid email or password")
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, "", apperrors.InvalidCredentials("invalid email or password")
		}
		return nil, "", fmt.Errorf("get user: %w", err)
	}

	match, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, "", fmt.Errorf("verify password: %w", err)
	}
	if !match {
		return nil, "", apperrors.InvalidCredentials("invalid email or password")
	}

	if user.Suspended {
		return nil, "", apperrors.Forbidden("account is suspended")
	}

	token, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID)

	return user, token, nil
}

// Verify checks an access token and returns the user it belongs to.
func (s *AuthService) Verify(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.VerifyAccessToken(token)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired token")
	}

	user, err := s.store.GetUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, apperrors.Unauthorized("invalid or expired token")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if user.Suspended || user.IsDeleted() {
		return nil, apperrors.Forbidden("account is suspended")
	}

	return user, nil
}
