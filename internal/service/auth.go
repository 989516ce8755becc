package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dan9191/todo-service/internal/models"
	"github.com/Dan9191/todo-service/internal/repository"
	"github.com/Dan9191/todo-service/internal/utils"
	"github.com/sirupsen/logrus"
)

// Hasher turns passwords into salted one-way hashes
type Hasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenSigner issues and verifies session tokens
type TokenSigner interface {
	Sign(userID, email string) (string, error)
	Verify(token string) (*utils.Claims, error)
}

// AuthResult is returned by Register and Login
type AuthResult struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

// AuthService handles registration, login and token checks
type AuthService struct {
	users        repository.UserStore
	hasher       Hasher
	tokens       TokenSigner
	log          *logrus.Logger
	genericLogin bool
}

// AuthOption configures an AuthService
type AuthOption func(*AuthService)

// WithGenericLoginErrors makes Login report unknown email and wrong password identically
func WithGenericLoginErrors() AuthOption {
	return func(s *AuthService) {
		s.genericLogin = true
	}
}

// NewAuthService initializes a new auth service
func NewAuthService(users repository.UserStore, hasher Hasher, tokens TokenSigner, log *logrus.Logger, opts ...AuthOption) *AuthService {
	s := &AuthService{users: users, hasher: hasher, tokens: tokens, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a new user with hashed password and signs them in
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)
	if email == "" || password == "" || name == "" {
		return nil, newError(ErrValidation, "email, password and name are required")
	}
	if len(password) > utils.MaxPasswordBytes {
		return nil, newError(ErrValidation, fmt.Sprintf("password must be at most %d bytes", utils.MaxPasswordBytes))
	}

	_, err := s.users.FindUserByEmail(ctx, email)
	if err == nil {
		return nil, newError(ErrConflict, "email is already registered")
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: hashedPassword,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, newError(ErrConflict, "email is already registered")
		}
		return nil, err
	}

	s.log.Infof("User registered: %s", user.Email)
	return s.issue(user)
}

// Login authenticates a user and returns a fresh token
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, newError(ErrValidation, "email and password are required")
	}

	user, err := s.users.FindUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		s.log.Debugf("Login for unknown email: %s", email)
		return nil, s.loginError("email is not registered")
	}
	if err != nil {
		return nil, err
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		s.log.Debugf("Login with wrong password: %s", email)
		return nil, s.loginError("password is incorrect")
	}

	s.log.Infof("User logged in: %s", user.Email)
	return s.issue(user)
}

// Authenticate verifies a bearer token and returns its claims
func (s *AuthService) Authenticate(token string) (*utils.Claims, error) {
	if token == "" {
		return nil, newError(ErrMissingToken, "token is required")
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		s.log.Debugf("Token rejected: %v", err)
		return nil, newError(ErrInvalidToken, "invalid or expired token")
	}
	return claims, nil
}

// CurrentUser returns the public fields of an existing user
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.PublicUser, error) {
	user, err := s.users.FindUserByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newError(ErrNotFound, "user not found")
	}
	if err != nil {
		return nil, err
	}
	public := user.Public()
	return &public, nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Sign(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token for %s: %w", user.Email, err)
	}
	return &AuthResult{Token: token, User: user.Public()}, nil
}

func (s *AuthService) loginError(specific string) error {
	if s.genericLogin {
		return newError(ErrInvalidCredentials, "invalid email or password")
	}
	return newError(ErrInvalidCredentials, specific)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
