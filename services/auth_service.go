package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/upb/postboard/internal/auth"
	"github.com/upb/postboard/models"
	"github.com/upb/postboard/repositories"
	"go.uber.org/zap"
)

// PasswordHasher hashes and checks account passwords
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer signs credential tokens for an identity
type TokenIssuer interface {
	Issue(identity auth.Identity) (string, time.Time, error)
}

// RegisterInput holds the fields needed to create an account
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// LoginResult is returned on successful login
type LoginResult struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// AuthService handles registration, login and identity lookups
type AuthService struct {
	users       repositories.UserRepository
	hasher      PasswordHasher
	tokens      TokenIssuer
	defaultRole auth.Role
	logger      *zap.Logger

	decoyOnce sync.Once
	decoyHash string
}

// NewAuthService creates a new AuthService. New accounts receive the user role.
func NewAuthService(users repositories.UserRepository, hasher PasswordHasher, tokens TokenIssuer, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:       users,
		hasher:      hasher,
		tokens:      tokens,
		defaultRole: auth.RoleUser,
		logger:      logger,
	}
}

// Register creates a new account
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" || email == "" || in.Password == "" {
		return nil, NewDomainError(ErrorTypeValidation, "username, email and password are required", nil)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, WrapInternal("failed to hash password", err)
	}

	user := models.NewUser(username, email, hash, s.defaultRole)
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrDuplicateUser.Wrap(err)
		}
		return nil, ErrDatabaseError.Wrap(err)
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)))

	return user, nil
}

// Login checks credentials and issues a token
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.compareDecoy(password)
			return nil, ErrInvalidCredentials
		}
		return nil, ErrDatabaseError.Wrap(err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Error("password comparison failed", zap.Error(err), zap.String("user_id", user.ID.String()))
		}
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.Identity())
	if err != nil {
		return nil, WrapInternal("failed to issue token", err)
	}

	s.logger.Info("user logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))

	return &LoginResult{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

// compareDecoy spends one hash comparison on an unknown username so it
// costs the same as a wrong password for a known one.
func (s *AuthService) compareDecoy(password string) {
	s.decoyOnce.Do(func() {
		hash, err := s.hasher.Hash(uuid.NewString())
		if err != nil {
			s.logger.Error("failed to build decoy password hash", zap.Error(err))
			return
		}
		s.decoyHash = hash
	})
	if s.decoyHash != "" {
		_ = s.hasher.Compare(s.decoyHash, password)
	}
}

// Me returns the stored account for an authenticated caller
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound.Wrap(err)
		}
		return nil, ErrDatabaseError.Wrap(err)
	}
	return user, nil
}
