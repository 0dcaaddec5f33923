package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/upb/postboard/internal/auth"
	"github.com/upb/postboard/models"
	"github.com/upb/postboard/repositories"
	"go.uber.org/zap"
)

// RoleCatalog reports which roles are defined
type RoleCatalog interface {
	HasRole(role auth.Role) bool
}

// UserService handles admin user management and role lookups
type UserService struct {
	users  repositories.UserRepository
	txMgr  repositories.TransactionManager
	roles  RoleCatalog
	logger *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(users repositories.UserRepository, txMgr repositories.TransactionManager, roles RoleCatalog, logger *zap.Logger) *UserService {
	return &UserService{
		users:  users,
		txMgr:  txMgr,
		roles:  roles,
		logger: logger,
	}
}

// List returns a page of users
func (s *UserService) List(ctx context.Context, page Page) ([]*models.User, error) {
	users, err := s.users.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, ErrDatabaseError.Wrap(err)
	}
	return users, nil
}

// UpdateRole assigns a defined role to a user
func (s *UserService) UpdateRole(ctx context.Context, userID uuid.UUID, role auth.Role) (*models.User, error) {
	if !s.roles.HasRole(role) {
		return nil, ErrInvalidRole.Wrap(nil).WithDetail("role", string(role))
	}

	user, err := WithTransactionResult(ctx, s.txMgr, func(ctx context.Context, _ repositories.Transaction) (*models.User, error) {
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}

		now := time.Now().UTC()
		if err := s.users.UpdateRole(ctx, userID, role, now); err != nil {
			return nil, err
		}

		previous := user.Role
		user.Role = role
		user.UpdatedAt = now

		s.logger.Info("user role updated",
			zap.String("user_id", userID.String()),
			zap.String("previous_role", string(previous)),
			zap.String("role", string(role)))
		return user, nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound.Wrap(err)
		}
		return nil, ErrDatabaseError.Wrap(err)
	}

	return user, nil
}

// ResolveRole returns the current stored role of a user
func (s *UserService) ResolveRole(ctx context.Context, userID uuid.UUID) (auth.Role, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", ErrUserNotFound.Wrap(err)
		}
		return "", ErrDatabaseError.Wrap(err)
	}
	return user.Role, nil
}
