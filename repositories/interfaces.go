package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/upb/postboard/internal/auth"
	"github.com/upb/postboard/models"
)

var (
	// ErrNotFound is wrapped by repositories when no row matches
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is wrapped by repositories when a unique constraint is violated
	ErrDuplicate = errors.New("duplicate record")
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction
	// Automatically commits if function succeeds, rolls back on error
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context
	Context() context.Context
}

// UserRepository handles user data operations
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// GetByUsername retrieves a user by username
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// List retrieves users ordered by creation time with pagination
	List(ctx context.Context, limit, offset int) ([]*models.User, error)

	// UpdateRole changes the role of a user
	UpdateRole(ctx context.Context, id uuid.UUID, role auth.Role, updatedAt time.Time) error
}

// PostRepository handles post data operations
type PostRepository interface {
	// Create creates a new post
	Create(ctx context.Context, post *models.Post) error

	// GetByID retrieves a post by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error)

	// List retrieves posts, newest first, with pagination
	List(ctx context.Context, limit, offset int) ([]*models.Post, error)

	// Delete deletes a post
	Delete(ctx context.Context, id uuid.UUID) error
}

// Repositories groups every repository the application uses
type Repositories struct {
	Users UserRepository
	Posts PostRepository
}
