package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/upb/postboard/models"
	"github.com/upb/postboard/repositories"
	"go.uber.org/zap"
)

// CreatePostInput holds the fields of a new post
type CreatePostInput struct {
	Title   string
	Content string
	Tags    []string
}

// PostService handles post reads and writes
type PostService struct {
	posts  repositories.PostRepository
	logger *zap.Logger
}

// NewPostService creates a new PostService
func NewPostService(posts repositories.PostRepository, logger *zap.Logger) *PostService {
	return &PostService{
		posts:  posts,
		logger: logger,
	}
}

// List returns a page of posts, newest first
func (s *PostService) List(ctx context.Context, page Page) ([]*models.Post, error) {
	posts, err := s.posts.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, ErrDatabaseError.Wrap(err)
	}
	return posts, nil
}

// Get returns a single post
func (s *PostService) Get(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPostNotFound.Wrap(err)
		}
		return nil, ErrDatabaseError.Wrap(err)
	}
	return post, nil
}

// Create stores a post authored by authorID
func (s *PostService) Create(ctx context.Context, authorID uuid.UUID, in CreatePostInput) (*models.Post, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" || strings.TrimSpace(in.Content) == "" {
		return nil, NewDomainError(ErrorTypeValidation, "title and content are required", nil)
	}

	post := models.NewPost(authorID, title, in.Content, normalizeTags(in.Tags))
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, ErrDatabaseError.Wrap(err)
	}

	s.logger.Info("post created",
		zap.String("post_id", post.ID.String()),
		zap.String("author_id", authorID.String()))

	return post, nil
}

// Delete removes a post
func (s *PostService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.posts.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrPostNotFound.Wrap(err)
		}
		return ErrDatabaseError.Wrap(err)
	}

	s.logger.Info("post deleted", zap.String("post_id", id.String()))
	return nil
}

// normalizeTags lowercases, trims and de-duplicates tags, keeping first-seen order
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
