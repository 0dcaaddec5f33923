package models

import (
	"time"

	"github.com/google/uuid"
)

// Post is a user-authored document. Tags are stored as a JSONB array.
type Post struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	AuthorID  uuid.UUID `json:"author_id" db:"author_id"`
	Tags      []string  `json:"tags" db:"tags"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Post model
func (Post) TableName() string {
	return "posts"
}

// NewPost creates a new Post instance
func NewPost(authorID uuid.UUID, title, content string, tags []string) *Post {
	if tags == nil {
		tags = []string{}
	}
	now := time.Now().UTC()
	return &Post{
		ID:        uuid.New(),
		Title:     title,
		Content:   content,
		AuthorID:  authorID,
		Tags:      tags,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
