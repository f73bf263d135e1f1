// Package repository declares the storage contracts the service layer
// depends on. internal/repository/sqlite provides the implementation.
package repository

import (
	"context"

	"github.com/sakif/blog-api/internal/model"
)

// UserRepository persists user accounts.
type UserRepository interface {
	// Create stores a new user and fills in ID and CreatedAt.
	// A duplicate email yields an apperror.ErrConflict error.
	Create(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// PostRepository persists posts.
//
// UpdateOwned and DeleteOwned act only when both the post ID and the author
// match, in a single statement. When nothing matched they report
// apperror.ErrNotFound if the post does not exist and apperror.ErrForbidden
// if it belongs to someone else.
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id string) (*model.Post, error)
	ListByAuthor(ctx context.Context, authorID string) ([]model.Post, error)
	UpdateOwned(ctx context.Context, post *model.Post) error
	DeleteOwned(ctx context.Context, id, authorID string) error
}
