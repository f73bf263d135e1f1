// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// Services accept plain values (user IDs, strings) and return domain errors
// from internal/apperror. They never see an *http.Request, so the same rules
// apply whether a post arrives over HTTP or from a test.
//
// DEPENDENCY INJECTION:
// PostService takes a repository.PostRepository (interface), not a
// *sqlite.PostDB. Tests pass a hand-written in-memory mock instead.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/blog-api/internal/apperror"
	"github.com/sakif/blog-api/internal/model"
	"github.com/sakif/blog-api/internal/repository"
)

const msgTitleContentRequired = "Title and content are required."

// PostService handles business logic for blog posts.
//
// Every method takes the caller's user ID as resolved by the Auth Gate.
// Ownership is never taken from the request body.
type PostService struct {
	repo   repository.PostRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewPostService creates a new PostService.
func NewPostService(repo repository.PostRepository, logger *slog.Logger) *PostService {
	return &PostService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// Create validates and saves a new post owned by userID.
//
// tagsRaw is the comma-separated string typed into the form; see model.ParseTags.
func (s *PostService) Create(ctx context.Context, userID, title, content, tagsRaw string) (*model.Post, error) {
	if userID == "" {
		return nil, apperror.Unauthenticated()
	}
	if err := validatePostFields(title, content); err != nil {
		return nil, err
	}

	post := &model.Post{
		Title:     title,
		Content:   content,
		Tags:      model.ParseTags(tagsRaw),
		AuthorID:  userID,
		CreatedAt: s.now(),
	}

	if err := s.repo.Create(ctx, post); err != nil {
		s.logger.Error("failed to create post",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating post: %w", err)
	}

	s.logger.Info("post created",
		slog.String("id", post.ID),
		slog.String("authorID", post.AuthorID),
	)

	return post, nil
}

// ListMine returns the caller's posts, newest first. Other users' posts are
// never included. An author with no posts gets an empty slice, not nil.
func (s *PostService) ListMine(ctx context.Context, userID string) ([]model.Post, error) {
	if userID == "" {
		return nil, apperror.Unauthenticated()
	}

	posts, err := s.repo.ListByAuthor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	if posts == nil {
		posts = []model.Post{}
	}
	return posts, nil
}

// Update replaces the title, content and tags of postID.
//
// ERRORS, IN ORDER OF PRECEDENCE:
//  1. apperror.ErrValidation → title or content is empty
//  2. apperror.ErrNotFound   → no post with that ID (even for non-owners)
//  3. apperror.ErrForbidden  → the post belongs to someone else
//
// The ownership check and the write happen in one conditional statement in
// the store, so a post cannot change hands between the check and the update.
// ID, AuthorID and CreatedAt are never touched.
func (s *PostService) Update(ctx context.Context, userID, postID, title, content, tagsRaw string) (*model.Post, error) {
	if userID == "" {
		return nil, apperror.Unauthenticated()
	}
	if err := validatePostFields(title, content); err != nil {
		return nil, err
	}

	post := &model.Post{
		ID:       postID,
		Title:    title,
		Content:  content,
		Tags:     model.ParseTags(tagsRaw),
		AuthorID: userID,
	}

	if err := s.repo.UpdateOwned(ctx, post); err != nil {
		if isDomainError(err) {
			s.logger.Debug("post update rejected",
				slog.String("id", postID),
				slog.String("userID", userID),
				slog.String("reason", err.Error()),
			)
			return nil, err
		}
		return nil, fmt.Errorf("updating post %s: %w", postID, err)
	}

	s.logger.Info("post updated", slog.String("id", postID))
	return post, nil
}

// Delete permanently removes postID. Same error precedence as Update,
// minus validation.
func (s *PostService) Delete(ctx context.Context, userID, postID string) error {
	if userID == "" {
		return apperror.Unauthenticated()
	}

	if err := s.repo.DeleteOwned(ctx, postID, userID); err != nil {
		if isDomainError(err) {
			return err
		}
		return fmt.Errorf("deleting post %s: %w", postID, err)
	}

	s.logger.Info("post deleted", slog.String("id", postID), slog.String("userID", userID))
	return nil
}

func validatePostFields(title, content string) error {
	if strings.TrimSpace(title) == "" {
		return apperror.ValidationFailed("title", msgTitleContentRequired)
	}
	if strings.TrimSpace(content) == "" {
		return apperror.ValidationFailed("content", msgTitleContentRequired)
	}
	return nil
}

func isDomainError(err error) bool {
	var appErr *apperror.AppError
	return errors.As(err, &appErr)
}
