package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/xid"

	"github.com/sakif/blog-api/internal/apperror"
	"github.com/sakif/blog-api/internal/model"
	"github.com/sakif/blog-api/internal/repository"
)

var _ repository.PostRepository = (*PostDB)(nil)

const postColumns = `id, title, content, tags, author_id, created_at`

// PostDB stores posts.
type PostDB struct {
	conn *sql.DB
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// Create inserts a new post and fills in its ID. CreatedAt is kept when the
// caller already set it, otherwise it becomes the current time.
func (p *PostDB) Create(ctx context.Context, post *model.Post) error {
	post.ID = xid.New().String()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	// One zone for every row so created_at strings sort chronologically.
	post.CreatedAt = post.CreatedAt.UTC()
	if post.Tags == nil {
		post.Tags = []string{}
	}

	tags, err := encodeTags(post.Tags)
	if err != nil {
		return err
	}

	_, err = p.conn.ExecContext(ctx,
		`INSERT INTO posts (id, title, content, tags, author_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		post.ID,
		post.Title,
		post.Content,
		tags,
		post.AuthorID,
		post.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating post: %w", err)
	}

	return nil
}

// GetByID retrieves a single post.
// Returns apperror.ErrNotFound if it does not exist.
func (p *PostDB) GetByID(ctx context.Context, id string) (*model.Post, error) {
	post, err := scanPost(p.conn.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = ?`,
		id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("post")
		}
		return nil, fmt.Errorf("sqlite: getting post %s: %w", id, err)
	}
	return post, nil
}

// ListByAuthor returns every post written by authorID, newest first.
// Posts created in the same instant fall back to ID order, which for xid is
// also creation order.
func (p *PostDB) ListByAuthor(ctx context.Context, authorID string) ([]model.Post, error) {
	rows, err := p.conn.QueryContext(ctx,
		`SELECT `+postColumns+`
		 FROM posts
		 WHERE author_id = ?
		 ORDER BY created_at DESC, id DESC`,
		authorID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	defer rows.Close()

	posts := make([]model.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}

	return posts, nil
}

// UpdateOwned replaces title, content and tags of post.ID, but only if
// post.AuthorID owns it. On success post is refreshed from the database so
// the caller sees the stored CreatedAt.
func (p *PostDB) UpdateOwned(ctx context.Context, post *model.Post) error {
	if post.Tags == nil {
		post.Tags = []string{}
	}
	tags, err := encodeTags(post.Tags)
	if err != nil {
		return err
	}

	result, err := p.conn.ExecContext(ctx,
		`UPDATE posts
		 SET title = ?, content = ?, tags = ?
		 WHERE id = ? AND author_id = ?`,
		post.Title,
		post.Content,
		tags,
		post.ID,
		post.AuthorID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating post %s: %w", post.ID, err)
	}

	if err := p.checkOwnedResult(ctx, result, post.ID); err != nil {
		return err
	}

	stored, err := p.GetByID(ctx, post.ID)
	if err != nil {
		return err
	}
	*post = *stored
	return nil
}

// DeleteOwned removes post id if authorID owns it.
func (p *PostDB) DeleteOwned(ctx context.Context, id, authorID string) error {
	result, err := p.conn.ExecContext(ctx,
		`DELETE FROM posts WHERE id = ? AND author_id = ?`,
		id,
		authorID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting post %s: %w", id, err)
	}

	return p.checkOwnedResult(ctx, result, id)
}

// checkOwnedResult turns "zero rows affected" into NotFound or Forbidden.
// Existence is checked first, so a missing post is always NotFound no
// matter who asked.
func (p *PostDB) checkOwnedResult(ctx context.Context, result sql.Result, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	var exists int
	err = p.conn.QueryRowContext(ctx, `SELECT 1 FROM posts WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.NotFound("post")
	}
	if err != nil {
		return fmt.Errorf("sqlite: probing post %s: %w", id, err)
	}
	return apperror.Forbidden("Not authorized")
}

func scanPost(row rowScanner) (*model.Post, error) {
	var (
		post model.Post
		tags string
	)
	if err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Content,
		&tags,
		&post.AuthorID,
		&post.CreatedAt,
	); err != nil {
		return nil, err
	}

	decoded, err := decodeTags(tags)
	if err != nil {
		return nil, fmt.Errorf("decoding tags of post %s: %w", post.ID, err)
	}
	post.Tags = decoded
	return &post, nil
}

func encodeTags(tags []string) (string, error) {
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("sqlite: encoding tags: %w", err)
	}
	return string(b), nil
}

func decodeTags(raw string) ([]string, error) {
	tags := []string{}
	if raw == "" {
		return tags, nil
	}
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}
