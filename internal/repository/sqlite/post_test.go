package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/blog-api/internal/apperror"
	"github.com/sakif/blog-api/internal/model"
)

// createTestPost inserts a post for author with an explicit creation time.
func createTestPost(t *testing.T, p *PostDB, authorID, title string, createdAt time.Time) *model.Post {
	t.Helper()
	post := &model.Post{
		Title:     title,
		Content:   "content of " + title,
		Tags:      []string{"go", "sqlite"},
		AuthorID:  authorID,
		CreatedAt: createdAt,
	}
	require.NoError(t, p.Create(context.Background(), post))
	return post
}

func TestPostCreate_AndGetByID(t *testing.T) {
	db := newTestDB(t)
	ann := createTestUser(t, db.Users(), "Ann", "ann@x.com")

	post := &model.Post{Title: "T", Content: "C", Tags: []string{"x", "y"}, AuthorID: ann.ID}
	require.NoError(t, db.Posts().Create(context.Background(), post))

	assert.NotEmpty(t, post.ID)
	assert.False(t, post.CreatedAt.IsZero())

	found, err := db.Posts().GetByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "T", found.Title)
	assert.Equal(t, "C", found.Content)
	assert.Equal(t, []string{"x", "y"}, found.Tags)
	assert.Equal(t, ann.ID, found.AuthorID)
	assert.True(t, post.CreatedAt.Equal(found.CreatedAt), "CreatedAt %v != %v", found.CreatedAt, post.CreatedAt)
}

func TestPostCreate_NilTagsStoredAsEmpty(t *testing.T) {
	db := newTestDB(t)
	ann := createTestUser(t, db.Users(), "Ann", "ann@x.com")

	post := &model.Post{Title: "T", Content: "C", AuthorID: ann.ID}
	require.NoError(t, db.Posts().Create(context.Background(), post))

	found, err := db.Posts().GetByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.NotNil(t, found.Tags)
	assert.Empty(t, found.Tags)
}

func TestPostCreate_UnknownAuthorRejected(t *testing.T) {
	db := newTestDB(t)

	err := db.Posts().Create(context.Background(), &model.Post{Title: "T", Content: "C", AuthorID: "ghost"})
	assert.Error(t, err, "foreign key on author_id should reject unknown users")
}

func TestPostGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Posts().GetByID(context.Background(), "missing")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestListByAuthor_OnlyOwnPostsNewestFirst(t *testing.T) {
	db := newTestDB(t)
	ann := createTestUser(t, db.Users(), "Ann", "ann@x.com")
	bob := createTestUser(t, db.Users(), "Bob", "bob@x.com")

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	oldest := createTestPost(t, db.Posts(), ann.ID, "oldest", base)
	newest := createTestPost(t, db.Posts(), ann.ID, "newest", base.Add(2*time.Hour))
	middle := createTestPost(t, db.Posts(), ann.ID, "middle", base.Add(90*time.Minute+500*time.Millisecond))
	createTestPost(t, db.Posts(), bob.ID, "bob's", base.Add(3*time.Hour))

	posts, err := db.Posts().ListByAuthor(context.Background(), ann.ID)
	require.NoError(t, err)
	require.Len(t, posts, 3)

	assert.Equal(t, newest.ID, posts[0].ID)
	assert.Equal(t, middle.ID, posts[1].ID)
	assert.Equal(t, oldest.ID, posts[2].ID)
	for _, p := range posts {
		assert.Equal(t, ann.ID, p.AuthorID)
	}
}

func TestListByAuthor_Empty(t *testing.T) {
	db := newTestDB(t)
	ann := createTestUser(t, db.Users(), "Ann", "ann@x.com")

	posts, err := db.Posts().ListByAuthor(context.Background(), ann.ID)
	require.NoError(t, err)
	assert.NotNil(t, posts, "an empty list must encode as [] not null")
	assert.Empty(t, posts)
}

func TestUpdateOwned(t *testing.T) {
	db := newTestDB(t)
	ann := createTestUser(t, db.Users(), "Ann", "ann@x.com")
	created := createTestPost(t, db.Posts(), ann.ID, "before", time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	update := &model.Post{
		ID:       created.ID,
		Title:    "after",
		Content:  "new content",
		Tags:     []string{"z"},
		AuthorID: ann.ID,
	}
	require.NoError(t, db.Posts().UpdateOwned(context.Background(), update))

	assert.Equal(t, "after", update.Title)
	assert.Equal(t, []string{"z"}, update.Tags)
	assert.Equal(t, ann.ID, update.AuthorID)
	assert.True(t, created.CreatedAt.Equal(update.CreatedAt), "CreatedAt must survive an update")
}

func TestUpdateOwned_NotFoundBeatsForbidden(t *testing.T) {
	db := newTestDB(t)
	bob := createTestUser(t, db.Users(), "Bob", "bob@x.com")

	err := db.Posts().UpdateOwned(context.Background(), &model.Post{ID: "missing", Title: "t", Content: "c", AuthorID: bob.ID})
	assert.True(t, errors.Is(err, apperror.ErrNotFound), "got %v", err)
}

func TestUpdateOwned_WrongAuthor(t *testing.T) {
	db := newTestDB(t)
	ann := createTestUser(t, db.Users(), "Ann", "ann@x.com")
	bob := createTestUser(t, db.Users(), "Bob", "bob@x.com")
	created := createTestPost(t, db.Posts(), ann.ID, "ann's", time.Now())

	err := db.Posts().UpdateOwned(context.Background(), &model.Post{ID: created.ID, Title: "hijack", Content: "c", AuthorID: bob.ID})
	assert.True(t, errors.Is(err, apperror.ErrForbidden), "got %v", err)

	unchanged, err := db.Posts().GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "ann's", unchanged.Title)
}

func TestDeleteOwned(t *testing.T) {
	db := newTestDB(t)
	ann := createTestUser(t, db.Users(), "Ann", "ann@x.com")
	bob := createTestUser(t, db.Users(), "Bob", "bob@x.com")
	created := createTestPost(t, db.Posts(), ann.ID, "doomed", time.Now())

	err := db.Posts().DeleteOwned(context.Background(), created.ID, bob.ID)
	assert.True(t, errors.Is(err, apperror.ErrForbidden), "got %v", err)

	require.NoError(t, db.Posts().DeleteOwned(context.Background(), created.ID, ann.ID))

	_, err = db.Posts().GetByID(context.Background(), created.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	err = db.Posts().DeleteOwned(context.Background(), created.ID, ann.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound), "second delete should be NotFound, got %v", err)
}

// =========================================================================
// FILE DATABASE TESTS
// =========================================================================

// newFileTestDB opens a database file under the test's temp dir, so the
// pool really holds more than one connection.
func newFileTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "blog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestForeignKeysOnEveryConnection(t *testing.T) {
	db := newFileTestDB(t)
	ctx := context.Background()

	first, err := db.conn.Conn(ctx)
	require.NoError(t, err)
	defer first.Close()
	second, err := db.conn.Conn(ctx)
	require.NoError(t, err)
	defer second.Close()

	for i, c := range []*sql.Conn{first, second} {
		var on int
		require.NoError(t, c.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&on))
		assert.Equal(t, 1, on, "connection %d", i+1)
	}

	_, err = second.ExecContext(ctx,
		`INSERT INTO posts (id, title, content, tags, author_id, created_at)
		 VALUES ('orphan', 'T', 'C', '[]', 'no-such-user', ?)`,
		time.Now().UTC(),
	)
	assert.Error(t, err, "insert with an unknown author must be rejected")
}

func TestPostCreate_ConcurrentWritersOnFile(t *testing.T) {
	db := newFileTestDB(t)
	ann := createTestUser(t, db.Users(), "Ann", "ann@x.com")

	const writers = 50
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			post := &model.Post{Title: fmt.Sprintf("post %d", i), Content: "C", AuthorID: ann.ID}
			if err := db.Posts().Create(context.Background(), post); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Create() error = %v", err)
	}

	posts, err := db.Posts().ListByAuthor(context.Background(), ann.ID)
	require.NoError(t, err)
	assert.Len(t, posts, writers)
}
