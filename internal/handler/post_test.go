package handler_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/blog-api/internal/auth"
	"github.com/sakif/blog-api/internal/handler"
	"github.com/sakif/blog-api/internal/model"
	sqliteRepo "github.com/sakif/blog-api/internal/repository/sqlite"
	"github.com/sakif/blog-api/internal/service"
)

// testEnv wires real services over an in-memory database. Requests pick
// their user with the X-Test-User header instead of a token, so these tests
// exercise the handlers without the Auth Gate.
type testEnv struct {
	router http.Handler
	auth   *service.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	db, err := sqliteRepo.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("handler-test-secret-0123456789", time.Hour)
	require.NoError(t, err)

	authSvc := service.NewAuthService(db.Users(), tokens, auth.NewPasswordServiceWithCost(4), logger)
	postSvc := service.NewPostService(db.Posts(), logger)

	authHandler := handler.NewAuthHandler(authSvc, logger)
	postHandler := handler.NewPostHandler(postSvc, logger)

	r := chi.NewRouter()
	r.Post("/api/auth/register", authHandler.HandleRegister)
	r.Post("/api/auth/login", authHandler.HandleLogin)
	r.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				if id := req.Header.Get("X-Test-User"); id != "" {
					req = req.WithContext(auth.WithUserID(req.Context(), id))
				}
				next.ServeHTTP(w, req)
			})
		})
		r.Get("/api/auth/me", authHandler.HandleMe)
		r.Get("/api/posts", postHandler.HandleList)
		r.Post("/api/posts", postHandler.HandleCreate)
		r.Put("/api/posts/{id}", postHandler.HandleUpdate)
		r.Delete("/api/posts/{id}", postHandler.HandleDelete)
	})

	return &testEnv{router: r, auth: authSvc}
}

func (e *testEnv) do(t *testing.T, method, path, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-Test-User", userID)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) register(t *testing.T, name, email string) string {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/api/auth/register", "",
		`{"name":"`+name+`","email":"`+email+`","password":"pw1"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var res handler.TokenResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	return res.User.ID
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	var res handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	return res
}

func TestPostHandler_CreateAndList(t *testing.T) {
	env := newTestEnv(t)
	ann := env.register(t, "Ann", "ann@x.com")

	rr := env.do(t, http.MethodPost, "/api/posts", ann, `{"title":"T","content":"C","tags":"x, y"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var created model.Post
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))
	assert.Equal(t, []string{"x", "y"}, created.Tags)
	assert.Equal(t, ann, created.AuthorID)

	rr = env.do(t, http.MethodGet, "/api/posts", ann, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var posts []model.Post
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&posts))
	require.Len(t, posts, 1)
	assert.Equal(t, created.ID, posts[0].ID)
}

func TestPostHandler_ListEmptyIsArray(t *testing.T) {
	env := newTestEnv(t)
	ann := env.register(t, "Ann", "ann@x.com")

	rr := env.do(t, http.MethodGet, "/api/posts", ann, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestPostHandler_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	ann := env.register(t, "Ann", "ann@x.com")

	t.Run("missing content", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/api/posts", ann, `{"title":"T"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Title and content are required.", decodeError(t, rr).Message)
	})

	t.Run("invalid json", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/api/posts", ann, `{"title":`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "validation_error", decodeError(t, rr).Error)
	})
}

func TestPostHandler_UpdateAndDeleteOwnership(t *testing.T) {
	env := newTestEnv(t)
	ann := env.register(t, "Ann", "ann@x.com")
	bob := env.register(t, "Bob", "bob@x.com")

	rr := env.do(t, http.MethodPost, "/api/posts", ann, `{"title":"T","content":"C","tags":"x"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var created model.Post
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))

	t.Run("non-owner update is 401", func(t *testing.T) {
		rr := env.do(t, http.MethodPut, "/api/posts/"+created.ID, bob, `{"title":"X","content":"X","tags":""}`)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Not authorized", decodeError(t, rr).Message)
	})

	t.Run("missing post is 404", func(t *testing.T) {
		rr := env.do(t, http.MethodPut, "/api/posts/nope", bob, `{"title":"X","content":"X"}`)
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "Post not found", decodeError(t, rr).Message)
	})

	t.Run("owner update", func(t *testing.T) {
		rr := env.do(t, http.MethodPut, "/api/posts/"+created.ID, ann, `{"title":"T2","content":"C2","tags":""}`)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var updated model.Post
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&updated))
		assert.Equal(t, "T2", updated.Title)
		assert.Empty(t, updated.Tags)
		assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))
	})

	t.Run("non-owner delete is 401", func(t *testing.T) {
		rr := env.do(t, http.MethodDelete, "/api/posts/"+created.ID, bob, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("owner delete", func(t *testing.T) {
		rr := env.do(t, http.MethodDelete, "/api/posts/"+created.ID, ann, "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"message":"Post removed"}`, rr.Body.String())

		rr = env.do(t, http.MethodDelete, "/api/posts/"+created.ID, ann, "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestPostHandler_NoUserInContext(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/posts", "", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
