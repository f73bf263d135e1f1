// Package client is the consumer side of the blog API: an HTTP client, a
// token store, and the Session state machine that decides which screen a
// front end shows.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/sakif/blog-api/internal/model"
)

// tokenHeader must match auth.TokenHeader on the server.
const tokenHeader = "x-auth-token"

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Code    string // machine-readable "error" field, empty for plain-text bodies
	Message string // server-supplied message, empty when the body had none
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
}

// AuthResponse is the body returned by register and login.
type AuthResponse struct {
	Token string            `json:"token"`
	User  model.UserSummary `json:"user"`
}

// PostInput is what the post form submits. Tags is the raw comma-separated
// text; the server splits it.
type PostInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Tags    string `json:"tags"`
}

// Client calls the blog API over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for baseURL (including the /api prefix).
// A nil httpClient gets a default with a 10 second timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResponse, error) {
	var res AuthResponse
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var res AuthResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Me returns the user behind token.
func (c *Client) Me(ctx context.Context, token string) (*model.UserSummary, error) {
	var res model.UserSummary
	if err := c.do(ctx, http.MethodGet, "/auth/me", token, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ListPosts returns the caller's posts, newest first.
func (c *Client) ListPosts(ctx context.Context, token string) ([]model.Post, error) {
	posts := []model.Post{}
	if err := c.do(ctx, http.MethodGet, "/posts", token, nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// CreatePost stores a new post.
func (c *Client) CreatePost(ctx context.Context, token string, in PostInput) (*model.Post, error) {
	var post model.Post
	if err := c.do(ctx, http.MethodPost, "/posts", token, in, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// UpdatePost replaces the title, content and tags of post id.
func (c *Client) UpdatePost(ctx context.Context, token, id string, in PostInput) (*model.Post, error) {
	var post model.Post
	if err := c.do(ctx, http.MethodPut, "/posts/"+url.PathEscape(id), token, in, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost removes post id.
func (c *Client) DeletePost(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/posts/"+url.PathEscape(id), token, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("api: encoding request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("api: building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(tokenHeader, token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("api: reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("api: decoding response: %w", err)
	}
	return nil
}

// decodeAPIError reads {"error","message"} bodies. Plain-text bodies such as
// the server's bare "Server Error" leave Message empty so callers fall back
// to their own wording.
func decodeAPIError(status int, data []byte) *APIError {
	apiErr := &APIError{Status: status}
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		apiErr.Code = body.Error
		apiErr.Message = body.Message
	}
	return apiErr
}
