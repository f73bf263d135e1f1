package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/sakif/blog-api/internal/model"
)

// View is the top-level screen a front end shows.
type View int

const (
	ViewLogin View = iota
	ViewRegister
	ViewDashboard
)

func (v View) String() string {
	switch v {
	case ViewLogin:
		return "login"
	case ViewRegister:
		return "register"
	case ViewDashboard:
		return "dashboard"
	}
	return fmt.Sprintf("View(%d)", int(v))
}

// Pane is what the dashboard shows: the post list or the post form.
// The two are mutually exclusive.
type Pane int

const (
	PaneList Pane = iota
	PaneForm
)

func (p Pane) String() string {
	if p == PaneForm {
		return "form"
	}
	return "list"
}

// Fallback messages used when the server gives no message of its own.
const (
	MsgLoginFailed        = "Login failed. Please try again."
	MsgRegistrationFailed = "Registration failed. Please try again."
	MsgGenericFailure     = "An error occurred. Please try again."
)

// Form holds the post form's fields. EditingID is empty when creating.
type Form struct {
	EditingID string
	Title     string
	Content   string
	Tags      string
}

// Editing reports whether the form edits an existing post.
func (f Form) Editing() bool {
	return f.EditingID != ""
}

// API is the subset of *Client the session uses.
type API interface {
	Register(ctx context.Context, name, email, password string) (*AuthResponse, error)
	Login(ctx context.Context, email, password string) (*AuthResponse, error)
	Me(ctx context.Context, token string) (*model.UserSummary, error)
	ListPosts(ctx context.Context, token string) ([]model.Post, error)
	CreatePost(ctx context.Context, token string, in PostInput) (*model.Post, error)
	UpdatePost(ctx context.Context, token, id string, in PostInput) (*model.Post, error)
	DeletePost(ctx context.Context, token, id string) error
}

// Session is the client-side state machine.
//
//	start          → dashboard if a token is stored, else login
//	resume         → user looked up for a stored token, posts loaded
//	login ok       → dashboard (token saved)
//	register ok    → dashboard (token saved)
//	logout         → login (token cleared)
//	open create    → form, empty
//	open edit      → form, seeded from the post
//	close form     → list, nothing sent
//	submit ok      → list, posts reloaded from the server
//
// A Session is not safe for concurrent use; a front end drives it from one
// goroutine, one action at a time.
type Session struct {
	api   API
	store TokenStore

	view  View
	pane  Pane
	token string
	user  *model.UserSummary
	posts []model.Post
	form  Form
	err   string
}

// NewSession restores any persisted token and picks the starting view.
func NewSession(api API, store TokenStore) (*Session, error) {
	token, err := store.Load()
	if err != nil {
		return nil, err
	}

	s := &Session{api: api, store: store, token: token, posts: []model.Post{}}
	if token != "" {
		s.view = ViewDashboard
	}
	return s, nil
}

func (s *Session) View() View               { return s.view }
func (s *Session) Pane() Pane               { return s.pane }
func (s *Session) Token() string            { return s.token }
func (s *Session) User() *model.UserSummary { return s.user }
func (s *Session) Form() Form               { return s.form }

// Err is the message to show the user for the last failed action, or "".
func (s *Session) Err() string { return s.err }

// Posts returns the posts from the last refresh, newest first.
func (s *Session) Posts() []model.Post {
	return append([]model.Post(nil), s.posts...)
}

// ShowRegister switches from login to the registration screen.
func (s *Session) ShowRegister() {
	if s.view == ViewLogin {
		s.view = ViewRegister
		s.err = ""
	}
}

// ShowLogin switches from registration back to login.
func (s *Session) ShowLogin() {
	if s.view == ViewRegister {
		s.view = ViewLogin
		s.err = ""
	}
}

// Login signs in and moves to the dashboard.
func (s *Session) Login(ctx context.Context, email, password string) error {
	s.err = ""
	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		return s.fail(err, MsgLoginFailed)
	}
	return s.signedIn(ctx, res)
}

// Register creates an account and moves straight to the dashboard with the
// returned token.
func (s *Session) Register(ctx context.Context, name, email, password string) error {
	s.err = ""
	res, err := s.api.Register(ctx, name, email, password)
	if err != nil {
		return s.fail(err, MsgRegistrationFailed)
	}
	return s.signedIn(ctx, res)
}

func (s *Session) signedIn(ctx context.Context, res *AuthResponse) error {
	if err := s.store.Save(res.Token); err != nil {
		return err
	}
	s.token = res.Token
	user := res.User
	s.user = &user
	s.view = ViewDashboard
	s.pane = PaneList
	s.form = Form{}
	return s.Refresh(ctx)
}

// Resume finishes a start from a stored token: it fetches the user the token
// belongs to and loads the posts. A rejected token sends the session back to
// login. It does nothing outside the dashboard.
func (s *Session) Resume(ctx context.Context) error {
	if s.view != ViewDashboard {
		return nil
	}
	if s.user == nil {
		user, err := s.api.Me(ctx, s.token)
		if err != nil {
			return s.fail(err, MsgGenericFailure)
		}
		s.user = user
	}
	return s.Refresh(ctx)
}

// Logout forgets the token and returns to the login screen.
func (s *Session) Logout() error {
	s.token = ""
	s.user = nil
	s.posts = []model.Post{}
	s.form = Form{}
	s.pane = PaneList
	s.view = ViewLogin
	s.err = ""
	return s.store.Clear()
}

// Refresh reloads the post list from the server.
func (s *Session) Refresh(ctx context.Context) error {
	if s.view != ViewDashboard {
		return nil
	}
	posts, err := s.api.ListPosts(ctx, s.token)
	if err != nil {
		return s.fail(err, MsgGenericFailure)
	}
	s.posts = posts
	return nil
}

// OpenCreate shows an empty post form.
func (s *Session) OpenCreate() {
	s.form = Form{}
	s.pane = PaneForm
	s.err = ""
}

// OpenEdit shows the form seeded with post id's current fields, tags
// joined by ", ".
func (s *Session) OpenEdit(id string) error {
	for _, p := range s.posts {
		if p.ID == id {
			s.form = Form{
				EditingID: p.ID,
				Title:     p.Title,
				Content:   p.Content,
				Tags:      model.JoinTags(p.Tags),
			}
			s.pane = PaneForm
			s.err = ""
			return nil
		}
	}
	return fmt.Errorf("session: no post %q in the current list", id)
}

// CloseForm returns to the list without sending anything.
func (s *Session) CloseForm() {
	s.form = Form{}
	s.pane = PaneList
	s.err = ""
}

// Submit sends the form: an update when editing, a create otherwise. On
// success the form closes and the list is reloaded from the server. On
// failure the form stays open with the user's input.
func (s *Session) Submit(ctx context.Context, title, content, tags string) error {
	if s.pane != PaneForm {
		return errors.New("session: no form is open")
	}
	s.err = ""
	s.form.Title, s.form.Content, s.form.Tags = title, content, tags

	in := PostInput{Title: title, Content: content, Tags: tags}
	var err error
	if s.form.Editing() {
		_, err = s.api.UpdatePost(ctx, s.token, s.form.EditingID, in)
	} else {
		_, err = s.api.CreatePost(ctx, s.token, in)
	}
	if err != nil {
		return s.fail(err, MsgGenericFailure)
	}

	s.form = Form{}
	s.pane = PaneList
	return s.Refresh(ctx)
}

// Delete removes post id after confirm returns true. It reports whether the
// delete was sent. A declined confirmation sends nothing.
func (s *Session) Delete(ctx context.Context, id string, confirm func() bool) (bool, error) {
	if confirm == nil || !confirm() {
		return false, nil
	}
	s.err = ""
	if err := s.api.DeletePost(ctx, s.token, id); err != nil {
		return true, s.fail(err, MsgGenericFailure)
	}
	return true, s.Refresh(ctx)
}

// fail records the message to show and returns err. A rejected token means
// the stored one is stale, so the session drops it and goes back to login.
func (s *Session) fail(err error, fallback string) error {
	s.err = fallback

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			s.err = apiErr.Message
		}
		if s.view == ViewDashboard && (apiErr.Code == "invalid_token" || apiErr.Code == "unauthenticated") {
			msg := s.err
			_ = s.Logout()
			s.err = msg
		}
	}
	return err
}
