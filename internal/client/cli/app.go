// Package cli is an interactive terminal front end for the blog API. It
// renders the client.Session views and turns typed commands into session
// actions.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/sakif/blog-api/internal/client"
	"github.com/sakif/blog-api/internal/model"
)

// App drives a Session from line-oriented input.
type App struct {
	session *client.Session
	in      io.Reader
	reader  *bufio.Reader
	out     io.Writer
	fd      int
	logger  *slog.Logger
}

// NewApp creates an App reading from in and writing to out. fd is the file
// descriptor used for hidden password input when it is a terminal.
func NewApp(session *client.Session, in io.Reader, out io.Writer, fd int, logger *slog.Logger) *App {
	return &App{
		session: session,
		in:      in,
		reader:  bufio.NewReader(in),
		out:     out,
		fd:      fd,
		logger:  logger,
	}
}

// Run loops until the input ends, the user exits, or ctx is cancelled. A
// cancelled ctx interrupts any pending read and Run returns ctx.Err().
func (a *App) Run(ctx context.Context) error {
	a.reader = bufio.NewReader(&ctxReader{ctx: ctx, r: a.in})

	if a.session.View() == client.ViewDashboard {
		if err := a.session.Resume(ctx); err != nil {
			a.showErr()
		} else {
			a.welcome()
		}
	}
	a.printHelp()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprintf(a.out, "blog [%s]> ", a.session.View())
		line, err := a.reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return err
		}
		eof := err != nil

		fields := strings.Fields(line)
		if len(fields) > 0 {
			if quit := a.dispatch(ctx, fields[0], fields[1:]); quit {
				fmt.Fprintln(a.out, "Bye!")
				return nil
			}
		}
		if eof {
			fmt.Fprintln(a.out)
			return nil
		}
	}
}

// dispatch runs one command and reports whether the user asked to quit.
func (a *App) dispatch(ctx context.Context, cmd string, args []string) bool {
	switch cmd {
	case "exit", "quit":
		return true
	case "help", "?":
		a.printHelp()
		return false
	}

	switch a.session.View() {
	case client.ViewLogin, client.ViewRegister:
		a.authCommand(ctx, cmd)
	case client.ViewDashboard:
		a.dashboardCommand(ctx, cmd, args)
	}
	return false
}

func (a *App) authCommand(ctx context.Context, cmd string) {
	switch cmd {
	case "login":
		a.session.ShowLogin()
		a.login(ctx)
	case "register":
		a.session.ShowRegister()
		a.register(ctx)
	case "back":
		a.session.ShowLogin()
	default:
		fmt.Fprintln(a.out, "Unknown command:", cmd)
	}
}

func (a *App) dashboardCommand(ctx context.Context, cmd string, args []string) {
	switch cmd {
	case "l", "list":
		a.printPosts()
	case "refresh":
		if err := a.session.Refresh(ctx); err != nil {
			a.showErr()
			return
		}
		a.printPosts()
	case "new":
		a.session.OpenCreate()
		a.fillForm(ctx)
	case "edit":
		post, ok := a.pick(args)
		if !ok {
			return
		}
		if err := a.session.OpenEdit(post.ID); err != nil {
			fmt.Fprintln(a.out, err)
			return
		}
		a.fillForm(ctx)
	case "delete", "rm":
		a.delete(ctx, args)
	case "whoami":
		if u := a.session.User(); u != nil {
			fmt.Fprintf(a.out, "%s <%s>\n", u.Name, u.Email)
		}
	case "logout":
		if err := a.session.Logout(); err != nil {
			a.logger.Warn("clearing saved token", slog.String("error", err.Error()))
		}
		fmt.Fprintln(a.out, "Logged out.")
	default:
		fmt.Fprintln(a.out, "Unknown command:", cmd)
	}
}

func (a *App) login(ctx context.Context) {
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return
	}
	password, err := GetPassword(ctx, a.reader, a.fd, a.out)
	if err != nil {
		return
	}

	if err := a.session.Login(ctx, email, password); err != nil {
		a.showErr()
		return
	}
	a.welcome()
}

func (a *App) register(ctx context.Context) {
	name, err := GetSimpleText(a.reader, "Name", a.out)
	if err != nil {
		return
	}
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return
	}
	password, err := GetPassword(ctx, a.reader, a.fd, a.out)
	if err != nil {
		return
	}

	if err := a.session.Register(ctx, name, email, password); err != nil {
		a.showErr()
		return
	}
	a.welcome()
}

func (a *App) welcome() {
	if u := a.session.User(); u != nil {
		fmt.Fprintf(a.out, "Welcome, %s.\n", u.Name)
	}
	a.printPosts()
}

// fillForm prompts for each field of the open form and submits it. A failed
// submit keeps the form open and offers another try.
func (a *App) fillForm(ctx context.Context) {
	for a.session.Pane() == client.PaneForm {
		f := a.session.Form()
		if f.Editing() {
			fmt.Fprintln(a.out, "Edit post (Enter keeps the current value)")
		} else {
			fmt.Fprintln(a.out, "New post")
		}

		title, err := GetDefaultText(a.reader, "Title", f.Title, a.out)
		if err != nil {
			a.session.CloseForm()
			return
		}
		content, err := GetMultiline(a.reader, "Content", f.Content, a.out)
		if err != nil {
			a.session.CloseForm()
			return
		}
		tags, err := GetDefaultText(a.reader, "Tags (comma separated)", f.Tags, a.out)
		if err != nil {
			a.session.CloseForm()
			return
		}

		if err := a.session.Submit(ctx, title, content, tags); err != nil {
			a.showErr()
			if a.session.View() != client.ViewDashboard {
				return
			}
			if !Confirm(a.reader, "Try again?", a.out) {
				a.session.CloseForm()
				return
			}
			continue
		}
		a.printPosts()
	}
}

func (a *App) delete(ctx context.Context, args []string) {
	post, ok := a.pick(args)
	if !ok {
		return
	}

	confirm := func() bool {
		return Confirm(a.reader, fmt.Sprintf("Delete %q?", post.Title), a.out)
	}
	sent, err := a.session.Delete(ctx, post.ID, confirm)
	if err != nil {
		a.showErr()
		return
	}
	if sent {
		fmt.Fprintln(a.out, "Post removed")
		a.printPosts()
	}
}

// pick resolves a 1-based list position or a post ID.
func (a *App) pick(args []string) (model.Post, bool) {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: <command> <number>")
		return model.Post{}, false
	}

	posts := a.session.Posts()
	if n, err := strconv.Atoi(args[0]); err == nil {
		if n < 1 || n > len(posts) {
			fmt.Fprintf(a.out, "No post number %d.\n", n)
			return model.Post{}, false
		}
		return posts[n-1], true
	}
	for _, p := range posts {
		if p.ID == args[0] {
			return p, true
		}
	}
	fmt.Fprintf(a.out, "No post %q.\n", args[0])
	return model.Post{}, false
}

func (a *App) showErr() {
	if msg := a.session.Err(); msg != "" {
		fmt.Fprintln(a.out, "Error:", msg)
	}
}

func (a *App) printPosts() {
	posts := a.session.Posts()
	if len(posts) == 0 {
		fmt.Fprintln(a.out, "No posts yet. Type 'new' to write one.")
		return
	}
	for i, p := range posts {
		fmt.Fprintf(a.out, "%d. %s  (%s)\n", i+1, p.Title, p.CreatedAt.Local().Format("2006-01-02 15:04"))
		for _, line := range strings.Split(p.Content, "\n") {
			fmt.Fprintf(a.out, "   %s\n", line)
		}
		if len(p.Tags) > 0 {
			fmt.Fprintf(a.out, "   tags: %s\n", model.JoinTags(p.Tags))
		}
	}
}

func (a *App) printHelp() {
	switch a.session.View() {
	case client.ViewLogin:
		fmt.Fprintln(a.out, "Commands: login, register, exit")
	case client.ViewRegister:
		fmt.Fprintln(a.out, "Commands: register, back, exit")
	case client.ViewDashboard:
		fmt.Fprintln(a.out, "Commands: (l)ist, refresh, new, edit <n>, delete <n>, whoami, logout, exit")
	}
}
