// Package main is the interactive terminal client for the blog API.
//
// Usage:
//
//	blog-client [-api http://localhost:5000/api] [-token-file path]
//
// The session token is kept in the token file between runs, so a client
// started with a valid token opens straight on the dashboard.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/sakif/blog-api/internal/client"
	"github.com/sakif/blog-api/internal/client/cli"
	"github.com/sakif/blog-api/internal/config"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	cfg, err := config.LoadClient(os.Args[1:])
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	api := client.NewClient(cfg.APIURL, nil)
	session, err := client.NewSession(api, client.NewFileTokenStore(cfg.TokenFile))
	if err != nil {
		logger.Error("failed to restore session", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Ctrl-C cancels ctx, which interrupts whatever prompt is waiting.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		// An interrupted password prompt leaves echo off; put it back.
		if state, err := term.GetState(fd); err == nil {
			defer term.Restore(fd, state)
		}
	}

	app := cli.NewApp(session, os.Stdin, os.Stdout, fd, logger)
	if err := app.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("client error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if ctx.Err() != nil {
		fmt.Fprintln(os.Stdout)
	}
}
