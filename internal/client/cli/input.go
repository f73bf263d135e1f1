package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"
)

// Test seams for the terminal. Tests replace them to avoid touching a tty.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// GetSimpleText prints prompt to w and reads one line from reader. The
// trailing newline is trimmed. A partial line before EOF is returned as is.
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetDefaultText is GetSimpleText with a current value shown in brackets.
// An empty answer keeps current.
func GetDefaultText(reader *bufio.Reader, prompt, current string, w io.Writer) (string, error) {
	if current != "" {
		prompt = fmt.Sprintf("%s [%s]", prompt, current)
	}
	v, err := GetSimpleText(reader, prompt, w)
	if err != nil {
		return "", err
	}
	if v == "" {
		return current, nil
	}
	return v, nil
}

// GetMultiline reads lines until an empty one and joins them with '\n'.
// An immediately empty answer returns current.
func GetMultiline(reader *bufio.Reader, prompt, current string, w io.Writer) (string, error) {
	hint := "(press Enter on an empty line to finish)"
	if current != "" {
		hint = "(empty line to finish, empty at once to keep the current text)"
	}
	if _, err := fmt.Fprintf(w, "%s %s\n", prompt, hint); err != nil {
		return "", err
	}

	var lines []string
	for {
		line, err := reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			if err != nil && !errors.Is(err, io.EOF) {
				return "", err
			}
			break
		}
		lines = append(lines, line)
		if err != nil {
			break
		}
	}

	if len(lines) == 0 {
		return current, nil
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

// GetPassword reads a password without echo when fd is a terminal, and as a
// plain line otherwise so piped input still works. A cancelled ctx abandons
// the terminal read.
func GetPassword(ctx context.Context, reader *bufio.Reader, fd int, w io.Writer) (string, error) {
	if !isTerminal(fd) {
		return GetSimpleText(reader, "Password", w)
	}

	if _, err := fmt.Fprint(w, "Password: "); err != nil {
		return "", err
	}

	type result struct {
		pw  []byte
		err error
	}
	read := readPassword
	ch := make(chan result, 1)
	go func() {
		pw, err := read(fd)
		ch <- result{pw, err}
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(w)
		return "", ctx.Err()
	case res := <-ch:
		fmt.Fprintln(w)
		if res.err != nil {
			return "", res.err
		}
		return string(res.pw), nil
	}
}

// Confirm asks a yes/no question. Anything but y or yes is a no.
func Confirm(reader *bufio.Reader, prompt string, w io.Writer) bool {
	answer, err := GetSimpleText(reader, prompt+" [y/N]", w)
	if err != nil {
		return false
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	}
	return false
}

// ctxReader makes a blocking reader give up when ctx is done, so a REPL
// waiting on stdin can still be interrupted.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}

	type result struct {
		n   int
		err error
	}
	buf := make([]byte, len(p))
	ch := make(chan result, 1)
	go func() {
		n, err := c.r.Read(buf)
		ch <- result{n, err}
	}()

	select {
	case <-c.ctx.Done():
		return 0, c.ctx.Err()
	case res := <-ch:
		copy(p, buf[:res.n])
		return res.n, res.err
	}
}
