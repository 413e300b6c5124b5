// Package prompt runs command lines read interactively until the input ends,
// the user quits or the context is cancelled.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dzonerzy/go-argline/argline"
	arglineio "github.com/dzonerzy/go-argline/io"
)

// ErrQuit ends the loop without an error when returned by a Runner.
var ErrQuit = errors.New("quit")

// Runner runs one command line. *argline.Parser is a Runner.
type Runner interface {
	Run(ctx context.Context, line string) error
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, line string) error

func (f RunnerFunc) Run(ctx context.Context, line string) error { return f(ctx, line) }

// Prompt reads lines from its IO manager and hands them to a Runner.
type Prompt struct {
	runner  Runner
	io      *arglineio.IOManager
	prompt  string
	quit    map[string]bool
	onError func(w io.Writer, err error)
	history []string
}

// New returns a prompt for r reading from stdin.
func New(r Runner) *Prompt {
	return &Prompt{
		runner:  r,
		io:      arglineio.New(),
		prompt:  "> ",
		quit:    map[string]bool{"exit": true, "quit": true},
		onError: argline.Report,
	}
}

// WithIO sets the input and output streams.
func (p *Prompt) WithIO(m *arglineio.IOManager) *Prompt { p.io = m; return p }

// WithPrompt sets the text printed before each line.
func (p *Prompt) WithPrompt(s string) *Prompt { p.prompt = s; return p }

// QuitWords replaces the lines that end the loop.
func (p *Prompt) QuitWords(words ...string) *Prompt {
	p.quit = make(map[string]bool, len(words))
	for _, w := range words {
		p.quit[w] = true
	}
	return p
}

// OnError sets how failed lines are reported. The loop continues after a
// failed line.
func (p *Prompt) OnError(fn func(w io.Writer, err error)) *Prompt { p.onError = fn; return p }

// History returns the lines run so far.
func (p *Prompt) History() []string { return append([]string(nil), p.history...) }

type readResult struct {
	line string
	err  error
}

// Loop reads and runs lines. It returns nil at end of input, on a quit word
// or when the runner returns ErrQuit, and ctx.Err() once ctx is done.
func (p *Prompt) Loop(ctx context.Context) error {
	lines := make(chan readResult)
	done := make(chan struct{})
	defer close(done)

	// the reader stays blocked in Read after cancellation until input arrives
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(p.io.In())
		for scanner.Scan() {
			select {
			case lines <- readResult{line: scanner.Text()}:
			case <-done:
				return
			}
		}
		if err := scanner.Err(); err != nil {
			select {
			case lines <- readResult{err: err}:
			case <-done:
			}
		}
	}()

	for {
		fmt.Fprint(p.io.Out(), p.io.Bold(p.prompt))

		var res readResult
		var ok bool
		select {
		case <-ctx.Done():
			fmt.Fprintln(p.io.Out())
			return ctx.Err()
		case res, ok = <-lines:
		}
		if !ok {
			fmt.Fprintln(p.io.Out())
			return nil
		}
		if res.err != nil {
			return res.err
		}

		line := strings.TrimSpace(strings.TrimSuffix(res.line, "\r"))
		if line == "" {
			continue
		}
		if p.quit[line] {
			return nil
		}
		p.history = append(p.history, line)

		err := p.runner.Run(ctx, line)
		switch {
		case err == nil:
		case errors.Is(err, ErrQuit):
			return nil
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			if p.onError != nil {
				p.onError(p.io.Err(), err)
			}
		}
	}
}
