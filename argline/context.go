package argline

import (
	"context"
	stdio "io"
	"time"

	arglineio "github.com/dzonerzy/go-argline/io"
	"github.com/dzonerzy/go-argline/middleware"
)

const exitKey = "__exit_error__"

// Context is handed to a target. It carries the Go context of the call, the
// parser that resolved the values and a small metadata map shared with
// middleware.
type Context struct {
	ctx      context.Context
	cancel   context.CancelFunc
	parser   *Parser
	metadata map[string]any
}

func newContext(parent context.Context, p *Parser) *Context {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Context{ctx: ctx, cancel: cancel, parser: p, metadata: make(map[string]any)}
}

// Context returns the underlying Go context for cancellation/timeouts
func (c *Context) Context() context.Context { return c.ctx }

// Deadline returns the time when work done on behalf of this context should be canceled
func (c *Context) Deadline() (time.Time, bool) { return c.ctx.Deadline() }

// Done returns a channel that's closed when work done on behalf of this context should be canceled
func (c *Context) Done() <-chan struct{} { return c.ctx.Done() }

// Err returns a non-nil error value after Done is closed
func (c *Context) Err() error { return c.ctx.Err() }

// Cancel cancels the context
func (c *Context) Cancel() {
	if c.cancel != nil {
		c.cancel()
	}
}

// Set stores a key-value pair in the context metadata
func (c *Context) Set(key string, value any) { c.metadata[key] = value }

// Get retrieves a value from the context metadata
func (c *Context) Get(key string) any { return c.metadata[key] }

// Exit stops the target with the given exit code. The code is picked up by
// ExitCodes().Resolve once the target returns.
func (c *Context) Exit(code int) {
	c.metadata[exitKey] = &ExitError{Code: code}
	c.Cancel()
}

// ExitWithError is Exit carrying the cause.
func (c *Context) ExitWithError(err error, code int) {
	c.metadata[exitKey] = &ExitError{Code: code, Err: err}
	c.Cancel()
}

// Parser returns the parser whose target runs.
func (c *Context) Parser() *Parser { return c.parser }

// Values returns the resolved values.
func (c *Context) Values() *Values { return c.parser.values }

// Line returns the canonical command line of the resolved values, flagged
// form, without program name.
func (c *Context) Line() string {
	line, err := c.parser.values.Command(false)
	if err != nil {
		return ""
	}
	return line
}

// Command implements middleware.Context.
func (c *Context) Command() middleware.Command { return c.parser }

// IO accessors
func (c *Context) IO() *arglineio.IOManager  { return c.parser.IO() }
func (c *Context) Logger() *arglineio.Logger { return c.parser.Logger() }
func (c *Context) Stdout() stdio.Writer      { return c.parser.IO().Out() }
func (c *Context) Stderr() stdio.Writer      { return c.parser.IO().Err() }
func (c *Context) Stdin() stdio.Reader       { return c.parser.IO().In() }

// Value accessors, see Values.

func (c *Context) Arg(name string) (any, bool)                { return c.parser.values.Get(name) }
func (c *Context) String(name string) (string, bool)          { return c.parser.values.String(name) }
func (c *Context) Int(name string) (int, bool)                { return c.parser.values.Int(name) }
func (c *Context) Float(name string) (float64, bool)          { return c.parser.values.Float(name) }
func (c *Context) Bool(name string) (bool, bool)              { return c.parser.values.Bool(name) }
func (c *Context) Time(name string) (time.Time, bool)         { return c.parser.values.Time(name) }
func (c *Context) Duration(name string) (time.Duration, bool) { return c.parser.values.Duration(name) }
func (c *Context) Strings(name string) ([]string, bool)       { return c.parser.values.Strings(name) }
func (c *Context) Ints(name string) ([]int, bool)             { return c.parser.values.Ints(name) }
func (c *Context) Floats(name string) ([]float64, bool)       { return c.parser.values.Floats(name) }
