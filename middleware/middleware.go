// Package middleware wraps target invocation of argline parsers.
// Provided middleware: Logger and Recovery.
package middleware

import (
	"fmt"
	"time"
)

// This package defines middleware using interfaces to avoid import cycles.
// The argline package imports this package and *argline.Context satisfies
// Context.

// Context describes what middleware can observe about an invocation. It is
// implemented by *argline.Context.
type Context interface {
	// Done returns a channel that is closed when the invocation's context
	// is canceled.
	Done() <-chan struct{}

	// Cancel requests cancellation of the invocation's context. It is
	// idempotent.
	Cancel()

	// Line returns the canonical command line of the resolved values.
	Line() string

	// Set stores a key/value pair in the context metadata. Keys should be
	// namespaced to avoid collisions (e.g., "logger.request_id").
	Set(key string, value any)

	// Get retrieves a value previously stored via Set, or nil.
	Get(key string) any

	// Command describes the parser whose target is being invoked.
	Command() Command
}

// Command is satisfied by *argline.Parser.
type Command interface {
	Name() string
	Description() string
}

// ActionFunc is the signature of a wrapped target.
type ActionFunc func(ctx Context) error

// Middleware defines the middleware function signature
type Middleware func(next ActionFunc) ActionFunc

// MiddlewareChain represents a chain of middleware functions
type MiddlewareChain []Middleware

// Apply applies the middleware chain to an ActionFunc. Middleware are wrapped
// in the order they appear in the chain.
func (chain MiddlewareChain) Apply(action ActionFunc) ActionFunc {
	for i := len(chain) - 1; i >= 0; i-- {
		action = chain[i](action)
	}
	return action
}

// Use returns a new chain with the provided middleware appended.
func (chain MiddlewareChain) Use(middleware ...Middleware) MiddlewareChain {
	out := make(MiddlewareChain, 0, len(chain)+len(middleware))
	out = append(out, chain...)
	return append(out, middleware...)
}

// Chain creates a new middleware chain from the provided middleware, preserving
// order.
func Chain(middleware ...Middleware) MiddlewareChain {
	return MiddlewareChain(middleware)
}

// RecoveryError represents a panic recovery
type RecoveryError struct {
	Panic   any
	Command string
	Stack   []byte
}

func (e *RecoveryError) Error() string {
	return "command '" + e.Command + "' panicked: " + toString(e.Panic)
}

// MiddlewareConfig contains configuration for middleware behavior
type MiddlewareConfig struct {
	LogLevel    LogLevel
	LogOutput   LogOutput
	LogFormat   LogFormat
	IncludeLine bool
	PrintStack  bool
	StackSize   int
}

// LogLevel represents logging levels
type LogLevel int

const (
	LogLevelNone LogLevel = iota
	LogLevelError
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// LogOutput represents log output destinations
type LogOutput int

const (
	LogOutputStderr LogOutput = iota
	LogOutputStdout
	LogOutputNone
)

// LogFormat represents log formats
type LogFormat int

const (
	LogFormatText LogFormat = iota
	LogFormatJSON
)

// RequestInfo contains information about one invocation
type RequestInfo struct {
	Command   string
	Line      string
	StartTime time.Time
	Duration  time.Duration
	Error     error
	Metadata  map[string]any
}

// MiddlewareOption changes a MiddlewareConfig.
type MiddlewareOption func(config *MiddlewareConfig)

// DefaultConfig returns the configuration used when no option is given.
func DefaultConfig() *MiddlewareConfig {
	return &MiddlewareConfig{
		LogLevel:    LogLevelInfo,
		LogOutput:   LogOutputStderr,
		LogFormat:   LogFormatText,
		IncludeLine: true,
		PrintStack:  true,
		StackSize:   4096,
	}
}

func WithLogLevel(level LogLevel) MiddlewareOption {
	return func(config *MiddlewareConfig) {
		config.LogLevel = level
	}
}

func WithLogFormat(format LogFormat) MiddlewareOption {
	return func(config *MiddlewareConfig) {
		config.LogFormat = format
	}
}

// WithLine controls whether the logged entry carries the command line.
func WithLine(enabled bool) MiddlewareOption {
	return func(config *MiddlewareConfig) {
		config.IncludeLine = enabled
	}
}

func WithStackTrace(enabled bool) MiddlewareOption {
	return func(config *MiddlewareConfig) {
		config.PrintStack = enabled
	}
}

func toString(v any) string {
	switch x := v.(type) {
	case nil:
		return "<nil>"
	case string:
		return x
	case error:
		return x.Error()
	default:
		return fmt.Sprint(x)
	}
}

func getCommandName(ctx Context) string {
	cmd := ctx.Command()
	if cmd == nil {
		return "unknown"
	}
	return cmd.Name()
}
