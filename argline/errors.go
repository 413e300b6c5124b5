package argline

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dzonerzy/go-argline/internal/quote"
)

// ErrorType represents error categories produced while declaring, parsing or
// invoking. Categories drive exit-code mapping (via ExitCodeManager).
type ErrorType string

const (
	ErrorTypeConfig             ErrorType = "config"
	ErrorTypeTokenize           ErrorType = "tokenize"
	ErrorTypeMissingArgument    ErrorType = "missing_argument"
	ErrorTypeMissingValue       ErrorType = "missing_value"
	ErrorTypeTooManyPositional  ErrorType = "too_many_positional"
	ErrorTypeWrongCount         ErrorType = "wrong_count"
	ErrorTypeUnexpectedToken    ErrorType = "unexpected_token"
	ErrorTypeUnknownArgument    ErrorType = "unknown_argument"
	ErrorTypeValidation         ErrorType = "validation"
	ErrorTypeNoTarget           ErrorType = "no_target"
	ErrorTypeGUIUnavailable     ErrorType = "gui_unavailable"
	ErrorTypeInternal           ErrorType = "internal_error"
)

// Sentinels for errors.Is. Every ParseError unwraps to the sentinel of its
// type.
var (
	ErrConfig            = errors.New("invalid argument declaration")
	ErrMissingArgument   = errors.New("missing argument")
	ErrMissingValue      = errors.New("missing value")
	ErrTooManyPositional = errors.New("too many positional arguments")
	ErrWrongCount        = errors.New("wrong number of values")
	ErrUnexpectedToken   = errors.New("unexpected token")
	ErrUnknownArgument   = errors.New("unknown argument")
	ErrNoTarget          = errors.New("no target bound")
	ErrGUIUnavailable    = errors.New("no gui available")

	// ErrUnbalancedQuote is matched by every TokenizeError.
	ErrUnbalancedQuote = quote.ErrUnbalancedQuote
)

// TokenizeError reports an unmatched quote in a command line.
type TokenizeError = quote.UnbalancedQuoteError

var sentinels = map[ErrorType]error{
	ErrorTypeMissingArgument:   ErrMissingArgument,
	ErrorTypeMissingValue:      ErrMissingValue,
	ErrorTypeTooManyPositional: ErrTooManyPositional,
	ErrorTypeWrongCount:        ErrWrongCount,
	ErrorTypeUnexpectedToken:   ErrUnexpectedToken,
	ErrorTypeUnknownArgument:   ErrUnknownArgument,
	ErrorTypeNoTarget:          ErrNoTarget,
	ErrorTypeGUIUnavailable:    ErrGUIUnavailable,
}

// ConfigError is raised while building a schema or a command tree. A schema
// that failed to build is never returned.
type ConfigError struct {
	Schema   string
	Argument string
	Message  string
	Cause    error
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("config error")
	if e.Schema != "" {
		b.WriteString(" in '" + e.Schema + "'")
	}
	if e.Argument != "" {
		b.WriteString(" for argument '" + e.Argument + "'")
	}
	b.WriteString(": " + e.Message)
	if e.Cause != nil {
		b.WriteString(": " + e.Cause.Error())
	}
	return b.String()
}

func (e *ConfigError) Unwrap() error { return e.Cause }

// Is reports ErrConfig for any ConfigError.
func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

func configErrorf(schema, arg, format string, args ...any) *ConfigError {
	return &ConfigError{Schema: schema, Argument: arg, Message: fmt.Sprintf(format, args...)}
}

// ParseError covers missing arguments, surplus positional tokens, wrong
// value counts and routing failures.
type ParseError struct {
	Type       ErrorType
	Argument   string
	Value      string
	Message    string
	Suggestion string
}

func (e *ParseError) Error() string {
	return e.Message
}

func (e *ParseError) Unwrap() error { return sentinels[e.Type] }

// NewParseError creates a new ParseError with the given type and message
func NewParseError(errType ErrorType, message string) *ParseError {
	return &ParseError{Type: errType, Message: message}
}

func (e *ParseError) forArgument(name string) *ParseError {
	e.Argument = name
	return e
}

func (e *ParseError) withValue(v string) *ParseError {
	e.Value = v
	return e
}

func (e *ParseError) withSuggestion(s string) *ParseError {
	e.Suggestion = s
	return e
}

// ValidationError reports a value that failed its type cast or validator.
type ValidationError struct {
	Argument string
	Value    any
	Reason   string
	Cause    error
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid value %s for argument '%s'", formatValue(e.Value), e.Argument)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *ValidationError) Unwrap() error { return e.Cause }

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return fmt.Sprintf("%q", x)
	case nil:
		return "<nil>"
	default:
		return fmt.Sprintf("%v", x)
	}
}

// Classify returns the category of err, or "" for nil.
func Classify(err error) ErrorType {
	if err == nil {
		return ""
	}
	// a ConfigError may wrap the ValidationError of a bad default
	if errors.Is(err, ErrConfig) {
		return ErrorTypeConfig
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Type
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ErrorTypeValidation
	}
	var te *TokenizeError
	if errors.As(err, &te) {
		return ErrorTypeTokenize
	}
	return ErrorTypeInternal
}

// Report writes err for a user, followed by a suggestion when one is known.
func Report(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(w, "Error: %s\n", err.Error())
	var pe *ParseError
	if errors.As(err, &pe) && pe.Suggestion != "" {
		fmt.Fprintf(w, "  Did you mean '%s'?\n", pe.Suggestion)
	}
}
