package argline

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/dzonerzy/go-argline/internal/quote"
)

// Arity is the number of tokens an argument consumes.
type Arity struct {
	many  bool
	fixed bool
	n     int
}

var (
	// Single consumes exactly one token.
	Single = Arity{}
	// Many consumes every token up to the next flag.
	Many = Arity{many: true}
)

// Count consumes exactly n tokens.
func Count(n int) Arity { return Arity{many: true, fixed: true, n: n} }

// IsMany reports whether values are slices.
func (a Arity) IsMany() bool { return a.many }

// Unbounded reports whether the arity is Many.
func (a Arity) Unbounded() bool { return a.many && !a.fixed }

// Exact returns n for Count(n).
func (a Arity) Exact() (int, bool) { return a.n, a.fixed }

// width is the token count of a bounded arity, -1 when unbounded.
func (a Arity) width() int {
	switch {
	case !a.many:
		return 1
	case a.fixed:
		return a.n
	default:
		return -1
	}
}

func (a Arity) String() string {
	switch {
	case !a.many:
		return "1"
	case a.fixed:
		return strconv.Itoa(a.n)
	default:
		return "*"
	}
}

// Validator checks a decoded value. For many-valued arguments it receives
// the whole slice.
type Validator func(v any) error

// Check adapts a typed check to a Validator.
func Check[T any](fn func(T) error) Validator {
	return func(v any) error {
		t, ok := v.(T)
		if !ok {
			var zero T
			return fmt.Errorf("expected %T, got %T", zero, v)
		}
		return fn(t)
	}
}

// Argument describes one declared option. Arguments are immutable once the
// owning Schema is built and may be shared by any number of parsers.
type Argument struct {
	name      string
	typ       Type
	arity     Arity
	def       any
	hasDef    bool
	validator Validator
	help      string
	constVal  any
	hasConst  bool

	// declaration requests, checked while building
	wantPositional bool
	wantSwitch     bool
	flaggedOnly    bool

	// set while building
	long       string
	short      string
	positional bool
	isSwitch   bool
}

// Name returns the argument name.
func (a *Argument) Name() string { return a.name }

// Type returns the value type.
func (a *Argument) Type() Type { return a.typ }

// Arity returns the token count.
func (a *Argument) Arity() Arity { return a.arity }

// Default returns the default value and whether one was declared. A
// declared default makes the argument optional; it may be nil.
func (a *Argument) Default() (any, bool) { return a.def, a.hasDef }

// Required reports whether the argument has no default.
func (a *Argument) Required() bool { return !a.hasDef }

// Const returns the value used when the flag is given without tokens.
func (a *Argument) Const() (any, bool) { return a.constVal, a.hasConst }

// Help returns the help text.
func (a *Argument) Help() string { return a.help }

// Long returns the long flag, e.g. "--name".
func (a *Argument) Long() string { return a.long }

// Short returns the short flag, e.g. "-n", or "" when none was assigned.
func (a *Argument) Short() string { return a.short }

// Flags returns the long flag followed by the short flag, if any.
func (a *Argument) Flags() []string {
	if a.short == "" {
		return []string{a.long}
	}
	return []string{a.long, a.short}
}

// Positional reports whether the argument may be given without a flag.
func (a *Argument) Positional() bool { return a.positional }

// IsSwitch reports whether the argument is a boolean switch.
func (a *Argument) IsSwitch() bool { return a.isSwitch }

// TypeName is the type label used by help output: "int", "[int]" for Many
// and "[int]x3" for Count(3).
func (a *Argument) TypeName() string {
	name := a.typ.Name()
	switch {
	case !a.arity.many:
		return name
	case a.arity.fixed:
		return "[" + name + "]x" + strconv.Itoa(a.arity.n)
	default:
		return "[" + name + "]"
	}
}

// valueType is the Go type of a stored value.
func (a *Argument) valueType() reflect.Type {
	if a.arity.many {
		return reflect.SliceOf(a.typ.GoType())
	}
	return a.typ.GoType()
}

func (a *Argument) flag(short bool) string {
	if short && a.short != "" {
		return a.short
	}
	return a.long
}

// Encode renders v as tokens: one for single values, one per element for
// many. A nil value encodes to no tokens.
func (a *Argument) Encode(v any) ([]string, error) {
	if v == nil {
		return nil, nil
	}
	if !a.arity.many {
		s, err := a.typ.Encode(v)
		if err != nil {
			return nil, &ValidationError{Argument: a.name, Value: v, Reason: err.Error(), Cause: err}
		}
		return []string{s}, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, &ValidationError{Argument: a.name, Value: v, Reason: "expected a list of values"}
	}
	out := make([]string, rv.Len())
	for i := range out {
		s, err := a.typ.Encode(rv.Index(i).Interface())
		if err != nil {
			return nil, &ValidationError{Argument: a.name, Value: v, Reason: err.Error(), Cause: err}
		}
		out[i] = s
	}
	return out, nil
}

// EncodeString renders v as a single string; many values are joined with
// the default tokenizer.
func (a *Argument) EncodeString(v any) (string, error) {
	tokens, err := a.Encode(v)
	if err != nil || tokens == nil {
		return "", err
	}
	if !a.arity.many {
		return tokens[0], nil
	}
	return quote.Join(tokens), nil
}

// Decode converts a string into a value. Many-valued arguments split s
// with the default tokenizer first. For non-string types "" decodes to the
// default, or nil without one.
func (a *Argument) Decode(s string) (any, error) {
	if a.arity.many {
		tokens, err := quote.Split(s)
		if err != nil {
			return nil, err
		}
		return a.DecodeTokens(tokens)
	}
	if s == "" && a.typ.GoType().Kind() != reflect.String {
		if a.hasDef {
			return a.def, nil
		}
		return nil, nil
	}
	v, err := a.typ.Decode(s)
	if err != nil {
		return nil, &ValidationError{Argument: a.name, Value: s, Reason: err.Error(), Cause: err}
	}
	return v, nil
}

// DecodeTokens converts the tokens collected for the argument. Single
// arguments take exactly one token.
func (a *Argument) DecodeTokens(tokens []string) (any, error) {
	if !a.arity.many {
		if len(tokens) != 1 {
			return nil, a.wrongCount(tokens)
		}
		return a.Decode(tokens[0])
	}
	out := reflect.MakeSlice(a.valueType(), len(tokens), len(tokens))
	for i, tok := range tokens {
		v, err := a.typ.Decode(tok)
		if err != nil {
			return nil, &ValidationError{Argument: a.name, Value: tok, Reason: err.Error(), Cause: err}
		}
		out.Index(i).Set(reflect.ValueOf(v))
	}
	return out.Interface(), nil
}

// Validate casts v to the argument's type (element-wise for many) and runs
// the validator. Strings are decoded. A value equal to the default is
// returned as the default without another cast. Nil is accepted as "no
// value".
func (a *Argument) Validate(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if a.hasDef && sameValue(v, a.def) {
		return a.def, nil
	}
	cast, err := a.cast(v)
	if err != nil || cast == nil {
		return nil, err
	}
	if n, ok := a.arity.Exact(); ok {
		if got := reflect.ValueOf(cast).Len(); got != n {
			return nil, &ValidationError{
				Argument: a.name,
				Value:    v,
				Reason:   fmt.Sprintf("expected %d values, got %d", n, got),
				Cause:    ErrWrongCount,
			}
		}
	}
	if a.validator != nil {
		if err := a.validator(cast); err != nil {
			return nil, &ValidationError{Argument: a.name, Value: v, Reason: err.Error(), Cause: err}
		}
	}
	return cast, nil
}

func (a *Argument) cast(v any) (any, error) {
	if s, ok := v.(string); ok {
		return a.Decode(s)
	}
	if !a.arity.many {
		cast, err := a.typ.Cast(v)
		if err != nil {
			return nil, &ValidationError{Argument: a.name, Value: v, Reason: err.Error(), Cause: err}
		}
		return cast, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, &ValidationError{Argument: a.name, Value: v, Reason: "expected a list of values"}
	}
	out := reflect.MakeSlice(a.valueType(), rv.Len(), rv.Len())
	for i := 0; i < rv.Len(); i++ {
		elem, err := a.typ.Cast(rv.Index(i).Interface())
		if err != nil {
			return nil, &ValidationError{Argument: a.name, Value: v, Reason: err.Error(), Cause: err}
		}
		out.Index(i).Set(reflect.ValueOf(elem))
	}
	return out.Interface(), nil
}

// RawState tells how a command line supplied an argument.
type RawState int

const (
	// RawAbsent: neither a flag nor a position supplied the argument.
	RawAbsent RawState = iota
	// RawFlagged: the flag was given without tokens.
	RawFlagged
	// RawTokens: tokens were collected by flag or position.
	RawTokens
)

// Raw is the still-encoded input collected for one argument.
type Raw struct {
	State  RawState
	Tokens []string
}

// ParseTokens resolves raw input into a value: the default when absent,
// the switch or const value for a bare flag, otherwise decode and validate.
func (a *Argument) ParseTokens(raw Raw) (any, error) {
	switch raw.State {
	case RawAbsent:
		if a.hasDef {
			return a.def, nil
		}
		return nil, NewParseError(ErrorTypeMissingArgument,
			fmt.Sprintf("missing value for '%s'", a.name)).forArgument(a.name)

	case RawFlagged:
		switch {
		case a.isSwitch:
			return true, nil
		case a.hasConst:
			return a.constVal, nil
		case a.arity.Unbounded():
			return a.Validate(reflect.MakeSlice(a.valueType(), 0, 0).Interface())
		case a.arity.fixed:
			return nil, a.wrongCount(nil)
		}
		return nil, NewParseError(ErrorTypeMissingValue,
			fmt.Sprintf("flag %s for argument '%s' expects a value", a.long, a.name)).forArgument(a.name)
	}

	if a.isSwitch {
		return nil, NewParseError(ErrorTypeUnexpectedToken,
			fmt.Sprintf("switch %s takes no value, got %q", a.long, raw.Tokens[0])).
			forArgument(a.name).withValue(raw.Tokens[0])
	}
	if w := a.arity.width(); w >= 0 && len(raw.Tokens) != w {
		return nil, a.wrongCount(raw.Tokens)
	}
	decoded, err := a.DecodeTokens(raw.Tokens)
	if err != nil {
		return nil, err
	}
	if decoded == nil {
		// "" for a non-string type without default
		return nil, NewParseError(ErrorTypeMissingValue,
			fmt.Sprintf("empty value for '%s'", a.name)).forArgument(a.name)
	}
	return a.Validate(decoded)
}

func (a *Argument) wrongCount(tokens []string) *ParseError {
	want := "1 value"
	if n, ok := a.arity.Exact(); ok {
		want = strconv.Itoa(n) + " values"
	}
	return NewParseError(ErrorTypeWrongCount,
		fmt.Sprintf("argument '%s' expects %s, got %d: %q", a.name, want, len(tokens), tokens)).
		forArgument(a.name).withValue(quote.Join(tokens))
}

// Cmd renders the argument's share of a command line: nothing for nil or
// default values, a bare flag for switches and const values, otherwise the
// flag followed by the encoded tokens. In short form a positional argument
// renders its tokens without flag.
func (a *Argument) Cmd(v any, short bool) ([]string, error) {
	if v == nil || (a.hasDef && sameValue(v, a.def)) {
		return nil, nil
	}
	if short && a.positional {
		return a.Encode(v)
	}
	return a.cmdFlagged(v, short)
}

func (a *Argument) cmdFlagged(v any, short bool) ([]string, error) {
	flag := a.flag(short)
	if a.isSwitch {
		if b, ok := v.(bool); ok && b {
			return []string{flag}, nil
		}
		return nil, nil
	}
	if a.hasConst && sameValue(v, a.constVal) {
		return []string{flag}, nil
	}
	tokens, err := a.Encode(v)
	if err != nil {
		return nil, err
	}
	return append([]string{flag}, tokens...), nil
}

var errBadDefault = errors.New("default does not validate")

// sameValue compares decoded values; times compare by instant.
func sameValue(x, y any) bool {
	if tx, ok := x.(time.Time); ok {
		ty, ok := y.(time.Time)
		return ok && tx.Equal(ty)
	}
	rx, ry := reflect.ValueOf(x), reflect.ValueOf(y)
	if rx.IsValid() && ry.IsValid() && rx.Kind() == reflect.Slice && ry.Kind() == reflect.Slice &&
		rx.Type() == ry.Type() {
		if rx.Len() != ry.Len() {
			return false
		}
		for i := 0; i < rx.Len(); i++ {
			if !sameValue(rx.Index(i).Interface(), ry.Index(i).Interface()) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(x, y)
}
