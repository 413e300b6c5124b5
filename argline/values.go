package argline

import (
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/dzonerzy/go-argline/internal/quote"
)

// Values holds the current values of one parser instance. Unset arguments
// fall back to the layered defaults of the parser's sources, then to the
// declared default.
type Values struct {
	schema   *Schema
	set      map[string]any
	layer    map[string]any
	tok      quote.Tokenizer
	reserved func(tok string) bool
}

// NewValues returns an empty store for schema.
func NewValues(schema *Schema) *Values {
	return &Values{
		schema: schema,
		set:    make(map[string]any),
		tok:    quote.New(quote.DefaultQuote),
	}
}

// Schema returns the schema the store belongs to.
func (v *Values) Schema() *Schema { return v.schema }

// Get returns the current value of name and whether it has one.
func (v *Values) Get(name string) (any, bool) {
	if val, ok := v.set[name]; ok {
		return val, true
	}
	return v.fallback(name)
}

func (v *Values) fallback(name string) (any, bool) {
	if val, ok := v.layer[name]; ok {
		return val, true
	}
	if a, ok := v.schema.Argument(name); ok && a.hasDef {
		return a.def, true
	}
	return nil, false
}

// Has reports whether name was set explicitly.
func (v *Values) Has(name string) bool {
	_, ok := v.set[name]
	return ok
}

// Update validates every entry, then stores them all. Nothing is stored
// when any entry fails. Strings are decoded with the argument's type, for
// many-valued arguments after splitting with the parser's tokenizer. A nil
// value deletes the entry.
func (v *Values) Update(entries map[string]any) error {
	validated := make(map[string]any, len(entries))
	// sorted so the reported error does not depend on map order
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		val, err := v.validate(name, entries[name])
		if err != nil {
			return err
		}
		validated[name] = val
	}
	for name, val := range validated {
		if val == nil {
			delete(v.set, name)
			continue
		}
		v.set[name] = val
	}
	return nil
}

// Set is Update with a single entry.
func (v *Values) Set(name string, value any) error {
	return v.Update(map[string]any{name: value})
}

func (v *Values) validate(name string, value any) (any, error) {
	a, ok := v.schema.Argument(name)
	if !ok {
		return nil, v.unknown(name)
	}
	if value == nil {
		return nil, nil
	}
	if s, isString := value.(string); isString && a.arity.many {
		tokens, err := v.tok.Split(s)
		if err != nil {
			return nil, err
		}
		value = tokens
	}
	if tokens, isTokens := value.([]string); isTokens && a.arity.many && a.typ.GoType().Kind() != reflect.String {
		decoded, err := a.DecodeTokens(tokens)
		if err != nil {
			return nil, err
		}
		value = decoded
	}
	return a.Validate(value)
}

func (v *Values) unknown(name string) *ParseError {
	names := make([]string, 0, v.schema.Len())
	for _, a := range v.schema.Arguments() {
		names = append(names, a.name)
	}
	err := NewParseError(ErrorTypeUnknownArgument,
		fmt.Sprintf("unknown argument '%s' for '%s'", name, v.schema.name)).forArgument(name)
	if hint := suggestName(name, names); hint != "" {
		err = err.withSuggestion(hint)
	}
	return err
}

// Delete reverts name to its default.
func (v *Values) Delete(name string) error {
	if _, ok := v.schema.Argument(name); !ok {
		return v.unknown(name)
	}
	delete(v.set, name)
	return nil
}

// Reset removes every explicit value.
func (v *Values) Reset() {
	v.set = make(map[string]any)
}

// replace swaps the explicit values for a fully validated parse result.
func (v *Values) replace(set map[string]any) {
	v.set = set
}

// Map returns the effective value of every argument that has one.
func (v *Values) Map() map[string]any {
	out := make(map[string]any, v.schema.Len())
	for _, a := range v.schema.Arguments() {
		if val, ok := v.Get(a.name); ok {
			out[a.name] = val
		}
	}
	return out
}

// Missing returns the required arguments without a value, in declaration
// order.
func (v *Values) Missing() []string {
	var out []string
	for _, a := range v.schema.Arguments() {
		if _, ok := v.Get(a.name); !ok {
			out = append(out, a.name)
		}
	}
	return out
}

// Equal reports whether both stores hold the same effective values.
func (v *Values) Equal(other *Values) bool {
	mine, theirs := v.Map(), other.Map()
	if len(mine) != len(theirs) {
		return false
	}
	for name, val := range mine {
		o, ok := theirs[name]
		if !ok || !sameValue(val, o) {
			return false
		}
	}
	return true
}

// Tokens renders the canonical command line as tokens. Values equal to
// their default are left out. In short form short flags are used and the
// positional arguments are written bare, provided all of them hold a value
// that reads back unambiguously; otherwise every argument is flagged.
func (v *Values) Tokens(short bool) ([]string, error) {
	var out []string
	bare := short && v.barePositionals()
	for _, a := range v.schema.Arguments() {
		val, ok := v.Get(a.name)
		if !ok || val == nil {
			continue
		}
		if bare && a.positional {
			tokens, err := a.Encode(val)
			if err != nil {
				return nil, err
			}
			out = append(out, tokens...)
			continue
		}
		if def, ok := v.fallback(a.name); ok && sameValue(val, def) {
			continue
		}
		tokens, err := a.cmdFlagged(val, short)
		if err != nil {
			return nil, err
		}
		out = append(out, tokens...)
	}
	return out, nil
}

// barePositionals reports whether every positional argument can be written
// without its flag: each must have a value, unbounded ones at least one
// element, and no token may be mistaken for a flag or a sub-command.
func (v *Values) barePositionals() bool {
	positionals := v.schema.Positionals()
	if len(positionals) == 0 {
		return false
	}
	first := true
	for _, a := range positionals {
		val, ok := v.Get(a.name)
		if !ok || val == nil {
			return false
		}
		tokens, err := a.Encode(val)
		if err != nil || (a.arity.Unbounded() && len(tokens) == 0) {
			return false
		}
		for _, tok := range tokens {
			if v.schema.IsFlag(tok) || !v.tok.Representable(tok) {
				return false
			}
			if first && (tok == HelpFlag || tok == HelpShort || tok == GUIFlag ||
				(v.reserved != nil && v.reserved(tok))) {
				return false
			}
			first = false
		}
	}
	return true
}

// Command renders the canonical command line.
func (v *Values) Command(short bool) (string, error) {
	tokens, err := v.Tokens(short)
	if err != nil {
		return "", err
	}
	return v.tok.Join(tokens), nil
}

// String returns the value of a string argument.
func (v *Values) String(name string) (string, bool) { return typed[string](v, name) }

// Int returns the value of an int argument.
func (v *Values) Int(name string) (int, bool) { return typed[int](v, name) }

// Float returns the value of a float argument.
func (v *Values) Float(name string) (float64, bool) { return typed[float64](v, name) }

// Bool returns the value of a bool argument.
func (v *Values) Bool(name string) (bool, bool) { return typed[bool](v, name) }

// Time returns the value of a date, datetime or time argument.
func (v *Values) Time(name string) (time.Time, bool) { return typed[time.Time](v, name) }

// Duration returns the value of a duration argument.
func (v *Values) Duration(name string) (time.Duration, bool) { return typed[time.Duration](v, name) }

// Strings returns the value of a many-valued string argument.
func (v *Values) Strings(name string) ([]string, bool) { return typed[[]string](v, name) }

// Ints returns the value of a many-valued int argument.
func (v *Values) Ints(name string) ([]int, bool) { return typed[[]int](v, name) }

// Floats returns the value of a many-valued float argument.
func (v *Values) Floats(name string) ([]float64, bool) { return typed[[]float64](v, name) }

func typed[T any](v *Values, name string) (T, bool) {
	var zero T
	val, ok := v.Get(name)
	if !ok {
		return zero, false
	}
	t, ok := val.(T)
	return t, ok
}
