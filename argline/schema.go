package argline

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Reserved names: first tokens handled by the dispatcher at every level.
const (
	HelpFlag  = "--help"
	HelpShort = "-h"
	GUIFlag   = "--gui"
)

var reservedNames = map[string]bool{"help": true, "gui": true}

// Schema is the ordered, immutable set of arguments of one parser
// definition.
type Schema struct {
	name  string
	args  *orderedmap.OrderedMap[string, *Argument]
	flags map[string]*Argument
	decls []*Argument // unfinalized declarations, for Extend
}

// Name returns the schema name.
func (s *Schema) Name() string { return s.name }

// Len returns the number of arguments.
func (s *Schema) Len() int { return s.args.Len() }

// Arguments returns the arguments in declaration order.
func (s *Schema) Arguments() []*Argument {
	out := make([]*Argument, 0, s.args.Len())
	for pair := s.args.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Argument returns the argument called name.
func (s *Schema) Argument(name string) (*Argument, bool) {
	return s.args.Get(name)
}

// Lookup returns the argument owning flag.
func (s *Schema) Lookup(flag string) (*Argument, bool) {
	a, ok := s.flags[flag]
	return a, ok
}

// IsFlag reports whether tok is a flag of this schema.
func (s *Schema) IsFlag(tok string) bool {
	_, ok := s.flags[tok]
	return ok
}

// FlagNames returns every flag, long flags first per argument.
func (s *Schema) FlagNames() []string {
	out := make([]string, 0, len(s.flags))
	for pair := s.args.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value.Flags()...)
	}
	return out
}

// Positionals returns the positional arguments in declaration order.
func (s *Schema) Positionals() []*Argument {
	var out []*Argument
	for pair := s.args.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.positional {
			out = append(out, pair.Value)
		}
	}
	return out
}

// Extend starts a new schema from the declarations of s. Arguments declared
// on the returned builder replace same-named ones in place, new names are
// appended.
func (s *Schema) Extend(name string) *SchemaBuilder {
	b := NewSchema(name)
	for _, d := range s.decls {
		c := *d
		b.decls.Set(c.name, &c)
	}
	b.inherited = make(map[string]bool, len(s.decls))
	for _, d := range s.decls {
		b.inherited[d.name] = true
	}
	return b
}

// SchemaBuilder declares arguments with a fluent API.
type SchemaBuilder struct {
	name      string
	decls     *orderedmap.OrderedMap[string, *Argument]
	inherited map[string]bool
	errs      []error
}

// NewSchema starts a schema declaration.
func NewSchema(name string) *SchemaBuilder {
	return &SchemaBuilder{
		name:  name,
		decls: orderedmap.New[string, *Argument](),
	}
}

// Arg declares an argument of type t with Single arity.
func (b *SchemaBuilder) Arg(name string, t Type) *ArgBuilder {
	arg := &Argument{name: name, typ: t}
	if _, exists := b.decls.Get(name); exists {
		if b.inherited[name] {
			// override keeps the original position
			delete(b.inherited, name)
		} else {
			b.errs = append(b.errs, configErrorf(b.name, name, "argument declared twice"))
		}
	}
	b.decls.Set(name, arg)
	return &ArgBuilder{parent: b, arg: arg}
}

// String declares a string argument.
func (b *SchemaBuilder) String(name string) *ArgBuilder { return b.Arg(name, String) }

// Int declares an int argument.
func (b *SchemaBuilder) Int(name string) *ArgBuilder { return b.Arg(name, Int) }

// Float declares a float64 argument.
func (b *SchemaBuilder) Float(name string) *ArgBuilder { return b.Arg(name, Float) }

// Bool declares a bool argument. With no default, or default false, it
// becomes a switch. Any other default makes it an ordinary argument taking
// one value; call Switch to make that a configuration error instead.
func (b *SchemaBuilder) Bool(name string) *ArgBuilder { return b.Arg(name, Bool) }

// Date declares a date argument.
func (b *SchemaBuilder) Date(name string) *ArgBuilder { return b.Arg(name, Date) }

// DateTime declares a date and time argument.
func (b *SchemaBuilder) DateTime(name string) *ArgBuilder { return b.Arg(name, DateTime) }

// Time declares a time-of-day argument.
func (b *SchemaBuilder) Time(name string) *ArgBuilder { return b.Arg(name, Time) }

// Duration declares a duration argument.
func (b *SchemaBuilder) Duration(name string) *ArgBuilder { return b.Arg(name, Duration) }

// Choice declares a string argument restricted to values.
func (b *SchemaBuilder) Choice(name string, values ...string) *ArgBuilder {
	return b.Arg(name, Choice(values...))
}

// MustBuild is Build that panics on error, for package-level schemas.
func (b *SchemaBuilder) MustBuild() *Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

// Build finalizes the declarations in order: names are checked, defaults
// validated, short flags assigned to the first argument claiming a letter
// and positional eligibility fixed.
func (b *SchemaBuilder) Build() (*Schema, error) {
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}

	s := &Schema{
		name:  b.name,
		args:  orderedmap.New[string, *Argument](),
		flags: make(map[string]*Argument),
	}
	usedShort := map[rune]bool{'h': true}
	positionalOpen := true
	unbounded := 0

	for pair := b.decls.Oldest(); pair != nil; pair = pair.Next() {
		decl := pair.Value
		s.decls = append(s.decls, decl)

		a := *decl
		if err := b.checkDecl(&a); err != nil {
			return nil, err
		}

		a.long = "--" + a.name
		first, _ := utf8.DecodeRuneInString(a.name)
		if !usedShort[first] {
			usedShort[first] = true
			a.short = "-" + string(first)
		}

		// positionals form a prefix, closed by a switch, a const flag, a
		// flag-only argument or a second unbounded argument
		if a.isSwitch || a.hasConst || a.flaggedOnly {
			positionalOpen = false
		}
		if a.arity.Unbounded() {
			unbounded++
			if unbounded > 1 {
				positionalOpen = false
			}
		}
		a.positional = positionalOpen
		if a.wantPositional && !a.positional {
			return nil, configErrorf(b.name, a.name,
				"can not be positional: positionals must precede switches, flag-only arguments "+
					"and a second unbounded argument")
		}

		arg := &a
		s.args.Set(arg.name, arg)
		for _, f := range arg.Flags() {
			s.flags[f] = arg
		}
	}
	return s, nil
}

func (b *SchemaBuilder) checkDecl(a *Argument) error {
	switch {
	case a.name == "":
		return configErrorf(b.name, a.name, "empty name")
	case strings.HasPrefix(a.name, "_") || strings.HasPrefix(a.name, "-"):
		return configErrorf(b.name, a.name, "name may not start with '_' or '-'")
	case strings.IndexFunc(a.name, unicode.IsSpace) >= 0:
		return configErrorf(b.name, a.name, "name may not contain whitespace")
	case reservedNames[a.name]:
		return configErrorf(b.name, a.name, "name is reserved")
	case a.typ == nil:
		return configErrorf(b.name, a.name, "no type")
	}
	if n, ok := a.arity.Exact(); ok && n < 1 {
		return configErrorf(b.name, a.name, "count must be at least 1, got %d", n)
	}

	isBool := a.typ.GoType() == Bool.GoType() && !a.arity.many
	falseDefault := !a.hasDef || sameValue(a.def, false)
	if a.wantSwitch && (!isBool || !falseDefault || a.hasConst) {
		return configErrorf(b.name, a.name, "switches must be single bool arguments defaulting to false")
	}
	if isBool && falseDefault && !a.hasConst {
		a.isSwitch = true
		a.def, a.hasDef = false, true
	}

	if a.hasDef && a.def != nil {
		// checked before the default is known, so no shortcut applies
		hasDef := a.hasDef
		a.hasDef = false
		v, err := a.Validate(a.def)
		a.hasDef = hasDef
		if err != nil {
			return &ConfigError{Schema: b.name, Argument: a.name, Message: errBadDefault.Error(), Cause: err}
		}
		a.def = v
	}
	if a.hasConst {
		if a.constVal == nil {
			return configErrorf(b.name, a.name, "const value may not be nil")
		}
		v, err := a.Validate(a.constVal)
		if err != nil {
			return &ConfigError{Schema: b.name, Argument: a.name, Message: "const does not validate", Cause: err}
		}
		a.constVal = v
	}
	return nil
}

// ArgBuilder configures one argument.
type ArgBuilder struct {
	parent *SchemaBuilder
	arg    *Argument
}

// Many lets the argument collect every token up to the next flag. Only the
// first unbounded argument can be positional; a second one and every
// argument after it are flag-only.
func (ab *ArgBuilder) Many() *ArgBuilder { ab.arg.arity = Many; return ab }

// Count makes the argument take exactly n tokens.
func (ab *ArgBuilder) Count(n int) *ArgBuilder { ab.arg.arity = Count(n); return ab }

// Arity sets the arity.
func (ab *ArgBuilder) Arity(a Arity) *ArgBuilder { ab.arg.arity = a; return ab }

// Default sets the default value, making the argument optional. Strings are
// decoded with the argument's type. nil is a valid default.
func (ab *ArgBuilder) Default(v any) *ArgBuilder {
	ab.arg.def, ab.arg.hasDef = v, true
	return ab
}

// Validate sets the validator.
func (ab *ArgBuilder) Validate(fn Validator) *ArgBuilder { ab.arg.validator = fn; return ab }

// Help sets the help text.
func (ab *ArgBuilder) Help(text string) *ArgBuilder { ab.arg.help = text; return ab }

// Const sets the value used when the flag is given without tokens. Const
// arguments are never positional.
func (ab *ArgBuilder) Const(v any) *ArgBuilder {
	ab.arg.constVal, ab.arg.hasConst = v, true
	return ab
}

// Switch requires the argument to be a boolean switch.
func (ab *ArgBuilder) Switch() *ArgBuilder { ab.arg.wantSwitch = true; return ab }

// Positional requires the argument to be positional; Build fails otherwise.
func (ab *ArgBuilder) Positional() *ArgBuilder { ab.arg.wantPositional = true; return ab }

// Flagged keeps the argument and every later one out of positional
// assignment.
func (ab *ArgBuilder) Flagged() *ArgBuilder { ab.arg.flaggedOnly = true; return ab }

// Back returns to the schema builder.
func (ab *ArgBuilder) Back() *SchemaBuilder { return ab.parent }

// Build finalizes the schema; shorthand for Back().Build().
func (ab *ArgBuilder) Build() (*Schema, error) { return ab.parent.Build() }

func (s *Schema) String() string {
	names := make([]string, 0, s.args.Len())
	for pair := s.args.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return fmt.Sprintf("%s(%s)", s.name, strings.Join(names, ", "))
}
