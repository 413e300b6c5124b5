// Package structargs derives argline schemas from tagged structs and binds
// parsed values back into them.
//
// Supported tags:
//
//	arg:"name,positional,flagged,switch,optional"  name and options; arg:"-" skips the field
//	default:"text"                                 default, decoded like command line text
//	description:"text"                             help text
//	enum:"a,b,c"                                   restrict a string field to the listed values
//	count:"2"                                      slice field taking exactly n values
//	format:"date"                                  date, datetime or time for time.Time fields
//
// Nested structs contribute their fields under "<parent>." names.
package structargs

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/dzonerzy/go-argline/argline"
)

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
)

// field is one struct field mapped to an argument.
type field struct {
	name    string
	index   []int
	typ     reflect.Type
	base    reflect.Type
	slice   bool
	options map[string]bool
	tag     reflect.StructTag
}

// parseArgTag splits arg:"name,opt,opt" into the name and its options.
func parseArgTag(tag string) (name string, options map[string]bool) {
	options = make(map[string]bool)
	if tag == "" {
		return "", options
	}
	parts := strings.Split(tag, ",")
	name = strings.TrimSpace(parts[0])
	for _, p := range parts[1:] {
		if opt := strings.TrimSpace(p); opt != "" {
			options[opt] = true
		}
	}
	return name, options
}

// kebab turns a Go field name into an argument name: LogFile => log-file,
// HTTPPort => http-port.
func kebab(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]))) {
				b.WriteByte('-')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// unwrap returns the struct type behind v, which may be a struct or a
// pointer to one.
func unwrap(v any) (reflect.Type, error) {
	t := reflect.TypeOf(v)
	if t == nil {
		return nil, fmt.Errorf("structargs: nil target")
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("structargs: expected a struct or a pointer to one, got %s", t)
	}
	return t, nil
}

func collect(t reflect.Type, prefix string, index []int, out []field) ([]field, error) {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, options := parseArgTag(sf.Tag.Get("arg"))
		if name == "-" {
			continue
		}
		if name == "" {
			name = kebab(sf.Name)
		}
		name = prefix + name
		idx := append(append([]int(nil), index...), i)

		ft := sf.Type
		if ft.Kind() == reflect.Struct && ft != timeType {
			var err error
			if out, err = collect(ft, name+".", idx, out); err != nil {
				return nil, err
			}
			continue
		}

		f := field{name: name, index: idx, typ: ft, base: ft, options: options, tag: sf.Tag}
		if ft.Kind() == reflect.Slice {
			f.slice = true
			f.base = ft.Elem()
		}
		if f.base.Kind() == reflect.Pointer {
			return nil, fmt.Errorf("structargs: field %s: pointers are not supported, use arg:\"-\"", sf.Name)
		}
		out = append(out, f)
	}
	return out, nil
}

func fields(v any) ([]field, error) {
	t, err := unwrap(v)
	if err != nil {
		return nil, err
	}
	return collect(t, "", nil, nil)
}

// typeOf maps a field to the argline type decoding it.
func (f field) typeOf() (argline.Type, error) {
	if enum := f.tag.Get("enum"); enum != "" {
		if f.base.Kind() != reflect.String {
			return nil, fmt.Errorf("enum needs a string field, got %s", f.base)
		}
		values := strings.Split(enum, ",")
		for i := range values {
			values[i] = strings.TrimSpace(values[i])
		}
		return argline.Choice(values...), nil
	}

	switch f.base {
	case durationType:
		return argline.Duration, nil
	case timeType:
		switch format := f.tag.Get("format"); format {
		case "", "datetime":
			return argline.DateTime, nil
		case "date":
			return argline.Date, nil
		case "time":
			return argline.Time, nil
		default:
			return nil, fmt.Errorf("unknown time format %q", format)
		}
	}

	switch f.base.Kind() {
	case reflect.String:
		return argline.String, nil
	case reflect.Bool:
		return argline.Bool, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return argline.Int, nil
	case reflect.Float32, reflect.Float64:
		return argline.Float, nil
	}
	return nil, fmt.Errorf("%s is not supported, use arg:\"-\"", f.typ)
}

// Schema declares one argument per exported field of v, in field order.
// Fields without a default tag are required, except bools, which become
// switches, and fields tagged optional.
func Schema(name string, v any) (*argline.Schema, error) {
	fs, err := fields(v)
	if err != nil {
		return nil, &argline.ConfigError{Schema: name, Message: "invalid struct", Cause: err}
	}

	b := argline.NewSchema(name)
	for _, f := range fs {
		t, err := f.typeOf()
		if err != nil {
			return nil, &argline.ConfigError{Schema: name, Argument: f.name, Message: "invalid field", Cause: err}
		}
		ab := b.Arg(f.name, t)

		if count := f.tag.Get("count"); count != "" {
			n, err := strconv.Atoi(count)
			if err != nil || !f.slice {
				return nil, &argline.ConfigError{Schema: name, Argument: f.name,
					Message: fmt.Sprintf("count %q needs an integer on a slice field", count)}
			}
			ab.Count(n)
		} else if f.slice {
			ab.Many()
		}

		if def, ok := f.tag.Lookup("default"); ok {
			ab.Default(def)
		} else if f.options["optional"] {
			ab.Default(nil)
		}
		if desc := f.tag.Get("description"); desc != "" {
			ab.Help(desc)
		}
		if f.options["switch"] {
			ab.Switch()
		}
		if f.options["positional"] {
			ab.Positional()
		}
		if f.options["flagged"] {
			ab.Flagged()
		}
	}
	return b.Build()
}

// MustSchema is like Schema but panics on error.
func MustSchema(name string, v any) *argline.Schema {
	s, err := Schema(name, v)
	if err != nil {
		panic(err)
	}
	return s
}

// Bind copies the current values into the fields of dst, which must be a
// pointer to the struct the schema was derived from. Arguments without a
// value leave their field untouched.
func Bind(values *argline.Values, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("structargs: Bind needs a non-nil pointer, got %T", dst)
	}
	fs, err := fields(dst)
	if err != nil {
		return err
	}

	target := rv.Elem()
	for _, f := range fs {
		val, ok := values.Get(f.name)
		if !ok || val == nil {
			continue
		}
		if err := assign(target.FieldByIndex(f.index), reflect.ValueOf(val)); err != nil {
			return fmt.Errorf("structargs: field for '%s': %w", f.name, err)
		}
	}
	return nil
}

func assign(dst, src reflect.Value) error {
	if src.Type().AssignableTo(dst.Type()) {
		dst.Set(src)
		return nil
	}
	if dst.Kind() == reflect.Slice && src.Kind() == reflect.Slice {
		out := reflect.MakeSlice(dst.Type(), src.Len(), src.Len())
		for i := 0; i < src.Len(); i++ {
			if err := assign(out.Index(i), src.Index(i)); err != nil {
				return err
			}
		}
		dst.Set(out)
		return nil
	}
	if src.Type().ConvertibleTo(dst.Type()) && dst.Kind() != reflect.Slice {
		if isInt(dst.Kind()) && src.CanInt() {
			if dst.OverflowInt(src.Int()) {
				return fmt.Errorf("%d overflows %s", src.Int(), dst.Type())
			}
		}
		if isUint(dst.Kind()) && src.CanInt() {
			if src.Int() < 0 || dst.OverflowUint(uint64(src.Int())) {
				return fmt.Errorf("%d overflows %s", src.Int(), dst.Type())
			}
		}
		dst.Set(src.Convert(dst.Type()))
		return nil
	}
	return fmt.Errorf("can not assign %s to %s", src.Type(), dst.Type())
}

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUint(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uint64
}

// New builds a parser for cfg. Before target runs, the parsed values are
// bound into cfg, which must be a pointer.
func New(name string, cfg any, target func(ctx *argline.Context) error) (*argline.Parser, error) {
	schema, err := Schema(name, cfg)
	if err != nil {
		return nil, err
	}
	return argline.New(schema, func(ctx *argline.Context) error {
		if err := Bind(ctx.Values(), cfg); err != nil {
			return err
		}
		if target == nil {
			return nil
		}
		return target(ctx)
	}), nil
}
