package argline

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/araddon/dateparse"
)

// Type decodes command-line text into native values and back.
type Type interface {
	// Name is shown in help output.
	Name() string
	// GoType is the canonical Go type of a decoded value.
	GoType() reflect.Type
	// Decode converts a single token.
	Decode(s string) (any, error)
	// Encode converts a value of GoType into a single token.
	Encode(v any) (string, error)
	// Cast converts a native value (or its string form) to GoType.
	Cast(v any) (any, error)
}

// Kind tags a registered codec.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindDate
	KindDateTime
	KindTime
	KindDuration
)

// Layouts used by the date and time kinds.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02T15:04:05"
	TimeLayout     = "15:04:05"
)

// EncodeFunc renders a value of a kind's Go type.
type EncodeFunc func(v any) (string, error)

// DecodeFunc parses a token into a kind's Go type.
type DecodeFunc func(s string) (any, error)

type codec struct {
	name   string
	goType reflect.Type
	encode EncodeFunc
	decode DecodeFunc
	// canon reduces a decoded or cast value to what encode can write, so
	// that rendering and parsing again gives the same value.
	canon func(v any) (any, error)
}

var (
	registryMu sync.RWMutex
	registry   = map[Kind]codec{}
	nextKind   = KindDuration + 1

	// the fallback for kinds nobody registered
	stringCodec = codec{
		name:   "string",
		goType: reflect.TypeOf(""),
		encode: func(v any) (string, error) { return fmt.Sprint(v), nil },
		decode: func(s string) (any, error) { return s, nil },
	}
)

var (
	trueWords  = map[string]bool{"true": true, "t": true, "yes": true, "y": true, "1": true, "on": true}
	falseWords = map[string]bool{"false": true, "f": true, "no": true, "n": true, "0": true, "off": true}
)

func init() {
	registry[KindString] = stringCodec
	registry[KindInt] = codec{
		name:   "int",
		goType: reflect.TypeOf(0),
		encode: func(v any) (string, error) { return strconv.Itoa(v.(int)), nil },
		decode: func(s string) (any, error) {
			n, err := parseInt(s)
			if err != nil {
				return nil, fmt.Errorf("not an integer: %q", s)
			}
			return n, nil
		},
	}
	registry[KindFloat] = codec{
		name:   "float",
		goType: reflect.TypeOf(0.0),
		encode: func(v any) (string, error) { return strconv.FormatFloat(v.(float64), 'g', -1, 64), nil },
		decode: func(s string) (any, error) {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, fmt.Errorf("not a number: %q", s)
			}
			return f, nil
		},
		canon: func(v any) (any, error) {
			if f := v.(float64); math.IsNaN(f) || math.IsInf(f, 0) {
				return nil, fmt.Errorf("not a finite number: %v", f)
			}
			return v, nil
		},
	}
	registry[KindBool] = codec{
		name:   "bool",
		goType: reflect.TypeOf(false),
		encode: func(v any) (string, error) { return strconv.FormatBool(v.(bool)), nil },
		decode: func(s string) (any, error) {
			w := strings.ToLower(strings.TrimSpace(s))
			switch {
			case trueWords[w]:
				return true, nil
			case falseWords[w]:
				return false, nil
			}
			return nil, fmt.Errorf("not a boolean: %q", s)
		},
	}
	registry[KindDate] = timeCodec("date", DateLayout, func(t time.Time) time.Time {
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	})
	registry[KindDateTime] = timeCodec("datetime", DateTimeLayout, func(t time.Time) time.Time {
		return t.UTC().Truncate(time.Second)
	})
	registry[KindTime] = codec{
		name:   "time",
		goType: reflect.TypeOf(time.Time{}),
		encode: func(v any) (string, error) { return v.(time.Time).Format(TimeLayout), nil },
		decode: func(s string) (any, error) {
			for _, layout := range []string{TimeLayout, "15:04"} {
				if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
					return t, nil
				}
			}
			return nil, fmt.Errorf("not a time of day (hh:mm[:ss]): %q", s)
		},
		canon: timeCanon(func(t time.Time) time.Time {
			h, m, s := t.Clock()
			return time.Date(0, time.January, 1, h, m, s, 0, time.UTC)
		}),
	}
	registry[KindDuration] = codec{
		name:   "duration",
		goType: reflect.TypeOf(time.Duration(0)),
		encode: func(v any) (string, error) { return formatDuration(v.(time.Duration)), nil },
		decode: func(s string) (any, error) { return parseDuration(s) },
	}
}

// timeCodec parses with layout first and falls back to dateparse, which
// accepts most human spellings of a date. trim drops what layout can not
// hold: zones, fractions and, for dates, the clock.
func timeCodec(name, layout string, trim func(time.Time) time.Time) codec {
	return codec{
		name:   name,
		goType: reflect.TypeOf(time.Time{}),
		encode: func(v any) (string, error) { return v.(time.Time).Format(layout), nil },
		decode: func(s string) (any, error) {
			s = strings.TrimSpace(s)
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
			if t, err := dateparse.ParseIn(s, time.UTC); err == nil {
				return t, nil
			}
			return nil, fmt.Errorf("not a %s (%s): %q", name, layout, s)
		},
		canon: timeCanon(trim),
	}
}

func timeCanon(trim func(time.Time) time.Time) func(any) (any, error) {
	return func(v any) (any, error) { return trim(v.(time.Time)), nil }
}

// parseInt reads base 10 unless the number carries an explicit 0x, 0o or
// 0b prefix. A bare leading zero is not octal.
func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	digits := strings.TrimLeft(s, "+-")
	base := 10
	if len(digits) > 2 && digits[0] == '0' {
		switch digits[1] {
		case 'x', 'X', 'o', 'O', 'b', 'B':
			base = 0
		}
	}
	n, err := strconv.ParseInt(s, base, strconv.IntSize)
	return int(n), err
}

// formatDuration renders d as [-]hh:mm:ss[.fraction].
func formatDuration(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second

	out := fmt.Sprintf("%s%02d:%02d:%02d", sign, h, m, s)
	if d > 0 {
		frac := strings.TrimRight(fmt.Sprintf("%09d", int64(d)), "0")
		out += "." + frac
	}
	return out
}

// parseDuration accepts [-]hh:mm[:ss[.fraction]] and Go duration syntax.
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, ":") {
		d, err := time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("not a duration: %q", s)
		}
		return d, nil
	}

	neg := strings.HasPrefix(s, "-")
	parts := strings.Split(strings.TrimPrefix(s, "-"), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("not a duration (hh:mm:ss): %q", s)
	}
	h, errH := strconv.Atoi(parts[0])
	m, errM := strconv.Atoi(parts[1])
	if errH != nil || errM != nil || m >= 60 || h < 0 || m < 0 {
		return 0, fmt.Errorf("not a duration (hh:mm:ss): %q", s)
	}
	d := time.Duration(h)*time.Hour + time.Duration(m)*time.Minute
	if len(parts) == 3 {
		sec, err := strconv.ParseFloat(parts[2], 64)
		if err != nil || sec < 0 || sec >= 60 {
			return 0, fmt.Errorf("not a duration (hh:mm:ss): %q", s)
		}
		d += time.Duration(math.Round(sec * float64(time.Second)))
	}
	if neg {
		d = -d
	}
	return d, nil
}

// RegisterKind adds a codec at startup and returns its tag. The Go type of
// values is taken from zero.
func RegisterKind(name string, zero any, encode EncodeFunc, decode DecodeFunc) Kind {
	registryMu.Lock()
	defer registryMu.Unlock()
	k := nextKind
	nextKind++
	if encode == nil {
		encode = stringCodec.encode
	}
	registry[k] = codec{name: name, goType: reflect.TypeOf(zero), encode: encode, decode: decode}
	return k
}

func lookup(k Kind) codec {
	registryMu.RLock()
	defer registryMu.RUnlock()
	if c, ok := registry[k]; ok {
		return c
	}
	return stringCodec
}

// kindType adapts a registered codec to Type.
type kindType struct {
	kind Kind
}

// Built-in types.
var (
	String   Type = kindType{KindString}
	Int      Type = kindType{KindInt}
	Float    Type = kindType{KindFloat}
	Bool     Type = kindType{KindBool}
	Date     Type = kindType{KindDate}
	DateTime Type = kindType{KindDateTime}
	Time     Type = kindType{KindTime}
	Duration Type = kindType{KindDuration}
)

// TypeOfKind returns the Type of a registered kind. Unregistered kinds decode
// as plain strings.
func TypeOfKind(k Kind) Type { return kindType{k} }

func (t kindType) Name() string         { return lookup(t.kind).name }
func (t kindType) GoType() reflect.Type { return lookup(t.kind).goType }

func (t kindType) Decode(s string) (any, error) {
	c := lookup(t.kind)
	if c.decode == nil {
		return nil, fmt.Errorf("%s has no decoder", c.name)
	}
	v, err := c.decode(s)
	if err != nil || c.canon == nil {
		return v, err
	}
	return c.canon(v)
}

func (t kindType) Encode(v any) (string, error) {
	c := lookup(t.kind)
	cast, err := t.Cast(v)
	if err != nil {
		return "", err
	}
	return c.encode(cast)
}

func (t kindType) Cast(v any) (any, error) {
	cast, err := castTo(t, v)
	if err != nil {
		return nil, err
	}
	if c := lookup(t.kind); c.canon != nil {
		return c.canon(cast)
	}
	return cast, nil
}

var errNotConvertible = errors.New("value can not be converted")

// castTo converts v to t.GoType(). Strings go through Decode, numbers are
// converted when no precision is lost.
func castTo(t Type, v any) (any, error) {
	target := t.GoType()
	if v == nil {
		return nil, fmt.Errorf("%w: nil is not a %s", errNotConvertible, t.Name())
	}
	rv := reflect.ValueOf(v)
	if rv.Type() == target {
		return v, nil
	}
	if s, ok := v.(string); ok {
		return t.Decode(s)
	}

	switch target.Kind() {
	case reflect.Int:
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if n := rv.Int(); n >= math.MinInt && n <= math.MaxInt {
				return int(n), nil
			}
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			if n := rv.Uint(); n <= math.MaxInt {
				return int(n), nil
			}
		case reflect.Float32, reflect.Float64:
			// float64(math.MaxInt) rounds up to the first value out of range
			f := rv.Float()
			if f == math.Trunc(f) && f >= math.MinInt && f < math.MaxInt {
				return int(f), nil
			}
		}
	case reflect.Float64:
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return float64(rv.Int()), nil
		case reflect.Float32:
			return rv.Float(), nil
		}
	}
	if target.Kind() == reflect.String {
		return fmt.Sprint(v), nil
	}
	if target == reflect.TypeOf(time.Duration(0)) {
		switch rv.Kind() {
		case reflect.Int, reflect.Int32, reflect.Int64:
			return time.Duration(rv.Int()), nil
		}
	}
	return nil, fmt.Errorf("%w: %T is not a %s", errNotConvertible, v, t.Name())
}
