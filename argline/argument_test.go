package argline

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustArg(t *testing.T, s *Schema, name string) *Argument {
	t.Helper()
	a, ok := s.Argument(name)
	if !ok {
		t.Fatalf("argument %q not found", name)
	}
	return a
}

func TestArity(t *testing.T) {
	if Single.IsMany() || Single.width() != 1 || Single.String() != "1" {
		t.Errorf("Unexpected Single arity %+v", Single)
	}
	if !Many.Unbounded() || Many.width() != -1 || Many.String() != "*" {
		t.Errorf("Unexpected Many arity %+v", Many)
	}
	three := Count(3)
	if n, ok := three.Exact(); !ok || n != 3 || three.Unbounded() || three.String() != "3" {
		t.Errorf("Unexpected Count(3) arity %+v", three)
	}
}

func TestManyStringQuoteRoundTrip(t *testing.T) {
	s := NewSchema("notes").String("texts").Many().Back().MustBuild()
	a := mustArg(t, s, "texts")

	encoded, err := a.EncodeString([]string{"a b", "c"})
	if err != nil {
		t.Fatal(err)
	}
	if encoded != `"a b" c` {
		t.Errorf("Expected %q, got %q", `"a b" c`, encoded)
	}
	decoded, err := a.Decode(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a b", "c"}, decoded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeEmptyString(t *testing.T) {
	s := NewSchema("x").
		Int("withDefault").Default(5).Back().
		Int("without").Back().
		String("text").Back().
		MustBuild()

	if v, _ := mustArg(t, s, "withDefault").Decode(""); v != 5 {
		t.Errorf("Expected default 5, got %v", v)
	}
	if v, _ := mustArg(t, s, "without").Decode(""); v != nil {
		t.Errorf("Expected nil, got %v", v)
	}
	if v, _ := mustArg(t, s, "text").Decode(""); v != "" {
		t.Errorf("Expected empty string, got %v", v)
	}
}

func TestValidate(t *testing.T) {
	s := NewSchema("v").
		Int("port").Validate(Check(func(n int) error {
		if n < 1 || n > 65535 {
			return fmt.Errorf("port out of range")
		}
		return nil
	})).Back().
		Int("pair").Count(2).Back().
		Float("ratios").Many().Back().
		MustBuild()

	port := mustArg(t, s, "port")
	if v, err := port.Validate("8080"); err != nil || v != 8080 {
		t.Errorf("Expected 8080, got %v (%v)", v, err)
	}
	_, err := port.Validate(70000)
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Argument != "port" || ve.Value != 70000 {
		t.Fatalf("Expected ValidationError for port, got %v", err)
	}
	if ve.Error() != "invalid value 70000 for argument 'port': port out of range" {
		t.Errorf("Unexpected message %q", ve.Error())
	}
	if v, err := port.Validate(nil); err != nil || v != nil {
		t.Errorf("Expected nil to pass through, got %v (%v)", v, err)
	}

	pair := mustArg(t, s, "pair")
	if _, err := pair.Validate([]int{1, 2, 3}); !errors.Is(err, ErrWrongCount) {
		t.Errorf("Expected ErrWrongCount, got %v", err)
	}
	if v, err := pair.Validate([]any{1.0, 2}); err != nil || !sameValue(v, []int{1, 2}) {
		t.Errorf("Expected [1 2], got %v (%v)", v, err)
	}

	ratios := mustArg(t, s, "ratios")
	if _, err := ratios.Validate(0.5); err == nil {
		t.Error("Expected a scalar to be rejected for a many argument")
	}
	if v, err := ratios.Validate("0.5 1"); err != nil || !sameValue(v, []float64{0.5, 1}) {
		t.Errorf("Expected [0.5 1], got %v (%v)", v, err)
	}
}

func TestArgumentParseTokens(t *testing.T) {
	s := NewSchema("p").
		String("name").Default("Bob").Back().
		Int("count").Back().
		Bool("verbose").Back().
		String("texts").Many().Back().
		Int("xy").Count(2).Back().
		String("level").Default("info").Const("debug").Back().
		MustBuild()

	tests := []struct {
		arg     string
		raw     Raw
		want    any
		wantErr error
	}{
		{"name", Raw{State: RawAbsent}, "Bob", nil},
		{"count", Raw{State: RawAbsent}, nil, ErrMissingArgument},
		{"verbose", Raw{State: RawAbsent}, false, nil},
		{"verbose", Raw{State: RawFlagged}, true, nil},
		{"verbose", Raw{State: RawTokens, Tokens: []string{"x"}}, nil, ErrUnexpectedToken},
		{"count", Raw{State: RawFlagged}, nil, ErrMissingValue},
		{"count", Raw{State: RawTokens, Tokens: []string{"1", "2"}}, nil, ErrWrongCount},
		{"count", Raw{State: RawTokens, Tokens: []string{""}}, nil, ErrMissingValue},
		{"count", Raw{State: RawTokens, Tokens: []string{"12"}}, 12, nil},
		{"texts", Raw{State: RawFlagged}, []string{}, nil},
		{"texts", Raw{State: RawTokens, Tokens: []string{"a", "b c"}}, []string{"a", "b c"}, nil},
		{"xy", Raw{State: RawTokens, Tokens: []string{"1"}}, nil, ErrWrongCount},
		{"xy", Raw{State: RawFlagged}, nil, ErrWrongCount},
		{"xy", Raw{State: RawTokens, Tokens: []string{"1", "-2"}}, []int{1, -2}, nil},
		{"level", Raw{State: RawFlagged}, "debug", nil},
		{"level", Raw{State: RawTokens, Tokens: []string{"warn"}}, "warn", nil},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%d/%v", tt.arg, tt.raw.State, tt.raw.Tokens), func(t *testing.T) {
			got, err := mustArg(t, s, tt.arg).ParseTokens(tt.raw)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Expected %v, got %v", tt.wantErr, err)
				}
				var pe *ParseError
				if errors.As(err, &pe) && pe.Argument != tt.arg {
					t.Errorf("Expected error to name %q, got %q", tt.arg, pe.Argument)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !sameValue(got, tt.want) {
				t.Errorf("Expected %#v, got %#v", tt.want, got)
			}
		})
	}
}

func TestCmd(t *testing.T) {
	s := NewSchema("c").
		String("name").Default("Bob").Back().
		Bool("force").Back().
		String("texts").Many().Back().
		String("level").Default("info").Const("debug").Back().
		MustBuild()

	tests := []struct {
		arg   string
		v     any
		short bool
		want  []string
	}{
		{"name", "Bob", false, nil},
		{"name", "Ann", false, []string{"--name", "Ann"}},
		{"name", "Ann", true, []string{"Ann"}},
		{"force", true, false, []string{"--force"}},
		{"force", true, true, []string{"-f"}},
		{"force", false, false, nil},
		{"texts", []string{"a b", "c"}, false, []string{"--texts", "a b", "c"}},
		{"texts", []string{}, false, []string{"--texts"}},
		{"level", "debug", false, []string{"--level"}},
		{"level", "warn", true, []string{"-l", "warn"}},
		{"name", nil, false, nil},
	}
	for _, tt := range tests {
		got, err := mustArg(t, s, tt.arg).Cmd(tt.v, tt.short)
		if err != nil {
			t.Fatalf("Cmd(%v) failed: %v", tt.v, err)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("Cmd(%s, %v, %v) mismatch (-want +got):\n%s", tt.arg, tt.v, tt.short, diff)
		}
	}
}
