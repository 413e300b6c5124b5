package quote

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"empty", "", []string{}},
		{"single", "a", []string{"a"}},
		{"words", "a b c", []string{"a", "b", "c"}},
		{"quoted space", `a "b c" d`, []string{"a", "b c", "d"}},
		{"trailing space kept", `a "b " d`, []string{"a", "b ", "d"}},
		{"empty token", `a "" b`, []string{"a", "", "b"}},
		{"only empty token", `""`, []string{""}},
		{"only space token", `" "`, []string{" "}},
		{"extra whitespace", "  a \t b\n", []string{"a", "b"}},
		{"adjacent quote", `x"y z"w`, []string{"x", "y z", "w"}},
		{"negative number", "move 2 -3", []string{"move", "2", "-3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Split(tt.line)
			if err != nil {
				t.Fatalf("Split(%q) unexpected error: %v", tt.line, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Split(%q) mismatch (-want +got):\n%s", tt.line, diff)
			}
		})
	}
}

func TestSplitUnbalanced(t *testing.T) {
	for _, line := range []string{`"`, `"""`, `a" b`, ` a " b""`, `"'`} {
		_, err := Split(line)
		if err == nil {
			t.Errorf("Split(%q): expected error, got nil", line)
			continue
		}
		if !errors.Is(err, ErrUnbalancedQuote) {
			t.Errorf("Split(%q): expected ErrUnbalancedQuote, got %v", line, err)
		}
		var uq *UnbalancedQuoteError
		if !errors.As(err, &uq) || uq.Line != line {
			t.Errorf("Split(%q): expected UnbalancedQuoteError carrying the line, got %#v", line, err)
		}
	}
}

func TestJoinRoundTrip(t *testing.T) {
	// Lines that are already canonical survive exactly.
	for _, line := range []string{"", "a", "a b c", `a "b c" d`, `a "b " d`, `a "" b`, `""`, `" "`} {
		tokens, err := Split(line)
		if err != nil {
			t.Fatalf("Split(%q): %v", line, err)
		}
		if got := Join(tokens); got != line {
			t.Errorf("Join(Split(%q)) = %q", line, got)
		}
	}
}

func TestSplitJoinIdempotent(t *testing.T) {
	for _, line := range []string{"  a   b ", "a\t\"b\tc\"", `"a"b`, `x "" "" y`, "\n"} {
		first, err := Split(line)
		if err != nil {
			t.Fatalf("Split(%q): %v", line, err)
		}
		second, err := Split(Join(first))
		if err != nil {
			t.Fatalf("Split(Join(%q)): %v", line, err)
		}
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("idempotence broken for %q (-first +second):\n%s", line, diff)
		}
	}
}

func TestCustomQuote(t *testing.T) {
	tok := New('\'')
	got, err := tok.Split(`say 'hello world' "x`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"say", "hello world", `"x`}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if line := tok.Join(got); line != `say 'hello world' "x` {
		t.Errorf("Expected custom quote join, got %q", line)
	}
	if tok.Representable("it's") {
		t.Error("Expected token containing the quote to be unrepresentable")
	}
}

func TestNewFallsBackToDefault(t *testing.T) {
	if q := New(' ').Quote(); q != DefaultQuote {
		t.Errorf("Expected default quote, got %q", q)
	}
	if q := (Tokenizer{}).Quote(); q != DefaultQuote {
		t.Errorf("Expected default quote for zero tokenizer, got %q", q)
	}
}
