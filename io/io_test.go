package arglineio

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestColorOverrides(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("FORCE_COLOR", "")
	m := New().WithOut(&bytes.Buffer{})

	if m.SupportsColor() {
		t.Fatal("Expected no color for a non-terminal writer")
	}
	if !m.ForceColor().SupportsColor() {
		t.Fatal("ForceColor should enable colors")
	}
	if m.NoColor().SupportsColor() {
		t.Fatal("NoColor should disable colors")
	}

	t.Setenv("NO_COLOR", "1")
	if m.ForceColor().SupportsColor() {
		t.Fatal("NO_COLOR should win over ForceColor")
	}
}

func TestBoldHonorsColorSupport(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	m := New().WithOut(&bytes.Buffer{}).ForceColor()
	out := m.Bold("x")
	if !strings.Contains(out, "\x1b[") || !strings.Contains(out, "x") {
		t.Fatalf("Expected ANSI sequence, got %q", out)
	}

	if plain := m.NoColor().Bold("x"); plain != "x" {
		t.Fatalf("Expected plain text without color, got %q", plain)
	}
}

func TestWidthFallback(t *testing.T) {
	t.Setenv("COLUMNS", "101")
	m := New().WithOut(&bytes.Buffer{})
	if w := m.Width(); w != 101 {
		t.Fatalf("Expected width 101 from COLUMNS, got %d", w)
	}

	t.Setenv("COLUMNS", "")
	if w := m.Width(); w != 80 {
		t.Fatalf("Expected default width 80, got %d", w)
	}
}

func TestTerminalDetection(t *testing.T) {
	orig := isTerminalFn
	defer func() { isTerminalFn = orig }()

	isTerminalFn = func(int) bool { return true }
	m := New().WithOut(os.Stdout).WithIn(os.Stdin)
	if !m.IsTTY() {
		t.Fatal("Expected IsTTY for a terminal file")
	}
	t.Setenv("CI", "")
	if !m.IsInteractive() {
		t.Fatal("Expected interactive input")
	}

	if m.WithOut(&bytes.Buffer{}).IsTTY() {
		t.Fatal("A buffer is never a terminal")
	}
}
