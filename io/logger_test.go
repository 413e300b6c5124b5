package arglineio

import (
	"bytes"
	"strings"
	"testing"
)

type closingBuffer struct {
	bytes.Buffer
	closed bool
}

func (c *closingBuffer) Close() error { c.closed = true; return nil }

func newTestLogger() (*Logger, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	m := New().WithOut(&out).WithErr(&errOut).NoColor()
	return NewLogger(m), &out, &errOut
}

func TestLoggerLevels(t *testing.T) {
	t.Setenv(DebugEnv, "")
	l, out, errOut := newTestLogger()

	l.Debug("hidden %d", 1)
	l.Info("shown %d", 2)
	l.Error("failed")

	if strings.Contains(out.String(), "hidden") {
		t.Errorf("Debug message written below minimum level: %q", out.String())
	}
	if !strings.Contains(out.String(), "◆ shown 2") {
		t.Errorf("Expected info with symbol prefix, got %q", out.String())
	}
	if !strings.Contains(errOut.String(), "✗ failed") {
		t.Errorf("Expected error on stderr, got %q", errOut.String())
	}

	l.WithLevel(LevelDebug).Debug("visible")
	if !strings.Contains(out.String(), "visible") {
		t.Errorf("Expected debug output after lowering level, got %q", out.String())
	}
}

func TestLoggerDebugEnv(t *testing.T) {
	t.Setenv(DebugEnv, "1")
	l, _, _ := newTestLogger()
	if l.Level() != LevelDebug {
		t.Fatalf("Expected LevelDebug from %s, got %v", DebugEnv, l.Level())
	}
}

func TestLoggerFormats(t *testing.T) {
	tests := []struct {
		format LogFormat
		want   string
	}{
		{LogFormatTagged, "[SUCCESS] done"},
		{LogFormatPlain, "done"},
		{LogFormatSymbols, "✓ done"},
	}
	for _, tt := range tests {
		l, out, _ := newTestLogger()
		l.WithFormat(tt.format).Success("done")
		if got := strings.TrimSpace(out.String()); got != tt.want {
			t.Errorf("format %d: expected %q, got %q", tt.format, tt.want, got)
		}
	}
}

func TestLoggerFileSink(t *testing.T) {
	l, _, _ := newTestLogger()
	sink := &closingBuffer{}
	l.ToWriter(sink)

	l.Warning("disk %s", "low")
	if !strings.Contains(sink.String(), "[WARN] disk low") {
		t.Fatalf("Expected tagged line in file sink, got %q", sink.String())
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !sink.closed {
		t.Fatal("Expected sink to be closed")
	}
}

func TestLoggerRotatingFile(t *testing.T) {
	path := t.TempDir() + "/argline.log"
	l, _, _ := newTestLogger()
	l.ToFile(path, 1, 1)
	l.Info("to file")
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestLevelString(t *testing.T) {
	if LevelWarning.String() != "WARN" || LogLevel(42).String() != "UNKNOWN" {
		t.Fatalf("unexpected level names: %s %s", LevelWarning, LogLevel(42))
	}
}
