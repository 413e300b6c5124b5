package middleware

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestJSONLoggerEscapesStrings(t *testing.T) {
	var buf bytes.Buffer
	mw := LoggerWithWriter(&buf, func(c *MiddlewareConfig) {
		c.LogFormat = LogFormatJSON
		c.IncludeLine = true
		c.LogLevel = LogLevelInfo
	})

	ctx := NewMockContext()
	ctx.SetLine("say \"a b\"\nnext")
	ctx.Set("logger.request_id", "r-1")

	if err := mw(successAction)(ctx); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry); err != nil {
		t.Fatalf("log entry is not valid JSON: %v\n%s", err, buf.String())
	}
	if entry["line"] != "say \"a b\"\nnext" {
		t.Errorf("line not preserved: %v", entry["line"])
	}
	if entry["command"] != "test" || entry["level"] != "SUCCESS" {
		t.Errorf("unexpected entry: %v", entry)
	}
	meta, _ := entry["metadata"].(map[string]any)
	if meta["request_id"] != "r-1" {
		t.Errorf("expected request id metadata, got %v", entry["metadata"])
	}
}

func TestJSONLoggerWithoutLine(t *testing.T) {
	var buf bytes.Buffer
	mw := LoggerWithWriter(&buf, WithLogFormat(LogFormatJSON), WithLine(false))

	ctx := NewMockContext()
	ctx.SetLine("--secret hunter2")
	if err := mw(successAction)(ctx); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry); err != nil {
		t.Fatalf("log entry is not valid JSON: %v\n%s", err, buf.String())
	}
	if _, ok := entry["line"]; ok {
		t.Errorf("line should be omitted, got %v", entry["line"])
	}
}

func TestJSONLoggerMergesFields(t *testing.T) {
	var buf bytes.Buffer
	mw := LoggerWithWriter(&buf, WithLogFormat(LogFormatJSON))

	ctx := NewMockContext()
	action := func(ctx Context) error {
		ctx.Set(FieldsKey, map[string]any{"moved": 3})
		return nil
	}
	if err := mw(action)(ctx); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry); err != nil {
		t.Fatalf("log entry is not valid JSON: %v\n%s", err, buf.String())
	}
	meta, _ := entry["metadata"].(map[string]any)
	if meta["moved"] != float64(3) {
		t.Errorf("expected merged field, got %v", entry["metadata"])
	}
}
