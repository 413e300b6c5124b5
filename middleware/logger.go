package middleware

import (
	"encoding/json"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/dzonerzy/go-argline/internal/pool"
)

// Metadata keys read by the logger after the target returns.
const (
	// RequestIDKey holds a string copied into the entry as "request_id".
	RequestIDKey = "logger.request_id"
	// FieldsKey holds a map[string]any merged into the entry metadata.
	FieldsKey = "logger.fields"
)

var requestInfoPool = pool.NewPoolWithReset(
	func() *RequestInfo {
		return &RequestInfo{Metadata: make(map[string]any, 4)}
	},
	func(info *RequestInfo) {
		*info = RequestInfo{Metadata: info.Metadata}
		clear(info.Metadata)
	},
)

// entryLevel is the outcome an entry reports.
type entryLevel int

const (
	entryStart entryLevel = iota
	entrySuccess
	entryError
)

func (l entryLevel) String() string {
	switch l {
	case entryStart:
		return "START"
	case entryError:
		return "ERROR"
	default:
		return "SUCCESS"
	}
}

// threshold is the configured level at which the entry is written.
func (l entryLevel) threshold() LogLevel {
	switch l {
	case entryStart:
		return LogLevelDebug
	case entryError:
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// sink writes invocation entries in the configured format.
type sink struct {
	w      io.Writer
	config *MiddlewareConfig
}

func newSink(w io.Writer, options []MiddlewareOption) *sink {
	config := DefaultConfig()
	for _, option := range options {
		option(config)
	}
	return &sink{w: w, config: config}
}

func (s *sink) enabled() bool {
	return s.w != nil && s.config.LogLevel != LogLevelNone
}

func (s *sink) write(info *RequestInfo, level entryLevel) {
	if s.config.LogLevel < level.threshold() {
		return
	}

	buf := pool.GetBuffer(256)
	defer pool.PutBuffer(buf)

	if s.config.LogFormat == LogFormatJSON {
		*buf = s.appendJSON(*buf, info, level)
	} else {
		*buf = s.appendText(*buf, info, level)
	}
	//nolint:errcheck,gosec // Logging is best-effort; ignore write errors.
	s.w.Write(*buf)
}

// appendText renders
//
//	[2006-01-02 15:04:05] SUCCESS command=move duration=1ms line="2 -3"
func (s *sink) appendText(b []byte, info *RequestInfo, level entryLevel) []byte {
	b = append(b, '[')
	b = info.StartTime.AppendFormat(b, time.DateTime)
	b = append(b, "] "...)
	b = append(b, level.String()...)
	b = append(b, " command="...)
	b = append(b, info.Command...)
	if info.Duration > 0 {
		b = append(b, " duration="...)
		b = append(b, info.Duration.String()...)
	}
	if s.config.IncludeLine && info.Line != "" {
		b = append(b, " line="...)
		b = strconv.AppendQuote(b, info.Line)
	}
	if info.Error != nil {
		b = append(b, " error="...)
		b = strconv.AppendQuote(b, info.Error.Error())
	}
	return append(b, '\n')
}

func appendJSONString(b []byte, s string) []byte {
	enc, _ := json.Marshal(s)
	return append(b, enc...)
}

func (s *sink) appendJSON(b []byte, info *RequestInfo, level entryLevel) []byte {
	b = append(b, `{"timestamp":`...)
	b = appendJSONString(b, info.StartTime.Format(time.RFC3339))
	b = append(b, `,"level":`...)
	b = appendJSONString(b, level.String())
	b = append(b, `,"command":`...)
	b = appendJSONString(b, info.Command)
	if info.Duration > 0 {
		b = append(b, `,"duration_ms":`...)
		b = strconv.AppendInt(b, info.Duration.Milliseconds(), 10)
	}
	if s.config.IncludeLine && info.Line != "" {
		b = append(b, `,"line":`...)
		b = appendJSONString(b, info.Line)
	}
	if info.Error != nil {
		b = append(b, `,"error":`...)
		b = appendJSONString(b, info.Error.Error())
	}
	if len(info.Metadata) > 0 {
		if meta, err := json.Marshal(info.Metadata); err == nil {
			b = append(b, `,"metadata":`...)
			b = append(b, meta...)
		}
	}
	return append(b, "}\n"...)
}

func (s *sink) middleware() Middleware {
	return func(next ActionFunc) ActionFunc {
		return func(ctx Context) error {
			if !s.enabled() {
				return next(ctx)
			}

			info := requestInfoPool.Get()
			defer requestInfoPool.Put(info)
			info.Command = getCommandName(ctx)
			info.Line = ctx.Line()
			info.StartTime = time.Now()
			s.write(info, entryStart)

			err := next(ctx)

			info.Duration = time.Since(info.StartTime)
			info.Error = err
			if id, ok := ctx.Get(RequestIDKey).(string); ok {
				info.Metadata["request_id"] = id
			}
			if fields, ok := ctx.Get(FieldsKey).(map[string]any); ok {
				for k, v := range fields {
					info.Metadata[k] = v
				}
			}

			level := entrySuccess
			if err != nil {
				level = entryError
			}
			s.write(info, level)
			return err
		}
	}
}

func outputWriter(output LogOutput) io.Writer {
	switch output {
	case LogOutputStdout:
		return os.Stdout
	case LogOutputNone:
		return nil
	default:
		return os.Stderr
	}
}

// Logger logs every target invocation to the configured output.
func Logger(options ...MiddlewareOption) Middleware {
	s := newSink(nil, options)
	s.w = outputWriter(s.config.LogOutput)
	return s.middleware()
}

// LoggerWithWriter is Logger writing to w.
func LoggerWithWriter(w io.Writer, options ...MiddlewareOption) Middleware {
	return newSink(w, options).middleware()
}

// DebugLogger also logs the start of each invocation.
func DebugLogger() Middleware {
	return Logger(WithLogLevel(LogLevelDebug))
}

// InfoLogger logs successes and errors.
func InfoLogger() Middleware {
	return Logger(WithLogLevel(LogLevelInfo))
}

// ErrorLogger logs errors only.
func ErrorLogger() Middleware {
	return Logger(WithLogLevel(LogLevelError))
}

// JSONLogger logs one JSON object per line.
func JSONLogger() Middleware {
	return Logger(WithLogFormat(LogFormatJSON))
}

// SilentLogger discards everything; handy in tests and benchmarks.
func SilentLogger() Middleware {
	return Logger(func(config *MiddlewareConfig) {
		config.LogOutput = LogOutputNone
	})
}
