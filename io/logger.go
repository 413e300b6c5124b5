package arglineio

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelSuccess
	LevelWarning
	LevelError
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelSuccess:
		return "SUCCESS"
	case LevelWarning:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LogFormat defines the output format for log messages
type LogFormat int

const (
	LogFormatSymbols LogFormat = iota // ● ◆ ✓ ▲ ✗
	LogFormatTagged                   // [DEBUG] [INFO] [SUCCESS] [WARN] [ERROR]
	LogFormatPlain                    // No prefix
)

// DebugEnv lowers the default level of new loggers to LevelDebug when set
// to a non-empty value other than "0".
const DebugEnv = "ARGLINE_DEBUG"

// Logger writes leveled messages to an IOManager and, optionally, to a
// rotating log file.
type Logger struct {
	io           *IOManager
	format       LogFormat
	prefixes     map[LogLevel]string
	minLevel     LogLevel
	withTime     bool
	timeFormat   string
	errorsStderr bool
	theme        Theme

	mu   sync.Mutex
	file io.WriteCloser
}

// NewLogger creates a new logger bound to the given IOManager
func NewLogger(m *IOManager) *Logger {
	l := &Logger{
		io:           m,
		minLevel:     LevelInfo,
		errorsStderr: true,
		timeFormat:   "15:04:05",
		theme:        DefaultTheme(),
	}
	if v := os.Getenv(DebugEnv); v != "" && v != "0" {
		l.minLevel = LevelDebug
	}
	return l.WithFormat(LogFormatSymbols)
}

func symbolPrefixes() map[LogLevel]string {
	return map[LogLevel]string{
		LevelDebug:   "●",
		LevelInfo:    "◆",
		LevelSuccess: "✓",
		LevelWarning: "▲",
		LevelError:   "✗",
	}
}

func taggedPrefixes() map[LogLevel]string {
	return map[LogLevel]string{
		LevelDebug:   "[DEBUG]",
		LevelInfo:    "[INFO]",
		LevelSuccess: "[SUCCESS]",
		LevelWarning: "[WARN]",
		LevelError:   "[ERROR]",
	}
}

// WithFormat sets the log format and returns the logger for chaining
func (l *Logger) WithFormat(format LogFormat) *Logger {
	l.format = format
	switch format {
	case LogFormatSymbols:
		l.prefixes = symbolPrefixes()
	case LogFormatTagged:
		l.prefixes = taggedPrefixes()
	case LogFormatPlain:
		l.prefixes = map[LogLevel]string{}
	}
	return l
}

// WithLevel drops messages below level.
func (l *Logger) WithLevel(level LogLevel) *Logger {
	l.minLevel = level
	return l
}

// Level returns the minimum level written.
func (l *Logger) Level() LogLevel { return l.minLevel }

// WithTimestamp enables or disables timestamp in log output
func (l *Logger) WithTimestamp(enabled bool) *Logger {
	l.withTime = enabled
	return l
}

// ErrorsToStderr controls whether errors and warnings go to stderr
func (l *Logger) ErrorsToStderr(enabled bool) *Logger {
	l.errorsStderr = enabled
	return l
}

// WithTheme sets the colors per level.
func (l *Logger) WithTheme(theme Theme) *Logger {
	l.theme = theme
	return l
}

// ToFile also writes every message, uncolored and timestamped, to path.
// The file is rotated once it grows past maxSizeMB megabytes, keeping
// maxBackups old files.
func (l *Logger) ToFile(path string, maxSizeMB, maxBackups int) *Logger {
	return l.ToWriter(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
	})
}

// ToWriter is ToFile for an arbitrary sink.
func (l *Logger) ToWriter(w io.WriteCloser) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		_ = l.file.Close()
	}
	l.file = w
	return l
}

// Close releases the file sink, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// Log outputs a log message at the specified level
func (l *Logger) Log(level LogLevel, format string, args ...any) {
	if level < l.minLevel {
		return
	}
	msg := fmt.Sprintf(format, args...)

	fmt.Fprintln(l.selectWriter(level), l.formatMessage(level, msg))

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		line := time.Now().Format(time.RFC3339) + " " + taggedPrefixes()[level] + " " + msg + "\n"
		_, _ = io.WriteString(l.file, line)
	}
}

func (l *Logger) formatMessage(level LogLevel, msg string) string {
	if strings.TrimSpace(msg) == "" {
		return msg
	}

	parts := make([]string, 0, 3)
	if prefix := l.prefixes[level]; prefix != "" {
		parts = append(parts, prefix)
	}
	if l.withTime {
		parts = append(parts, "["+time.Now().Format(l.timeFormat)+"]")
	}
	parts = append(parts, msg)
	return l.io.Style(l.theme.attrs(level)...).Sprint(strings.Join(parts, " "))
}

// selectWriter chooses stdout or stderr based on log level and configuration
func (l *Logger) selectWriter(level LogLevel) io.Writer {
	if l.errorsStderr && (level == LevelError || level == LevelWarning) {
		return l.io.Err()
	}
	return l.io.Out()
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...any) { l.Log(LevelDebug, format, args...) }

// Info logs an informational message
func (l *Logger) Info(format string, args ...any) { l.Log(LevelInfo, format, args...) }

// Success logs a success message
func (l *Logger) Success(format string, args ...any) { l.Log(LevelSuccess, format, args...) }

// Warning logs a warning message
func (l *Logger) Warning(format string, args ...any) { l.Log(LevelWarning, format, args...) }

// Error logs an error message
func (l *Logger) Error(format string, args ...any) { l.Log(LevelError, format, args...) }
