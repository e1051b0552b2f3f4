// Package output provides logging for biomeci, writing plain messages for
// humans and workflow commands for the CI platform's log processor.
package output

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"
)

// simpleHandler is a custom slog handler that writes messages without timestamps or level prefixes
type simpleHandler struct {
	writer    io.Writer
	debugMode bool
}

func (h *simpleHandler) Enabled(_ context.Context, level slog.Level) bool {
	if level == slog.LevelDebug {
		return h.debugMode
	}
	return true
}

func (h *simpleHandler) Handle(_ context.Context, record slog.Record) error {
	_, err := fmt.Fprintln(h.writer, record.Message)
	return err
}

func (h *simpleHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return h
}

func (h *simpleHandler) WithGroup(_ string) slog.Handler {
	return h
}

// createLumberjackLogger creates a lumberjack logger with configuration from environment variables
func createLumberjackLogger(logFilePath string) *lumberjack.Logger {
	config := &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    1,
		MaxBackups: 2,
		MaxAge:     30,
		Compress:   false,
	}

	if maxSizeStr := os.Getenv("BIOMECI_LOG_MAX_SIZE"); maxSizeStr != "" {
		if maxSize, err := strconv.Atoi(maxSizeStr); err == nil && maxSize > 0 {
			config.MaxSize = maxSize
		}
	}

	if maxBackupsStr := os.Getenv("BIOMECI_LOG_MAX_BACKUPS"); maxBackupsStr != "" {
		if maxBackups, err := strconv.Atoi(maxBackupsStr); err == nil && maxBackups >= 0 {
			config.MaxBackups = maxBackups
		}
	}

	return config
}

// Splog provides structured logging and output
type Splog struct {
	logger    *slog.Logger
	writer    io.Writer
	logWriter io.WriteCloser
	ciMode    bool // emit workflow commands instead of decorated text
}

// NewSplog creates a new splog instance writing to stdout. Debug messages are
// enabled when the DEBUG environment variable is set; a rotating file log is
// added when BIOMECI_LOG_FILE is set. Workflow commands (::group::, ::error::)
// are emitted only when stdout is not a terminal.
func NewSplog() *Splog {
	ciMode := !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd())
	return newSplog(os.Stdout, ciMode, os.Getenv("BIOMECI_LOG_FILE"))
}

// NewSplogWriter creates a splog writing to an arbitrary writer, for tests.
func NewSplogWriter(w io.Writer, ciMode bool) *Splog {
	return newSplog(w, ciMode, "")
}

func newSplog(w io.Writer, ciMode bool, logFilePath string) *Splog {
	splog := &Splog{writer: w, ciMode: ciMode}

	handler := &simpleHandler{
		writer:    w,
		debugMode: os.Getenv("DEBUG") != "",
	}
	splog.logger = slog.New(handler)

	if logFilePath != "" {
		lj := createLumberjackLogger(logFilePath)
		splog.logWriter = lj
		fileHandler := slog.NewTextHandler(lj, &slog.HandlerOptions{Level: slog.LevelDebug})
		splog.logger = slog.New(&teeHandler{console: handler, file: fileHandler})
	}

	return splog
}

// teeHandler fans out log records to the console and file handlers
type teeHandler struct {
	console slog.Handler
	file    slog.Handler
}

func (h *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.console.Enabled(ctx, level) || h.file.Enabled(ctx, level)
}

func (h *teeHandler) Handle(ctx context.Context, record slog.Record) error {
	if h.console.Enabled(ctx, record.Level) {
		if err := h.console.Handle(ctx, record); err != nil {
			return err
		}
	}
	return h.file.Handle(ctx, record)
}

func (h *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &teeHandler{console: h.console.WithAttrs(attrs), file: h.file.WithAttrs(attrs)}
}

func (h *teeHandler) WithGroup(name string) slog.Handler {
	return &teeHandler{console: h.console.WithGroup(name), file: h.file.WithGroup(name)}
}

func (s *Splog) logMessage(level slog.Level, msg string) {
	s.logger.Log(context.Background(), level, msg)
}

func sprintf(format string, args ...interface{}) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

// Info writes an info message
func (s *Splog) Info(format string, args ...interface{}) {
	s.logMessage(slog.LevelInfo, sprintf(format, args...))
}

// Debug writes a debug message
func (s *Splog) Debug(format string, args ...interface{}) {
	s.logMessage(slog.LevelDebug, sprintf(format, args...))
}

// Warn writes a warning message. In CI mode it is surfaced as a workflow
// warning annotation.
func (s *Splog) Warn(format string, args ...interface{}) {
	msg := sprintf(format, args...)
	if s.ciMode {
		s.logMessage(slog.LevelWarn, "::warning::"+escapeData(msg))
		return
	}
	s.logMessage(slog.LevelWarn, "⚠️  "+msg)
}

// Group opens a collapsible log group in CI mode; plain header otherwise.
func (s *Splog) Group(title string) {
	if s.ciMode {
		s.logMessage(slog.LevelInfo, "::group::"+escapeData(title))
		return
	}
	s.logMessage(slog.LevelInfo, "--- "+title)
}

// EndGroup closes the current log group.
func (s *Splog) EndGroup() {
	if s.ciMode {
		s.logMessage(slog.LevelInfo, "::endgroup::")
	}
}

// SetFailed reports a fatal error. In CI mode it emits an error annotation so
// the platform marks the step failed with the message attached.
func (s *Splog) SetFailed(err error) {
	if s.ciMode {
		s.logMessage(slog.LevelError, "::error::"+escapeData(err.Error()))
		return
	}
	s.logMessage(slog.LevelError, "❌ "+err.Error())
}

// Newline writes a newline
func (s *Splog) Newline() {
	_, _ = fmt.Fprintln(s.writer)
}

// Close closes the log file if one was opened
func (s *Splog) Close() error {
	if s.logWriter != nil {
		return s.logWriter.Close()
	}
	return nil
}

// escapeData escapes a message for use in a workflow command, which is a
// single log line terminated by %, \r and \n escapes.
func escapeData(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	s = strings.ReplaceAll(s, "\n", "%0A")
	return s
}
