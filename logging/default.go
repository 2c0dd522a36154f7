package logging

import (
	"context"
	"fmt"
	"io"
	"log"
	"maps"
	"os"
	"sort"
	"strings"
)

// DefaultLogger writes leveled lines through the standard log package.
// Debug/Info -> stdout (no color)
// Warn -> stderr (yellow)
// Error -> stderr (red)
// Fatal -> stderr (bold red), then exits
type DefaultLogger struct {
	stdoutLogger *log.Logger
	stderrLogger *log.Logger
	level        *Level
	fields       Fields
	useColors    bool
	exit         func(int)
}

// NewDefaultLogger creates a new default logger, colored when stdout is a terminal
func NewDefaultLogger() *DefaultLogger {
	l := NewWriterLogger(os.Stdout, os.Stderr)
	l.useColors = isTerminal()
	return l
}

// NewDefaultLoggerNoColor creates a new default logger without colored output
func NewDefaultLoggerNoColor() *DefaultLogger {
	return NewWriterLogger(os.Stdout, os.Stderr)
}

// NewWriterLogger creates an uncolored logger writing to the given streams.
func NewWriterLogger(stdout, stderr io.Writer) *DefaultLogger {
	level := InfoLevel
	return &DefaultLogger{
		stdoutLogger: log.New(stdout, "", log.LstdFlags),
		stderrLogger: log.New(stderr, "", log.LstdFlags),
		level:        &level,
		fields:       make(Fields),
		exit:         os.Exit,
	}
}

func isTerminal() bool {
	if fileInfo, _ := os.Stdout.Stat(); fileInfo != nil {
		return (fileInfo.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

func (d *DefaultLogger) formatMessage(level Level, err error, msg string, fields ...Fields) string {
	merged := make(Fields, len(d.fields))
	maps.Copy(merged, d.fields)
	for _, f := range fields {
		maps.Copy(merged, f)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", level.String(), msg)
	if err != nil {
		fmt.Fprintf(&b, ": %v", err)
	}

	// sorted keys keep lines stable for grepping and tests
	if len(merged) > 0 {
		keys := make([]string, 0, len(merged))
		for k := range merged {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, merged[k])
		}
	}

	line := b.String()
	if d.useColors {
		switch level {
		case WarnLevel:
			line = ColorYellow + line + ColorReset
		case ErrorLevel:
			line = ColorRed + line + ColorReset
		case FatalLevel:
			line = ColorBold + ColorRed + line + ColorReset
		}
	}
	return line
}

func (d *DefaultLogger) log(level Level, err error, msg string, fields ...Fields) {
	if level < *d.level {
		return
	}

	line := d.formatMessage(level, err, msg, fields...)

	switch level {
	case DebugLevel, InfoLevel:
		d.stdoutLogger.Println(line)
	case WarnLevel, ErrorLevel:
		d.stderrLogger.Println(line)
	case FatalLevel:
		d.stderrLogger.Println(line)
		d.exit(1)
	}
}

func (d *DefaultLogger) Debug(msg string, fields ...Fields) {
	d.log(DebugLevel, nil, msg, fields...)
}

func (d *DefaultLogger) Info(msg string, fields ...Fields) {
	d.log(InfoLevel, nil, msg, fields...)
}

func (d *DefaultLogger) Warn(msg string, fields ...Fields) {
	d.log(WarnLevel, nil, msg, fields...)
}

func (d *DefaultLogger) Error(err error, msg string, fields ...Fields) {
	d.log(ErrorLevel, err, msg, fields...)
}

func (d *DefaultLogger) Fatal(err error, msg string, fields ...Fields) {
	d.log(FatalLevel, err, msg, fields...)
}

// WithFields returns a child logger. Children share the parent's level, so
// SetLevel on the global logger also affects component loggers derived from it.
func (d *DefaultLogger) WithFields(fields Fields) Logger {
	newFields := make(Fields, len(d.fields)+len(fields))
	maps.Copy(newFields, d.fields)
	maps.Copy(newFields, fields)

	return &DefaultLogger{
		stdoutLogger: d.stdoutLogger,
		stderrLogger: d.stderrLogger,
		level:        d.level,
		fields:       newFields,
		useColors:    d.useColors,
		exit:         d.exit,
	}
}

func (d *DefaultLogger) WithContext(ctx context.Context) Logger {
	if fields, ok := fieldsFromContext(ctx); ok {
		return d.WithFields(fields)
	}
	return d
}

func (d *DefaultLogger) SetLevel(level Level) {
	*d.level = level
}

// NoOpLogger discards everything. Tests and library callers that do not want
// output install it with SetGlobalLogger(nil) or pass it explicitly.
type NoOpLogger struct{}

func (n *NoOpLogger) Debug(msg string, fields ...Fields)            {}
func (n *NoOpLogger) Info(msg string, fields ...Fields)             {}
func (n *NoOpLogger) Warn(msg string, fields ...Fields)             {}
func (n *NoOpLogger) Error(err error, msg string, fields ...Fields) {}
func (n *NoOpLogger) Fatal(err error, msg string, fields ...Fields) {}
func (n *NoOpLogger) WithFields(fields Fields) Logger               { return n }
func (n *NoOpLogger) WithContext(ctx context.Context) Logger        { return n }
func (n *NoOpLogger) SetLevel(level Level)                          {}
