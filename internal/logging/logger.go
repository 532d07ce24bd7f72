// Package logging provides the structured logger used across splicer. The
// Logger interface is context-first; the default implementation is backed by
// zap.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents different log levels
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// ParseLevel converts a configuration string into a LogLevel.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Logger interface for structured logging
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...interface{})
	Info(ctx context.Context, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
	Error(ctx context.Context, err error, msg string, fields ...interface{})

	With(fields ...interface{}) Logger
	WithComponent(component string) Logger
}

// SplicerLogger implements Logger on top of zap.
type SplicerLogger struct {
	logger    *zap.Logger
	level     zap.AtomicLevel
	component string
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level     LogLevel
	Format    string // "json" or "console"
	Output    io.Writer
	AddSource bool
	Component string
}

// DefaultConfig returns default logger configuration
func DefaultConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:  LevelInfo,
		Format: "console",
		Output: os.Stderr,
	}
}

// NewLogger creates a new structured logger
func NewLogger(config *LoggerConfig) *SplicerLogger {
	if config == nil {
		config = DefaultConfig()
	}
	output := config.Output
	if output == nil {
		output = os.Stderr
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339)

	var encoder zapcore.Encoder
	if config.Format == "json" {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	level := zap.NewAtomicLevelAt(config.Level.zapLevel())
	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(output)), level)

	opts := []zap.Option{}
	if config.AddSource {
		opts = append(opts, zap.AddCaller(), zap.AddCallerSkip(2))
	}

	logger := zap.New(core, opts...)
	if config.Component != "" {
		logger = logger.With(zap.String("component", config.Component))
	}

	return &SplicerLogger{
		logger:    logger,
		level:     level,
		component: config.Component,
	}
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() *SplicerLogger {
	return &SplicerLogger{
		logger: zap.NewNop(),
		level:  zap.NewAtomicLevelAt(zapcore.FatalLevel),
	}
}

// SetLevel changes the minimum level at runtime.
func (l *SplicerLogger) SetLevel(level LogLevel) {
	l.level.SetLevel(level.zapLevel())
}

// Sync flushes buffered entries.
func (l *SplicerLogger) Sync() error {
	return l.logger.Sync()
}

// Debug logs a debug message
func (l *SplicerLogger) Debug(ctx context.Context, msg string, fields ...interface{}) {
	l.log(ctx, zapcore.DebugLevel, nil, msg, fields...)
}

// Info logs an info message
func (l *SplicerLogger) Info(ctx context.Context, msg string, fields ...interface{}) {
	l.log(ctx, zapcore.InfoLevel, nil, msg, fields...)
}

// Warn logs a warning message
func (l *SplicerLogger) Warn(ctx context.Context, err error, msg string, fields ...interface{}) {
	l.log(ctx, zapcore.WarnLevel, err, msg, fields...)
}

// Error logs an error message
func (l *SplicerLogger) Error(ctx context.Context, err error, msg string, fields ...interface{}) {
	l.log(ctx, zapcore.ErrorLevel, err, msg, fields...)
}

// With creates a new logger with additional fields
func (l *SplicerLogger) With(fields ...interface{}) Logger {
	return &SplicerLogger{
		logger:    l.logger.With(toZapFields(fields)...),
		level:     l.level,
		component: l.component,
	}
}

// WithComponent creates a new logger with component context
func (l *SplicerLogger) WithComponent(component string) Logger {
	return &SplicerLogger{
		logger:    l.logger.With(zap.String("component", component)),
		level:     l.level,
		component: component,
	}
}

type ctxKey struct{}

// WithRunID stores a run identifier that every log line written with the
// returned context carries.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func (l *SplicerLogger) log(ctx context.Context, level zapcore.Level, err error, msg string, fields ...interface{}) {
	ce := l.logger.Check(level, msg)
	if ce == nil {
		return
	}

	zfields := toZapFields(fields)
	if err != nil {
		zfields = append(zfields, zap.Error(err))
	}
	if ctx != nil {
		if id, ok := ctx.Value(ctxKey{}).(string); ok && id != "" {
			zfields = append(zfields, zap.String("run_id", id))
		}
	}

	ce.Write(zfields...)
}

// toZapFields turns alternating key/value pairs into zap fields. Non-string
// keys and a trailing key without value are dropped.
func toZapFields(fields []interface{}) []zap.Field {
	out := make([]zap.Field, 0, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		out = append(out, zap.Any(key, fields[i+1]))
	}

	return out
}

// PerfLogger tracks the duration of one operation.
type PerfLogger struct {
	Logger
	startTime time.Time
	operation string
}

// StartOperation begins performance tracking
func StartOperation(logger Logger, operation string) *PerfLogger {
	return &PerfLogger{
		Logger:    logger.With("operation", operation),
		startTime: time.Now(),
		operation: operation,
	}
}

// End completes performance tracking and logs the duration
func (p *PerfLogger) End(ctx context.Context, fields ...interface{}) time.Duration {
	duration := time.Since(p.startTime)
	fields = append(fields, "duration_ms", duration.Milliseconds())
	p.Debug(ctx, "Operation completed", fields...)

	return duration
}

// EndWithError completes performance tracking and logs an error
func (p *PerfLogger) EndWithError(ctx context.Context, err error) time.Duration {
	duration := time.Since(p.startTime)
	p.Error(ctx, err, "Operation failed", "duration_ms", duration.Milliseconds())

	return duration
}
