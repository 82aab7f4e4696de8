package logger

import (
	"io"
	"maps"
	"sort"

	"github.com/amir-mohammad-HP/adbreboot/internal/types"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a new ZapLogger with the specified log level
func New(level string) *ZapLogger {
	config := DefaultConfig()
	config.Level = level
	return NewWithConfig(config)
}

func NewWithConfig(config *types.LoggerConfig) *ZapLogger {
	// Ensure file path exists if using file output
	if config.Output == "file" && config.FilePath == "" {
		config.FilePath = getDefaultLogPath()
	}

	writer, closer := createWriter(config)
	l := &ZapLogger{
		config: config,
		level:  zap.NewAtomicLevelAt(ParseLogLevel(config.Level).zapLevel()),
		fields: make(map[string]any),
		closer: closer,
	}
	l.sugar = l.build(writer)
	return l
}

// DefaultLogger returns a text logger on stderr at INFO
func DefaultLogger() *ZapLogger {
	return New("INFO")
}

// NewWithWriter creates a text logger writing to w, mostly for tests
func NewWithWriter(w io.Writer, level string) *ZapLogger {
	config := DefaultConfig()
	config.Level = level
	config.Output = "writer"

	l := &ZapLogger{
		config: config,
		level:  zap.NewAtomicLevelAt(ParseLogLevel(level).zapLevel()),
		fields: make(map[string]any),
	}
	l.sugar = l.build(zapcore.AddSync(w))
	return l
}

func (l *ZapLogger) build(w zapcore.WriteSyncer) *zap.SugaredLogger {
	core := zapcore.NewCore(newEncoder(l.config), w, l.level)

	opts := []zap.Option{}
	if l.config.ShowCaller {
		opts = append(opts, zap.AddCaller(), zap.AddCallerSkip(1))
	}

	return zap.New(core, opts...).Sugar().With(fieldArgs(l.fields)...)
}

// fieldArgs flattens fields into sorted key/value pairs for zap
func fieldArgs(fields map[string]any) []any {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]any, 0, len(fields)*2)
	for _, k := range keys {
		args = append(args, k, fields[k])
	}
	return args
}

// Debug logs a debug message
func (l *ZapLogger) Debug(msg string, args ...any) {
	l.current().Debugf(msg, args...)
}

// Info logs an info message
func (l *ZapLogger) Info(msg string, args ...any) {
	l.current().Infof(msg, args...)
}

// Warn logs a warning message
func (l *ZapLogger) Warn(msg string, args ...any) {
	l.current().Warnf(msg, args...)
}

// Error logs an error message
func (l *ZapLogger) Error(msg string, args ...any) {
	l.current().Errorf(msg, args...)
}

// Fatal logs a fatal message and exits the program
func (l *ZapLogger) Fatal(msg string, args ...any) {
	l.current().Fatalf(msg, args...)
}

func (l *ZapLogger) current() *zap.SugaredLogger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sugar
}

// WithField returns a new logger with an additional field
func (l *ZapLogger) WithField(key string, value any) Logger {
	return l.WithFields(map[string]any{key: value})
}

// WithFields returns a new logger with additional fields
func (l *ZapLogger) WithFields(fields map[string]any) Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()

	newFields := make(map[string]any, len(l.fields)+len(fields))
	maps.Copy(newFields, l.fields)
	maps.Copy(newFields, fields)

	return &ZapLogger{
		config: l.config,
		sugar:  l.sugar.With(fieldArgs(fields)...),
		level:  l.level,
		fields: newFields,
	}
}

// SetLevel changes the log level, shared with loggers derived through WithField
func (l *ZapLogger) SetLevel(level LogLevel) {
	l.level.SetLevel(level.zapLevel())
}

// GetLevel returns the current log level
func (l *ZapLogger) GetLevel() LogLevel {
	return fromZapLevel(l.level.Level())
}

// SetOutput changes the output writer
func (l *ZapLogger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sugar = l.build(zapcore.AddSync(w))
}

// Sync flushes any buffered log entries
func (l *ZapLogger) Sync() error {
	return l.current().Sync()
}

// Close flushes the logger and releases the log file if one was opened
func (l *ZapLogger) Close() error {
	_ = l.Sync()
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}
