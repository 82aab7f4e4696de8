package logger

import (
	"io"
	"sync"

	"github.com/amir-mohammad-HP/adbreboot/internal/types"
	"go.uber.org/zap"
)

// LogLevel represents the severity level of log messages
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

// Logger interface defines the contract for all loggers
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)

	// Additional utility methods
	WithField(key string, value any) Logger
	WithFields(fields map[string]any) Logger
	SetLevel(level LogLevel)
	GetLevel() LogLevel
	SetOutput(w io.Writer)
}

// ZapLogger implements Logger on top of a zap sugared logger
type ZapLogger struct {
	config *types.LoggerConfig
	sugar  *zap.SugaredLogger
	level  zap.AtomicLevel
	mu     sync.RWMutex
	fields map[string]any
	closer io.Closer
}
