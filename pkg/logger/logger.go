package logger

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/amir-mohammad-HP/adbreboot/internal/types"
	"go.uber.org/zap/zapcore"
)

// createWriter creates the appropriate writer based on configuration.
// The returned closer is nil unless a file was opened.
func createWriter(config *types.LoggerConfig) (zapcore.WriteSyncer, io.Closer) {
	switch config.Output {
	case "stdout":
		return zapcore.Lock(os.Stdout), nil
	case "stderr":
		return zapcore.Lock(os.Stderr), nil
	case "file":
		dir := filepath.Dir(config.FilePath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Printf("Warning: Failed to create log directory %s: %v", dir, err)
			return zapcore.Lock(os.Stderr), nil
		}

		file, err := os.OpenFile(config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Printf("Warning: Failed to open log file %s: %v", config.FilePath, err)
			return zapcore.Lock(os.Stderr), nil
		}

		return zapcore.Lock(file), file
	case "null":
		return zapcore.AddSync(io.Discard), nil
	default:
		return zapcore.Lock(os.Stderr), nil
	}
}

// newEncoder builds the zap encoder for the configured format
func newEncoder(config *types.LoggerConfig) zapcore.Encoder {
	encCfg := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		CallerKey:      "caller",
		MessageKey:     "message",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	if config.Format == "json" {
		encCfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewJSONEncoder(encCfg)
	}

	colored := config.Colors && (config.Output == "stdout" || config.Output == "stderr")
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(config.TimestampFormat)
	encCfg.EncodeLevel = levelEncoder(colored)
	return zapcore.NewConsoleEncoder(encCfg)
}

// NullLogger is a logger that discards all messages (useful for testing)
type NullLogger struct{}

func (n *NullLogger) Debug(msg string, args ...any)           {}
func (n *NullLogger) Info(msg string, args ...any)            {}
func (n *NullLogger) Warn(msg string, args ...any)            {}
func (n *NullLogger) Error(msg string, args ...any)           {}
func (n *NullLogger) Fatal(msg string, args ...any)           {}
func (n *NullLogger) WithField(key string, value any) Logger  { return n }
func (n *NullLogger) WithFields(fields map[string]any) Logger { return n }
func (n *NullLogger) SetLevel(level LogLevel)                 {}
func (n *NullLogger) GetLevel() LogLevel                      { return INFO }
func (n *NullLogger) SetOutput(w io.Writer)                   {}

// NewNullLogger creates a logger that discards all output
func NewNullLogger() *NullLogger {
	return &NullLogger{}
}
