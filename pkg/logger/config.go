package logger

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/amir-mohammad-HP/adbreboot/internal/types"
)

// DefaultConfig returns the default logger configuration
func DefaultConfig() *types.LoggerConfig {
	return &types.LoggerConfig{
		Level:           "info",
		Format:          "text",
		Output:          "stderr",
		FilePath:        "",
		TimestampFormat: "2006-01-02 15:04:05.000",
		ShowCaller:      false,
		Colors:          false,
	}
}

// getDefaultLogPath returns the default log file path based on OS
func getDefaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		programData := os.Getenv("PROGRAMDATA")
		if programData == "" {
			programData = "C:\\ProgramData"
		}
		return filepath.Join(programData, "adbreboot", "logs", "adbreboot.log")
	default: // linux, darwin and other unix-like
		return "/var/log/adbreboot.log"
	}
}
