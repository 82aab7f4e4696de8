package types

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level           string `mapstructure:"level"`            // Log level: debug, info, warn, error, fatal
	Format          string `mapstructure:"format"`           // Output format: text, json
	Output          string `mapstructure:"output"`           // Output: stdout, stderr, file, null
	FilePath        string `mapstructure:"file_path"`        // File path for file output
	TimestampFormat string `mapstructure:"timestamp_format"` // Time format
	ShowCaller      bool   `mapstructure:"show_caller"`      // Show caller information
	Colors          bool   `mapstructure:"colors"`           // Enable colors in console
}
