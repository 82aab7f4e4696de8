// config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/amir-mohammad-HP/adbreboot/internal/bridge"
	"github.com/amir-mohammad-HP/adbreboot/internal/schedule"
	"github.com/amir-mohammad-HP/adbreboot/internal/types"
	"github.com/spf13/viper"
)

// DefaultConfigPath is where the add-on supervisor writes the options file
const DefaultConfigPath = "/data/options.json"

const envPrefix = "ADBREBOOT"

// ErrConfig marks every configuration load or validation failure
var ErrConfig = errors.New("invalid configuration")

// Default configuration values
var defaultConfig = types.Config{
	AppName:  "adbreboot",
	LogLevel: "info",
	Scheduler: types.SchedulerConfig{
		PollInterval:  time.Second,
		ActionTimeout: 30 * time.Second,
	},
	Bridge: types.BridgeConfig{
		Driver:      bridge.DriverADB,
		ADBHost:     bridge.DefaultADBHost,
		ADBPort:     bridge.DefaultADBPort,
		DefaultPort: bridge.DefaultDevicePort,
		ADBPath:     "adb",
		Container:   "",
		SocketPath:  "",
	},
	Shutdown: types.ShutdownConfig{
		Timeout: 10 * time.Second,
	},
	Logger: types.LoggerConfig{
		Level:           "",
		Format:          "text",
		Output:          "stderr",
		TimestampFormat: "2006-01-02 15:04:05.000",
		ShowCaller:      false,
		Colors:          false,
	},
}

// getSystemConfigPath returns the OS-specific configuration directory
func getSystemConfigPath() (string, error) {
	switch runtime.GOOS {
	case "windows":
		programData := os.Getenv("PROGRAMDATA")
		if programData == "" {
			programData = "C:\\ProgramData"
		}
		return filepath.Join(programData, "adbreboot"), nil

	case "darwin":
		return "/Library/Application Support/adbreboot", nil

	case "linux", "freebsd", "openbsd", "netbsd":
		return "/etc/adbreboot", nil

	default:
		return "", fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}
}

// getConfigPaths returns all possible configuration file paths in order of precedence
func getConfigPaths() []string {
	paths := []string{DefaultConfigPath}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "adbreboot", "options.json"))
	}

	if systemConfigDir, err := getSystemConfigPath(); err == nil {
		paths = append(paths, filepath.Join(systemConfigDir, "options.json"))
	}

	return paths
}

// ResolvePath picks the configuration file: an explicit path, then
// ADBREBOOT_CONFIG, then the first existing file among the search paths.
// When nothing exists the add-on default is returned so the caller reports it.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(envPrefix + "_CONFIG"); env != "" {
		return env
	}
	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return DefaultConfigPath
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", defaultConfig.AppName)
	v.SetDefault("log_level", defaultConfig.LogLevel)
	v.SetDefault("scheduler.poll_interval", defaultConfig.Scheduler.PollInterval)
	v.SetDefault("scheduler.action_timeout", defaultConfig.Scheduler.ActionTimeout)
	v.SetDefault("bridge.driver", defaultConfig.Bridge.Driver)
	v.SetDefault("bridge.adb_host", defaultConfig.Bridge.ADBHost)
	v.SetDefault("bridge.adb_port", defaultConfig.Bridge.ADBPort)
	v.SetDefault("bridge.default_port", defaultConfig.Bridge.DefaultPort)
	v.SetDefault("bridge.adb_path", defaultConfig.Bridge.ADBPath)
	v.SetDefault("bridge.container", defaultConfig.Bridge.Container)
	v.SetDefault("bridge.socket_path", defaultConfig.Bridge.SocketPath)
	v.SetDefault("shutdown.timeout", defaultConfig.Shutdown.Timeout)
	v.SetDefault("logger.level", defaultConfig.Logger.Level)
	v.SetDefault("logger.format", defaultConfig.Logger.Format)
	v.SetDefault("logger.output", defaultConfig.Logger.Output)
	v.SetDefault("logger.file_path", defaultConfig.Logger.FilePath)
	v.SetDefault("logger.timestamp_format", defaultConfig.Logger.TimestampFormat)
	v.SetDefault("logger.show_caller", defaultConfig.Logger.ShowCaller)
	v.SetDefault("logger.colors", defaultConfig.Logger.Colors)
}

// Load reads and validates the JSON configuration at path
func Load(path string) (*types.Config, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: configuration file not found: %s", ErrConfig, path)
		}
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: failed to read config file: %w", ErrConfig, err)
	}

	// Environment variables will be prefixed with ADBREBOOT_
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := checkRebootShape(v.Get("reboot")); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal config: %w", ErrConfig, err)
	}

	if cfg.Logger.Level == "" {
		cfg.Logger.Level = cfg.LogLevel
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	return &cfg, nil
}

// checkRebootShape enforces the JSON shape of the reboot list before decoding,
// so loosely typed values are rejected instead of coerced.
func checkRebootShape(raw any) error {
	if raw == nil {
		return errors.New("reboot: field required")
	}

	items, ok := raw.([]any)
	if !ok {
		return fmt.Errorf("reboot: must be a list, got %T", raw)
	}

	for i, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			return fmt.Errorf("reboot[%d]: must be an object, got %T", i, item)
		}
		for _, key := range []string{"host", "cron"} {
			value, present := entry[key]
			if !present {
				return fmt.Errorf("reboot[%d].%s: field required", i, key)
			}
			if _, ok := value.(string); !ok {
				return fmt.Errorf("reboot[%d].%s: must be a string, got %T", i, key, value)
			}
		}
	}

	return nil
}

// Validate checks values that decoding alone cannot catch
func Validate(cfg *types.Config) error {
	var errs []error

	for i, entry := range cfg.Reboot {
		if strings.TrimSpace(entry.Host) == "" {
			errs = append(errs, fmt.Errorf("reboot[%d].host: must not be empty", i))
		} else if _, err := bridge.NormalizeHost(entry.Host, cfg.Bridge.DefaultPort); err != nil {
			errs = append(errs, fmt.Errorf("reboot[%d].host: %w", i, err))
		}

		if _, err := schedule.Parse(entry.Cron); err != nil {
			errs = append(errs, fmt.Errorf("reboot[%d].cron: %w", i, err))
		}
	}

	if cfg.Scheduler.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("scheduler.poll_interval: must be positive"))
	}
	if cfg.Scheduler.ActionTimeout < 0 {
		errs = append(errs, fmt.Errorf("scheduler.action_timeout: must not be negative"))
	}

	switch cfg.Bridge.Driver {
	case bridge.DriverADB, bridge.DriverExec:
	case bridge.DriverDocker:
		if cfg.Bridge.Container == "" {
			errs = append(errs, fmt.Errorf("bridge.container: required for the %s driver", bridge.DriverDocker))
		}
	default:
		errs = append(errs, fmt.Errorf("bridge.driver: unknown driver %q", cfg.Bridge.Driver))
	}

	return errors.Join(errs...)
}

// CreateDefaultConfig writes a sample configuration file to path
func CreateDefaultConfig(path string) error {
	if path == "" {
		systemConfigDir, err := getSystemConfigPath()
		if err != nil {
			return err
		}
		path = filepath.Join(systemConfigDir, "options.json")
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	if err := os.WriteFile(path, []byte(DEFAULT_CONFIG_JSON), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
