package types

type Config struct {
	AppName   string          `mapstructure:"app_name"`
	LogLevel  string          `mapstructure:"log_level"`
	Reboot    []ScheduleEntry `mapstructure:"reboot"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Bridge    BridgeConfig    `mapstructure:"bridge"`
	Shutdown  ShutdownConfig  `mapstructure:"shutdown"`
	Logger    LoggerConfig    `mapstructure:"logger"`
}
