package types

import "time"

// ScheduleEntry pairs a device with the cron expression that reboots it
type ScheduleEntry struct {
	Host string `mapstructure:"host" json:"host"`
	Cron string `mapstructure:"cron" json:"cron"`
}

type SchedulerConfig struct {
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	ActionTimeout time.Duration `mapstructure:"action_timeout"` // 0 disables the per-reboot timeout
}

type ShutdownConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}
