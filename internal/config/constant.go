package config

var DEFAULT_CONFIG_JSON = `{
  "log_level": "info",
  "reboot": [
    { "host": "192.168.1.50", "cron": "03:00" },
    { "host": "192.168.1.51:5555", "cron": "30 4 * * 1" }
  ],
  "scheduler": {
    "poll_interval": "1s",
    "action_timeout": "30s"
  },
  "bridge": {
    "driver": "adb",
    "adb_host": "127.0.0.1",
    "adb_port": 5037,
    "default_port": 5555
  },
  "logger": {
    "format": "text",
    "output": "stderr"
  }
}
`
