package types

// BridgeConfig selects and configures the device bridge driver
type BridgeConfig struct {
	Driver      string `mapstructure:"driver"`       // adb, exec, docker
	ADBHost     string `mapstructure:"adb_host"`     // ADB server address for the adb driver
	ADBPort     int    `mapstructure:"adb_port"`     // ADB server port for the adb driver
	DefaultPort int    `mapstructure:"default_port"` // Device port appended to bare hosts
	ADBPath     string `mapstructure:"adb_path"`     // adb binary for the exec and docker drivers
	Container   string `mapstructure:"container"`    // Container running adb for the docker driver
	SocketPath  string `mapstructure:"socket_path"`  // Docker socket, auto-detected if empty
}
