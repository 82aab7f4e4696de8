package bridge

import (
	"context"
	"fmt"
	"io"

	"github.com/amir-mohammad-HP/adbreboot/internal/types"
	"github.com/amir-mohammad-HP/adbreboot/pkg/docker"
	"github.com/amir-mohammad-HP/adbreboot/pkg/logger"
)

const (
	DriverADB    = "adb"
	DriverExec   = "exec"
	DriverDocker = "docker"
)

// ContainerRunner runs adb inside a container through the Docker API
type ContainerRunner struct {
	executor  *docker.Executor
	container string
}

func NewContainerRunner(executor *docker.Executor, container string) *ContainerRunner {
	return &ContainerRunner{executor: executor, container: container}
}

func (r *ContainerRunner) Run(ctx context.Context, argv []string) (string, error) {
	return r.executor.Exec(ctx, r.container, argv)
}

// New builds the Client selected by cfg.Driver. The returned closer is
// nil for drivers that hold no resources.
func New(ctx context.Context, cfg types.BridgeConfig, log logger.Logger) (Client, io.Closer, error) {
	switch cfg.Driver {
	case DriverADB, "":
		client := NewADBClient(cfg.ADBHost, cfg.ADBPort)
		log.Debug("bridge | using adb server at %s", client.addr)
		return client, nil, nil

	case DriverExec:
		log.Debug("bridge | using local adb binary %q", cfg.ADBPath)
		return NewCommandClient(ExecRunner{}, cfg.ADBPath), nil, nil

	case DriverDocker:
		if cfg.Container == "" {
			return nil, nil, fmt.Errorf("bridge driver %q requires a container", DriverDocker)
		}

		executor, err := docker.NewExecutor(logger.WithLogger(ctx, log), cfg.SocketPath)
		if err != nil {
			return nil, nil, err
		}
		if err := executor.CheckRunning(ctx, cfg.Container); err != nil {
			log.Warn("bridge | %s", err.Error())
		}

		log.Debug("bridge | using adb inside container %s", cfg.Container)
		runner := NewContainerRunner(executor, cfg.Container)
		return NewCommandClient(runner, cfg.ADBPath), executor, nil

	default:
		return nil, nil, fmt.Errorf("unknown bridge driver %q", cfg.Driver)
	}
}
