// pkg/docker/exec.go
package docker

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/amir-mohammad-HP/adbreboot/pkg/logger"
	dockerTypes "github.com/docker/docker/api/types"
	dockerClient "github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
)

// execAPI is the part of the Docker client the executor needs
type execAPI interface {
	ContainerInspect(ctx context.Context, containerID string) (dockerTypes.ContainerJSON, error)
	ContainerExecCreate(ctx context.Context, container string, config dockerTypes.ExecConfig) (dockerTypes.IDResponse, error)
	ContainerExecAttach(ctx context.Context, execID string, config dockerTypes.ExecStartCheck) (dockerTypes.HijackedResponse, error)
	ContainerExecInspect(ctx context.Context, execID string) (dockerTypes.ContainerExecInspect, error)
	Close() error
}

// Executor runs commands inside containers through the Docker Engine API
type Executor struct {
	client execAPI
	logger logger.Logger
}

// NewExecutor connects to the Docker daemon at socketPath, or at the
// platform default when socketPath is empty. It logs through the logger
// carried by ctx.
func NewExecutor(ctx context.Context, socketPath string) (*Executor, error) {
	log := logger.FromContext(ctx)

	var cli *dockerClient.Client
	var err error

	switch {
	case socketPath != "":
		cli, err = dockerClient.NewClientWithOpts(
			dockerClient.WithHost("unix://"+socketPath),
			dockerClient.WithAPIVersionNegotiation(),
		)
	case os.Getenv("DOCKER_HOST") != "":
		cli, err = dockerClient.NewClientWithOpts(
			dockerClient.FromEnv,
			dockerClient.WithAPIVersionNegotiation(),
		)
	default:
		cli, err = dockerClient.NewClientWithOpts(
			dockerClient.WithHost(getDefaultSocketPath()),
			dockerClient.WithAPIVersionNegotiation(),
		)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}

	// Test connection
	if _, err = cli.Ping(ctx); err != nil {
		log.Warn("Docker connection test failed %s", err.Error())
		log.Info("Trying alternative Docker socket paths...")
		cli.Close()

		cli, err = tryAlternativeSocketPaths(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Docker: %w", err)
		}
	}

	return newExecutor(cli, log), nil
}

func newExecutor(client execAPI, logger logger.Logger) *Executor {
	return &Executor{client: client, logger: logger}
}

// CheckRunning returns an error unless the container exists and is running
func (e *Executor) CheckRunning(ctx context.Context, containerID string) error {
	info, err := e.client.ContainerInspect(ctx, containerID)
	if err != nil {
		return fmt.Errorf("failed to inspect container %s: %w", containerID, err)
	}
	if info.ContainerJSONBase == nil || info.State == nil || !info.State.Running {
		return fmt.Errorf("container %s is not running", containerID)
	}
	return nil
}

// Exec runs cmd inside the container and returns stdout and stderr combined
func (e *Executor) Exec(ctx context.Context, containerID string, cmd []string) (string, error) {
	execConfig := dockerTypes.ExecConfig{
		Cmd:          cmd,
		AttachStdout: true,
		AttachStderr: true,
	}

	execID, err := e.client.ContainerExecCreate(ctx, containerID, execConfig)
	if err != nil {
		return "", fmt.Errorf("failed to create exec: %w", err)
	}

	// Attach to exec to get output
	resp, err := e.client.ContainerExecAttach(ctx, execID.ID, dockerTypes.ExecStartCheck{})
	if err != nil {
		return "", fmt.Errorf("failed to attach to exec: %w", err)
	}
	defer resp.Close()

	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, resp.Reader); err != nil {
		return "", fmt.Errorf("failed to read output: %w", err)
	}

	output := stdout.String() + stderr.String()
	e.logger.Debug("docker exec | %s: %s", strings.Join(cmd, " "), strings.TrimSpace(output))

	// Check exec status
	inspect, err := e.client.ContainerExecInspect(ctx, execID.ID)
	if err != nil {
		return output, fmt.Errorf("failed to inspect exec: %w", err)
	}

	if inspect.ExitCode != 0 {
		return output, fmt.Errorf("command exited with code %d", inspect.ExitCode)
	}

	return output, nil
}

// Close releases the Docker client
func (e *Executor) Close() error {
	return e.client.Close()
}
