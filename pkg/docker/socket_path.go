package docker

import (
	"context"
	"fmt"
	"runtime"

	dockerClient "github.com/docker/docker/client"
)

// Get default Docker socket path based on OS
func getDefaultSocketPath() string {
	if runtime.GOOS == "windows" {
		// Docker Desktop usually uses a named pipe
		return "npipe:////./pipe/docker_engine"
	}
	// Linux and macOS
	return "unix:///var/run/docker.sock"
}

// Try alternative socket paths
func tryAlternativeSocketPaths(ctx context.Context) (*dockerClient.Client, error) {
	alternativePaths := []string{
		// Windows paths
		"npipe:////./pipe/docker_engine",
		"unix://" + `\\wsl$\docker-desktop-data\version-pack-data\community\docker\docker.sock`,
		"unix://" + `\\wsl.localhost\docker-desktop-data\version-pack-data\community\docker\docker.sock`,

		// Linux/macOS paths, also the fallback for WSL
		"unix:///var/run/docker.sock",
		"unix:///run/docker.sock",
	}

	var lastErr error
	for _, path := range alternativePaths {
		cli, err := dockerClient.NewClientWithOpts(
			dockerClient.WithHost(path),
			dockerClient.WithAPIVersionNegotiation(),
		)
		if err != nil {
			lastErr = err
			continue
		}

		// Test connection
		_, err = cli.Ping(ctx)
		if err != nil {
			cli.Close()
			lastErr = err
			continue
		}

		return cli, nil
	}

	return nil, fmt.Errorf("failed to connect to Docker using any socket path. Last error: %w", lastErr)
}
