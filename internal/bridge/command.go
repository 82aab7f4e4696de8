package bridge

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes an argv and returns its combined output
type Runner interface {
	Run(ctx context.Context, argv []string) (string, error)
}

// CommandClient drives the adb command line tool through a Runner
type CommandClient struct {
	runner  Runner
	adbPath string
}

func NewCommandClient(runner Runner, adbPath string) *CommandClient {
	if adbPath == "" {
		adbPath = "adb"
	}
	return &CommandClient{runner: runner, adbPath: adbPath}
}

func (c *CommandClient) Connect(ctx context.Context, serial string) (string, error) {
	out, err := c.runner.Run(ctx, []string{c.adbPath, "connect", serial})
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrHostUnreachable, serial, err)
	}
	if err := connectResult(serial, out); err != nil {
		return "", err
	}
	return serial, nil
}

func (c *CommandClient) Reboot(ctx context.Context, serial string) error {
	out, err := c.runner.Run(ctx, []string{c.adbPath, "-s", serial, "reboot"})
	if err != nil {
		return &CommandError{Op: "reboot", Serial: serial, Output: strings.TrimSpace(out), Err: err}
	}
	// adb prints nothing on a successful reboot
	if msg := strings.TrimSpace(out); strings.HasPrefix(strings.ToLower(msg), "error") {
		return &CommandError{Op: "reboot", Serial: serial, Output: msg}
	}
	return nil
}

func (c *CommandClient) Disconnect(ctx context.Context, serial string) error {
	out, err := c.runner.Run(ctx, []string{c.adbPath, "disconnect", serial})
	if err != nil {
		return &CommandError{Op: "disconnect", Serial: serial, Output: strings.TrimSpace(out), Err: err}
	}
	return nil
}

// ExecRunner runs commands on the local machine
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, argv []string) (string, error) {
	if len(argv) == 0 {
		return "", fmt.Errorf("empty command")
	}

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return out.String(), fmt.Errorf("%s: %w", strings.Join(argv, " "), err)
	}
	return out.String(), nil
}
