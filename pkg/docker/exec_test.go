package docker

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"net"
	"testing"

	"github.com/amir-mohammad-HP/adbreboot/pkg/logger"
	dockerTypes "github.com/docker/docker/api/types"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	stdout   string
	stderr   string
	exitCode int
	running  bool
	inspect  error
	cmds     [][]string
	closed   bool
}

func (f *fakeAPI) ContainerInspect(ctx context.Context, containerID string) (dockerTypes.ContainerJSON, error) {
	if f.inspect != nil {
		return dockerTypes.ContainerJSON{}, f.inspect
	}
	return dockerTypes.ContainerJSON{
		ContainerJSONBase: &dockerTypes.ContainerJSONBase{
			ID:    containerID,
			State: &dockerTypes.ContainerState{Running: f.running},
		},
	}, nil
}

func (f *fakeAPI) ContainerExecCreate(ctx context.Context, container string, config dockerTypes.ExecConfig) (dockerTypes.IDResponse, error) {
	f.cmds = append(f.cmds, config.Cmd)
	return dockerTypes.IDResponse{ID: "exec-1"}, nil
}

func (f *fakeAPI) ContainerExecAttach(ctx context.Context, execID string, config dockerTypes.ExecStartCheck) (dockerTypes.HijackedResponse, error) {
	var buf bytes.Buffer
	if f.stdout != "" {
		_, _ = stdcopy.NewStdWriter(&buf, stdcopy.Stdout).Write([]byte(f.stdout))
	}
	if f.stderr != "" {
		_, _ = stdcopy.NewStdWriter(&buf, stdcopy.Stderr).Write([]byte(f.stderr))
	}

	conn, _ := net.Pipe()
	return dockerTypes.HijackedResponse{Conn: conn, Reader: bufio.NewReader(&buf)}, nil
}

func (f *fakeAPI) ContainerExecInspect(ctx context.Context, execID string) (dockerTypes.ContainerExecInspect, error) {
	return dockerTypes.ContainerExecInspect{ExecID: execID, ExitCode: f.exitCode}, nil
}

func (f *fakeAPI) Close() error {
	f.closed = true
	return nil
}

func TestExecutor_Exec(t *testing.T) {
	api := &fakeAPI{stdout: "connected to 10.0.0.5:5555\n"}
	e := newExecutor(api, logger.NewNullLogger())

	out, err := e.Exec(context.Background(), "adb", []string{"adb", "connect", "10.0.0.5:5555"})
	require.NoError(t, err)

	assert.Equal(t, "connected to 10.0.0.5:5555\n", out)
	assert.Equal(t, [][]string{{"adb", "connect", "10.0.0.5:5555"}}, api.cmds)
}

func TestExecutor_ExecNonZeroExit(t *testing.T) {
	api := &fakeAPI{stderr: "error: device offline\n", exitCode: 1}
	e := newExecutor(api, logger.NewNullLogger())

	out, err := e.Exec(context.Background(), "adb", []string{"adb", "-s", "tv:5555", "reboot"})
	require.Error(t, err)

	assert.Contains(t, err.Error(), "code 1")
	assert.Contains(t, out, "device offline")
}

func TestExecutor_CheckRunning(t *testing.T) {
	e := newExecutor(&fakeAPI{running: true}, logger.NewNullLogger())
	assert.NoError(t, e.CheckRunning(context.Background(), "adb"))

	e = newExecutor(&fakeAPI{running: false}, logger.NewNullLogger())
	assert.Error(t, e.CheckRunning(context.Background(), "adb"))

	e = newExecutor(&fakeAPI{inspect: errors.New("no such container")}, logger.NewNullLogger())
	assert.ErrorContains(t, e.CheckRunning(context.Background(), "adb"), "no such container")
}

func TestExecutor_Close(t *testing.T) {
	api := &fakeAPI{}
	e := newExecutor(api, logger.NewNullLogger())

	require.NoError(t, e.Close())
	assert.True(t, api.closed)
}
