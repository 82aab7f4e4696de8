package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amir-mohammad-HP/adbreboot/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configPath = ""

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "options.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestValidateCommand(t *testing.T) {
	path := writeConfig(t, `{"reboot": [{"host": "tv", "cron": "03:00"}]}`)

	out, err := execute(t, "validate", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "1 reboot schedule(s)")
}

func TestValidateCommand_BadConfig(t *testing.T) {
	path := writeConfig(t, `{"reboot": [{"cron": "03:00"}]}`)

	_, err := execute(t, "validate", "--config", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrConfig)

	var reported reportedError
	assert.True(t, errors.As(err, &reported))
}

func TestNextCommand(t *testing.T) {
	path := writeConfig(t, `{"reboot": [
		{"host": "tv", "cron": "03:00"},
		{"host": "box", "cron": "@hourly"}
	]}`)

	out, err := execute(t, "next", "-n", "2", "--config", path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "tv (03:00)", lines[0])
	assert.Contains(t, lines[1], "03:00:00")
	assert.Equal(t, "box (@hourly)", lines[3])
}

func TestNextCommand_RejectsBadCount(t *testing.T) {
	path := writeConfig(t, `{"reboot": [{"host": "tv", "cron": "03:00"}]}`)

	for _, n := range []string{"0", "-1"} {
		t.Run(n, func(t *testing.T) {
			out, err := execute(t, "--config", path, "next", "-n", n)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "--count must be at least 1")
			assert.Empty(t, out)
		})
	}
}

func TestRootCommand_MissingConfig(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, config.ErrConfig)
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "options.json")

	_, err := execute(t, "init", path)
	require.NoError(t, err)

	out, err := execute(t, "validate", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "2 reboot schedule(s)")
}
