// Package bridge talks to devices over the Android Debug Bridge.
//
// A Client knows how to connect to a device, reboot it and drop the
// connection again. Three drivers implement it: ADBClient speaks the ADB
// server protocol directly, and CommandClient runs the adb binary either on
// the host or inside a container. Rebooter wraps any Client with the
// process-wide lock the scheduler relies on.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
)

const (
	DefaultDevicePort = 5555
	DefaultADBHost    = "127.0.0.1"
	DefaultADBPort    = 5037
)

// ErrHostUnreachable is returned when the bridge cannot connect to a device
var ErrHostUnreachable = errors.New("host unreachable")

// CommandError is returned when a bridge command fails after connecting
type CommandError struct {
	Op     string
	Serial string
	Output string
	Err    error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("adb %s %s failed", e.Op, e.Serial)
	if e.Output != "" {
		msg += ": " + e.Output
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Client is a device bridge. Serials are host:port strings.
type Client interface {
	Connect(ctx context.Context, serial string) (string, error)
	Reboot(ctx context.Context, serial string) error
	Disconnect(ctx context.Context, serial string) error
}

var hostnamePattern = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9-]{0,61}[A-Za-z0-9])?(\.[A-Za-z0-9]([A-Za-z0-9-]{0,61}[A-Za-z0-9])?)*$`)

// NormalizeHost validates host and appends defaultPort when none is given
func NormalizeHost(host string, defaultPort int) (string, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return "", fmt.Errorf("empty host")
	}
	if defaultPort <= 0 {
		defaultPort = DefaultDevicePort
	}

	name, port := host, strconv.Itoa(defaultPort)
	if h, p, err := net.SplitHostPort(host); err == nil {
		name, port = h, p
	} else if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		name = strings.Trim(host, "[]")
	}

	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return "", fmt.Errorf("invalid port in %q", host)
	}

	if net.ParseIP(name) == nil && !hostnamePattern.MatchString(name) {
		return "", fmt.Errorf("invalid host %q", host)
	}

	return net.JoinHostPort(name, port), nil
}

// connectResult interprets the text adb prints for a connect request.
// adb reports most connection failures with a zero exit status.
func connectResult(serial, out string) error {
	out = strings.TrimSpace(out)
	lower := strings.ToLower(out)

	switch {
	case strings.HasPrefix(lower, "connected to"),
		strings.HasPrefix(lower, "already connected to"):
		return nil
	case out == "":
		return fmt.Errorf("%w: %s: no response from adb", ErrHostUnreachable, serial)
	default:
		return fmt.Errorf("%w: %s: %s", ErrHostUnreachable, serial, out)
	}
}
