package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
)

// ADBClient speaks the ADB smart socket protocol to a local ADB server.
// Every request uses its own TCP connection to the server.
type ADBClient struct {
	addr   string
	dialer net.Dialer
}

func NewADBClient(host string, port int) *ADBClient {
	if host == "" {
		host = DefaultADBHost
	}
	if port <= 0 {
		port = DefaultADBPort
	}
	return &ADBClient{addr: net.JoinHostPort(host, strconv.Itoa(port))}
}

// Connect asks the server to open a TCP transport to the device
func (c *ADBClient) Connect(ctx context.Context, serial string) (string, error) {
	out, err := c.hostCommand(ctx, "host:connect:"+serial)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrHostUnreachable, serial, err)
	}
	if err := connectResult(serial, out); err != nil {
		return "", err
	}
	return serial, nil
}

// Reboot switches the connection to the device transport and sends reboot:
func (c *ADBClient) Reboot(ctx context.Context, serial string) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return &CommandError{Op: "reboot", Serial: serial, Err: err}
	}
	defer conn.Close()

	if err := c.request(conn, "host:transport:"+serial); err != nil {
		return &CommandError{Op: "reboot", Serial: serial, Err: err}
	}
	if err := c.request(conn, "reboot:"); err != nil {
		return &CommandError{Op: "reboot", Serial: serial, Err: err}
	}

	// The device drops the stream once it starts rebooting.
	if _, err := io.Copy(io.Discard, conn); err != nil {
		if ctx.Err() != nil {
			return &CommandError{Op: "reboot", Serial: serial, Err: ctx.Err()}
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return &CommandError{Op: "reboot", Serial: serial, Err: fmt.Errorf("%w: %w", context.DeadlineExceeded, err)}
		}
	}
	return nil
}

// Disconnect closes the server's transport to the device
func (c *ADBClient) Disconnect(ctx context.Context, serial string) error {
	if _, err := c.hostCommand(ctx, "host:disconnect:"+serial); err != nil {
		return &CommandError{Op: "disconnect", Serial: serial, Err: err}
	}
	return nil
}

func (c *ADBClient) dial(ctx context.Context) (net.Conn, error) {
	conn, err := c.dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return nil, fmt.Errorf("adb server %s: %w", c.addr, err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	return &ctxConn{Conn: conn, stop: stop}, nil
}

// hostCommand sends a host service request and reads its length-prefixed reply
func (c *ADBClient) hostCommand(ctx context.Context, req string) (string, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	if err := c.request(conn, req); err != nil {
		return "", err
	}

	reply, err := readMessage(conn)
	if err == io.EOF {
		return "", nil
	}
	return reply, err
}

// request writes one framed request and waits for OKAY
func (c *ADBClient) request(conn net.Conn, req string) error {
	if _, err := fmt.Fprintf(conn, "%04x%s", len(req), req); err != nil {
		return fmt.Errorf("write %q: %w", req, err)
	}

	status := make([]byte, 4)
	if _, err := io.ReadFull(conn, status); err != nil {
		return fmt.Errorf("read status for %q: %w", req, err)
	}

	switch string(status) {
	case "OKAY":
		return nil
	case "FAIL":
		msg, err := readMessage(conn)
		if err != nil {
			return fmt.Errorf("%q failed: %w", req, err)
		}
		return fmt.Errorf("%q failed: %s", req, msg)
	default:
		return fmt.Errorf("unexpected status %q for %q", status, req)
	}
}

func readMessage(r io.Reader) (string, error) {
	header := make([]byte, 4)
	if _, err := io.ReadFull(r, header); err != nil {
		return "", err
	}

	n, err := strconv.ParseUint(string(header), 16, 16)
	if err != nil {
		return "", fmt.Errorf("invalid length header %q", header)
	}

	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

// ctxConn unregisters the context watcher when the connection is closed
type ctxConn struct {
	net.Conn
	stop func() bool
}

func (c *ctxConn) Close() error {
	c.stop()
	return c.Conn.Close()
}
