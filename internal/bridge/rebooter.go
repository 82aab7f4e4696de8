package bridge

import (
	"context"
	"sync"
	"time"

	"github.com/amir-mohammad-HP/adbreboot/pkg/logger"
)

const disconnectTimeout = 5 * time.Second

// Rebooter serializes every bridge interaction behind one lock
type Rebooter struct {
	client      Client
	logger      logger.Logger
	timeout     time.Duration
	defaultPort int
	mu          sync.Mutex
}

// NewRebooter wraps client. A zero timeout leaves reboot calls unbounded.
func NewRebooter(client Client, logger logger.Logger, timeout time.Duration, defaultPort int) *Rebooter {
	return &Rebooter{
		client:      client,
		logger:      logger,
		timeout:     timeout,
		defaultPort: defaultPort,
	}
}

// Reboot connects to host, reboots it and disconnects. Failures are logged
// and returned to the caller.
func (r *Rebooter) Reboot(ctx context.Context, host string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	log := r.logger.WithField("host", host)

	serial, err := NormalizeHost(host, r.defaultPort)
	if err != nil {
		log.Error("Invalid host: %s", err.Error())
		return err
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	serial, err = r.client.Connect(ctx, serial)
	if err != nil {
		log.Error("Failed to connect to %s: %s", host, err.Error())
		return err
	}

	log.Info("Rebooting %s", serial)
	rebootErr := r.client.Reboot(ctx, serial)
	if rebootErr != nil {
		log.Error("Reboot failed: %s", rebootErr.Error())
	}

	// Disconnect even when the reboot deadline has passed.
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), disconnectTimeout)
	defer cancel()
	if err := r.client.Disconnect(dctx, serial); err != nil {
		log.Warn("Disconnect failed: %s", err.Error())
	}

	return rebootErr
}
