package signals

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/amir-mohammad-HP/adbreboot/pkg/logger"
)

type Handler struct {
	logger logger.Logger
}

func NewHandler(logger logger.Logger) *Handler {
	return &Handler{logger: logger}
}

// Handle calls shutdownFunc on the first termination signal
func (h *Handler) Handle(ctx context.Context, shutdownFunc func()) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		h.logger.Debug("Signal handler context cancelled")
		return
	case sig := <-sigChan:
		h.logger.Info("Received signal %s", sig)
		shutdownFunc()
	}
}
