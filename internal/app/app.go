package app

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/amir-mohammad-HP/adbreboot/internal/bridge"
	"github.com/amir-mohammad-HP/adbreboot/internal/job"
	"github.com/amir-mohammad-HP/adbreboot/internal/signals"
	"github.com/amir-mohammad-HP/adbreboot/internal/types"
	"github.com/amir-mohammad-HP/adbreboot/internal/worker"
	"github.com/amir-mohammad-HP/adbreboot/pkg/logger"
	"github.com/amir-mohammad-HP/adbreboot/pkg/shutdown"
)

type App struct {
	config        *types.Config
	logger        logger.Logger
	registry      *job.Registry
	worker        *worker.Worker
	shutdown      *shutdown.Manager
	signalHandler *signals.Handler
	bridgeCloser  io.Closer
	wg            sync.WaitGroup
}

// New builds the bridge selected in cfg and the reboot schedule
func New(ctx context.Context, cfg *types.Config, logger logger.Logger) (*App, error) {
	client, closer, err := bridge.New(ctx, cfg.Bridge, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create device bridge: %w", err)
	}

	a, err := newApp(cfg, logger, client)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, err
	}
	a.bridgeCloser = closer
	return a, nil
}

func newApp(cfg *types.Config, logger logger.Logger, client bridge.Client) (*App, error) {
	registry, err := job.FromEntries(cfg.Reboot, time.Now())
	if err != nil {
		return nil, err
	}

	rebooter := bridge.NewRebooter(client, logger, cfg.Scheduler.ActionTimeout, cfg.Bridge.DefaultPort)

	return &App{
		config:        cfg,
		logger:        logger,
		registry:      registry,
		worker:        worker.New(&cfg.Scheduler, logger, registry, rebooter),
		shutdown:      shutdown.NewManager(logger, cfg.Shutdown.Timeout),
		signalHandler: signals.NewHandler(logger),
	}, nil
}

// Jobs exposes the schedule, mostly for the CLI
func (a *App) Jobs() []*job.Job {
	return a.registry.GetAllJobs()
}

// Run blocks until a termination signal arrives or ctx is cancelled
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("Starting %s application", a.config.AppName)
	if a.registry.Count() == 0 {
		a.logger.Warn("No reboot schedules configured, nothing will be rebooted")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Start signal handler
	go a.signalHandler.Handle(ctx, func() {
		a.logger.Info("Received shutdown signal")
		a.shutdown.Initiate()
	})

	// Register cleanup tasks
	a.shutdown.RegisterTask("worker", a.worker.Stop)
	a.shutdown.RegisterTask("application", a.cleanup)

	if err := a.worker.Start(ctx, &a.wg); err != nil {
		return err
	}

	select {
	case <-a.shutdown.Done():
	case <-ctx.Done():
		a.shutdown.Initiate()
	}

	err := a.shutdown.Wait(context.Background())
	cancel()
	a.wg.Wait()

	a.logger.Info("Application shutdown complete")
	return err
}

func (a *App) cleanup() error {
	a.logger.Debug("Performing application cleanup")
	if a.bridgeCloser != nil {
		return a.bridgeCloser.Close()
	}
	return nil
}
