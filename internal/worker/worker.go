package worker

import (
	"context"
	"sync"
	"time"

	"github.com/amir-mohammad-HP/adbreboot/internal/job"
	"github.com/amir-mohammad-HP/adbreboot/internal/types"
	"github.com/amir-mohammad-HP/adbreboot/pkg/logger"
)

const timeLayout = "2006-01-02 15:04:05 MST"

// Action reboots a single device
type Action interface {
	Reboot(ctx context.Context, host string) error
}

// Worker polls the registry and fires due reboot jobs
type Worker struct {
	config   *types.SchedulerConfig
	logger   logger.Logger
	registry *job.Registry
	action   Action
	now      func() time.Time
	shutdown chan struct{}
	stopOnce sync.Once
}

func New(cfg *types.SchedulerConfig, logger logger.Logger, registry *job.Registry, action Action) *Worker {
	return &Worker{
		config:   cfg,
		logger:   logger,
		registry: registry,
		action:   action,
		now:      time.Now,
		shutdown: make(chan struct{}),
	}
}

func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup) error {
	w.logger.Info("Starting worker with %d reboot job(s)", w.registry.Count())
	for _, j := range w.registry.GetAllJobs() {
		w.logger.WithFields(map[string]any{
			"host": j.Host(),
			"cron": j.Schedule(),
		}).Info("Next reboot at %s", j.GetNextRun().Format(timeLayout))
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		w.run(ctx)
	}()

	return nil
}

func (w *Worker) run(ctx context.Context) {
	w.logger.Debug("Worker main loop started")

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Worker received context cancellation")
			return
		case <-w.shutdown:
			w.logger.Info("Worker received shutdown signal")
			return
		case <-ticker.C:
			w.executeJobs(ctx, w.now())
		}
	}
}

// executeJobs fires every job due at t, in registry order
func (w *Worker) executeJobs(ctx context.Context, t time.Time) int {
	fired := 0
	for _, j := range w.registry.GetAllJobs() {
		if !j.Due(t) {
			continue
		}
		if ctx.Err() != nil {
			return fired
		}

		log := w.logger.WithField("host", j.Host())
		log.Debug("Job %s due (scheduled %s)", j.ID(), j.GetNextRun().Format(timeLayout))

		err := w.action.Reboot(ctx, j.Host())
		fired++

		now := w.now()
		j.MarkRun(now, err)
		next := j.Advance(now)

		if next.IsZero() {
			log.Error("Schedule %q has no further runs", j.Schedule())
		} else if err != nil {
			log.Warn("Reboot did not complete, next attempt at %s", next.Format(timeLayout))
		} else {
			log.Info("Next reboot at %s", next.Format(timeLayout))
		}
	}
	return fired
}

// Stop ends the loop; calling it more than once is safe
func (w *Worker) Stop() error {
	w.stopOnce.Do(func() {
		w.logger.Info("Stopping worker")
		close(w.shutdown)
	})
	return nil
}
