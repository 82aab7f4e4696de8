package shutdown

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/amir-mohammad-HP/adbreboot/pkg/logger"
)

type Task func() error

// Manager runs registered cleanup tasks, in registration order, once
// shutdown is initiated
type Manager struct {
	logger   logger.Logger
	names    []string
	tasks    map[string]Task
	shutdown chan struct{}
	once     sync.Once
	timeout  time.Duration
}

func NewManager(logger logger.Logger, timeout time.Duration) *Manager {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Manager{
		logger:   logger,
		tasks:    make(map[string]Task),
		shutdown: make(chan struct{}),
		timeout:  timeout,
	}
}

// RegisterTask adds a task; registering a name twice replaces the task
func (m *Manager) RegisterTask(name string, task Task) {
	if _, exists := m.tasks[name]; !exists {
		m.names = append(m.names, name)
	}
	m.tasks[name] = task
}

// Initiate starts the shutdown; calling it more than once is safe
func (m *Manager) Initiate() {
	m.once.Do(func() { close(m.shutdown) })
}

func (m *Manager) Done() <-chan struct{} {
	return m.shutdown
}

// Wait blocks until shutdown is initiated, then runs the tasks
func (m *Manager) Wait(ctx context.Context) error {
	select {
	case <-m.shutdown:
		m.logger.Info("shutdown | Starting shutdown sequence")
		return m.executeTasks()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) executeTasks() error {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.logger.Debug("shutdown | executing %d tasks before shutdown", len(m.names))
		for i, name := range m.names {
			m.logger.Info("shutdown | Executing shutdown task %d: %s", i+1, name)
			if err := m.tasks[name](); err != nil {
				m.logger.Error("shutdown | Task failed, task: %s, error: %s", name, err)
			}
		}
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown tasks did not finish within %s", m.timeout)
	}
}
