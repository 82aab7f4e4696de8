package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/amir-mohammad-HP/adbreboot/internal/bridge"
	"github.com/amir-mohammad-HP/adbreboot/internal/job"
	"github.com/amir-mohammad-HP/adbreboot/internal/types"
	"github.com/amir-mohammad-HP/adbreboot/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAction struct {
	mu    sync.Mutex
	hosts []string
	fail  map[string]error
}

func (f *fakeAction) Reboot(ctx context.Context, host string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hosts = append(f.hosts, host)
	return f.fail[host]
}

func (f *fakeAction) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.hosts...)
}

var start = time.Date(2026, time.March, 10, 2, 59, 0, 0, time.UTC)

func newTestWorker(t *testing.T, action Action, entries ...types.ScheduleEntry) (*Worker, *job.Registry) {
	t.Helper()
	registry, err := job.FromEntries(entries, start)
	require.NoError(t, err)

	cfg := &types.SchedulerConfig{PollInterval: 10 * time.Millisecond}
	return New(cfg, logger.NewNullLogger(), registry, action), registry
}

func TestExecuteJobs_FiresDueJobOnce(t *testing.T) {
	action := &fakeAction{}
	w, registry := newTestWorker(t, action, types.ScheduleEntry{Host: "tv", Cron: "03:00"})

	due := time.Date(2026, time.March, 10, 3, 0, 1, 0, time.UTC)
	w.now = func() time.Time { return due }

	assert.Equal(t, 1, w.executeJobs(context.Background(), due))
	assert.Equal(t, []string{"tv"}, action.calls())

	j := registry.GetAllJobs()[0]
	assert.True(t, j.GetNextRun().After(due))
	assert.Equal(t, time.Date(2026, time.March, 11, 3, 0, 0, 0, time.UTC), j.GetNextRun())
	require.NotNil(t, j.GetLastRun())

	// Same tick time again: nothing left to fire.
	assert.Equal(t, 0, w.executeJobs(context.Background(), due))
	assert.Len(t, action.calls(), 1)
}

func TestExecuteJobs_SkipsJobsNotDue(t *testing.T) {
	action := &fakeAction{}
	w, _ := newTestWorker(t, action, types.ScheduleEntry{Host: "tv", Cron: "03:00"})
	w.now = func() time.Time { return start }

	assert.Equal(t, 0, w.executeJobs(context.Background(), start.Add(30*time.Second)))
	assert.Empty(t, action.calls())
}

func TestExecuteJobs_FailureDoesNotBlockOtherHosts(t *testing.T) {
	action := &fakeAction{fail: map[string]error{
		"a": bridge.ErrHostUnreachable,
	}}
	w, registry := newTestWorker(t, action,
		types.ScheduleEntry{Host: "a", Cron: "03:00"},
		types.ScheduleEntry{Host: "b", Cron: "0 3 * * *"},
	)

	due := time.Date(2026, time.March, 10, 3, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return due }

	assert.Equal(t, 2, w.executeJobs(context.Background(), due))
	assert.Equal(t, []string{"a", "b"}, action.calls())

	jobs := registry.GetAllJobs()
	assert.ErrorIs(t, jobs[0].GetLastError(), bridge.ErrHostUnreachable)
	assert.NoError(t, jobs[1].GetLastError())
	for _, j := range jobs {
		assert.True(t, j.GetNextRun().After(due), "failed jobs still get a new next run")
	}
}

func TestExecuteJobs_ConcurrentDueJobsNeverOverlap(t *testing.T) {
	client := &overlapClient{}
	rebooter := bridge.NewRebooter(client, logger.NewNullLogger(), time.Second, 0)
	w, _ := newTestWorker(t, rebooter,
		types.ScheduleEntry{Host: "10.0.0.1", Cron: "03:00"},
		types.ScheduleEntry{Host: "10.0.0.2", Cron: "03:00"},
	)

	due := time.Date(2026, time.March, 10, 3, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return due }

	// A second caller racing the loop on the same rebooter.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = rebooter.Reboot(context.Background(), "10.0.0.3")
	}()

	assert.Equal(t, 2, w.executeJobs(context.Background(), due))
	wg.Wait()

	assert.Equal(t, 3, client.reboots())
	assert.False(t, client.overlapped())
}

func TestRun_FiresFromTicker(t *testing.T) {
	action := &fakeAction{}
	w, _ := newTestWorker(t, action, types.ScheduleEntry{Host: "tv", Cron: "03:00"})

	var mu sync.Mutex
	now := start
	w.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	require.NoError(t, w.Start(ctx, &wg))

	mu.Lock()
	now = time.Date(2026, time.March, 10, 3, 0, 0, 0, time.UTC)
	mu.Unlock()

	assert.Eventually(t, func() bool {
		return len(action.calls()) == 1
	}, time.Second, 5*time.Millisecond)

	// Clock no longer moves, so the job must not fire again.
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, action.calls(), 1)

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
	wg.Wait()
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	w, _ := newTestWorker(t, &fakeAction{}, types.ScheduleEntry{Host: "tv", Cron: "@daily"})

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	require.NoError(t, w.Start(ctx, &wg))

	cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}
}

// overlapClient flags any two bridge operations running at the same time
type overlapClient struct {
	mu      sync.Mutex
	active  bool
	overlap bool
	count   int
}

func (c *overlapClient) step(reboot bool) {
	c.mu.Lock()
	if c.active {
		c.overlap = true
	}
	c.active = true
	if reboot {
		c.count++
	}
	c.mu.Unlock()

	time.Sleep(2 * time.Millisecond)

	c.mu.Lock()
	c.active = false
	c.mu.Unlock()
}

func (c *overlapClient) Connect(ctx context.Context, serial string) (string, error) {
	c.step(false)
	return serial, nil
}

func (c *overlapClient) Reboot(ctx context.Context, serial string) error {
	c.step(true)
	return nil
}

func (c *overlapClient) Disconnect(ctx context.Context, serial string) error {
	c.step(false)
	return errors.New("already gone")
}

func (c *overlapClient) reboots() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

func (c *overlapClient) overlapped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.overlap
}
