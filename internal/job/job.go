// internal/job/job.go
package job

import (
	"fmt"
	"sync"
	"time"

	"github.com/amir-mohammad-HP/adbreboot/internal/schedule"
	"github.com/amir-mohammad-HP/adbreboot/internal/types"
	"github.com/robfig/cron/v3"
)

// Job is one device reboot schedule and its next firing time
type Job struct {
	id       string
	host     string
	cronExpr string
	schedule cron.Schedule
	mu       sync.RWMutex
	lastRun  *time.Time
	lastErr  error
	nextRun  time.Time
}

// New builds a job from a schedule entry and computes its first run after now
func New(index int, entry types.ScheduleEntry, now time.Time) (*Job, error) {
	sched, err := schedule.Parse(entry.Cron)
	if err != nil {
		return nil, fmt.Errorf("reboot[%d] (%s): %w", index, entry.Host, err)
	}

	j := &Job{
		id:       fmt.Sprintf("%d-%s", index, entry.Host),
		host:     entry.Host,
		cronExpr: entry.Cron,
		schedule: sched,
	}
	j.nextRun = sched.Next(now)
	if j.nextRun.IsZero() {
		return nil, fmt.Errorf("reboot[%d] (%s): %w", index, entry.Host, schedule.ErrNeverFires)
	}
	return j, nil
}

func (j *Job) ID() string {
	return j.id
}

func (j *Job) Host() string {
	return j.host
}

func (j *Job) Schedule() string {
	return j.cronExpr
}

// Due reports whether the job should fire at now
func (j *Job) Due(now time.Time) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return !j.nextRun.IsZero() && !j.nextRun.After(now)
}

// Advance recomputes the next run relative to now
func (j *Job) Advance(now time.Time) time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.nextRun = j.schedule.Next(now)
	return j.nextRun
}

// MarkRun records the outcome of a reboot attempt
func (j *Job) MarkRun(at time.Time, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.lastRun = &at
	j.lastErr = err
}

func (j *Job) GetLastRun() *time.Time {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.lastRun
}

func (j *Job) GetLastError() error {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.lastErr
}

func (j *Job) GetNextRun() time.Time {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.nextRun
}

// Registry holds jobs in configuration order
type Registry struct {
	jobs  []*Job
	index map[string]*Job
	mu    sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		index: make(map[string]*Job),
	}
}

// FromEntries builds a registry with one job per schedule entry
func FromEntries(entries []types.ScheduleEntry, now time.Time) (*Registry, error) {
	r := NewRegistry()
	for i, entry := range entries {
		j, err := New(i, entry, now)
		if err != nil {
			return nil, err
		}
		r.AddJob(j)
	}
	return r, nil
}

func (r *Registry) AddJob(job *Job) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.index[job.id]; exists {
		return false
	}

	r.index[job.id] = job
	r.jobs = append(r.jobs, job)
	return true
}

func (r *Registry) GetJob(jobID string) (*Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, exists := r.index[jobID]
	return job, exists
}

// GetAllJobs returns a snapshot of the jobs in insertion order
func (r *Registry) GetAllJobs() []*Job {
	r.mu.RLock()
	defer r.mu.RUnlock()

	jobs := make([]*Job, len(r.jobs))
	copy(jobs, r.jobs)
	return jobs
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}
