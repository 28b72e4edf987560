package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// ErrJobNotFound is returned for unknown job ids.
var ErrJobNotFound = errors.New("job not found")

// JobExecutor is the delegate function that executes a job.
type JobExecutor func(ctx context.Context, job *Job) error

// Scheduler manages scheduled jobs.
type Scheduler struct {
	cron     *cron.Cron
	jobs     map[string]*Job
	store    *Store
	executor JobExecutor
	timeout  time.Duration
	logger   zerolog.Logger

	mu      sync.RWMutex
	running bool
	// removed holds ids deleted here, so saving does not bring them back
	// from the store.
	removed map[string]bool
}

// NewScheduler creates a new scheduler persisting to store.
func NewScheduler(store *Store, logger zerolog.Logger) *Scheduler {
	if store == nil {
		store = NewStore("")
	}
	return &Scheduler{
		cron:    cron.New(cron.WithParser(parser)),
		jobs:    make(map[string]*Job),
		removed: make(map[string]bool),
		store:   store,
		timeout: time.Minute,
		logger:  logger.With().Str("component", "schedule").Logger(),
	}
}

// SetExecutor sets the function that will execute triggered jobs.
func (s *Scheduler) SetExecutor(exec JobExecutor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.executor = exec
}

// Load syncs the scheduler with the store: new and changed jobs are
// (re)scheduled, jobs gone from the store are dropped, and unchanged jobs
// keep their timers.
func (s *Scheduler) Load() error {
	jobs, err := s.store.Load()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(jobs))
	for _, job := range jobs {
		seen[job.ID] = true
		old := s.jobs[job.ID]
		if old != nil && sameDefinition(old, job) {
			continue
		}

		s.unscheduleJob(old)
		s.jobs[job.ID] = job
		if job.Enabled {
			if err := s.scheduleJob(job); err != nil {
				s.logger.Warn().Err(err).Str("job", job.ID).Msg("Failed to schedule job")
			}
		}
	}
	for id, job := range s.jobs {
		if !seen[id] {
			s.unscheduleJob(job)
			delete(s.jobs, id)
		}
	}

	s.logger.Info().Int("count", len(s.jobs)).Msg("Loaded scheduled jobs")
	return nil
}

func sameDefinition(a, b *Job) bool {
	return a.Name == b.Name &&
		a.Enabled == b.Enabled &&
		a.DeleteAfterRun == b.DeleteAfterRun &&
		a.Schedule == b.Schedule &&
		a.Payload == b.Payload
}

// AddJob validates, schedules and persists a new job.
func (s *Scheduler) AddJob(job *Job) error {
	if err := job.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.ID]; exists {
		return fmt.Errorf("job %s already exists", job.ID)
	}

	now := time.Now().UnixMilli()
	if job.CreatedAtMs == 0 {
		job.CreatedAtMs = now
	}
	job.UpdatedAtMs = now

	if job.Enabled {
		if err := s.scheduleJob(job); err != nil {
			return err
		}
	}
	s.jobs[job.ID] = job

	return s.saveLocked()
}

// UpdateJob replaces an existing job.
func (s *Scheduler) UpdateJob(job *Job) error {
	if err := job.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old, exists := s.jobs[job.ID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrJobNotFound, job.ID)
	}

	job.CreatedAtMs = old.CreatedAtMs
	job.UpdatedAtMs = time.Now().UnixMilli()

	s.unscheduleJob(old)
	job.cronEntryID, job.timer = 0, nil
	if job.Enabled {
		if err := s.scheduleJob(job); err != nil {
			return err
		}
	}

	s.jobs[job.ID] = job
	return s.saveLocked()
}

// RemoveJob removes a job and saves.
func (s *Scheduler) RemoveJob(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}

	s.unscheduleJob(job)
	delete(s.jobs, id)
	s.removed[id] = true
	return s.saveLocked()
}

// GetJob returns a job by ID.
func (s *Scheduler) GetJob(id string) (*Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	return j, ok
}

// Jobs returns all registered jobs.
func (s *Scheduler) Jobs() []*Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]*Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		list = append(list, j)
	}
	return list
}

// RunJobNow triggers a job immediately.
func (s *Scheduler) RunJobNow(id string) error {
	s.mu.RLock()
	_, ok := s.jobs[id]
	s.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}

	go s.execJob(id)
	return nil
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.cron.Start()
	s.running = true
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	for _, job := range s.jobs {
		if job.timer != nil {
			job.timer.Stop()
			job.timer = nil
		}
	}
	s.mu.Unlock()

	<-s.cron.Stop().Done()
}

// IsRunning returns whether the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// scheduleJob registers the job with the cron engine. Expects lock to be held.
func (s *Scheduler) scheduleJob(job *Job) error {
	s.unscheduleJob(job)

	id := job.ID
	run := func() { s.execJob(id) }

	var sched cron.Schedule
	switch job.Schedule.Kind {
	case ScheduleKindCron:
		parsed, err := parser.Parse(job.Schedule.Expr)
		if err != nil {
			return fmt.Errorf("invalid cron expression %q: %w", job.Schedule.Expr, err)
		}
		sched = parsed

	case ScheduleKindEvery:
		if job.Schedule.EveryMs <= 0 {
			return errors.New("invalid everyMs")
		}
		sched = cron.Every(time.Duration(job.Schedule.EveryMs) * time.Millisecond)

	case ScheduleKindAt:
		delay := time.Until(time.UnixMilli(job.Schedule.AtMs))
		if delay < 0 {
			delay = 0
		}
		job.timer = time.AfterFunc(delay, run)
		job.State.NextRunAtMs = job.Schedule.AtMs
		return nil

	default:
		return fmt.Errorf("unknown schedule kind %q", job.Schedule.Kind)
	}

	job.cronEntryID = s.cron.Schedule(sched, cron.FuncJob(run))
	job.State.NextRunAtMs = sched.Next(time.Now()).UnixMilli()
	return nil
}

// unscheduleJob removes any cron entry or timer. Expects lock to be held.
func (s *Scheduler) unscheduleJob(job *Job) {
	if job == nil {
		return
	}
	if job.cronEntryID != 0 {
		s.cron.Remove(job.cronEntryID)
		job.cronEntryID = 0
	}
	if job.timer != nil {
		job.timer.Stop()
		job.timer = nil
	}
	job.State.NextRunAtMs = 0
}

// execJob calls the executor and records the outcome.
func (s *Scheduler) execJob(id string) {
	s.mu.Lock()
	job, exists := s.jobs[id]
	if !exists || !job.Enabled {
		s.mu.Unlock()
		return
	}
	start := time.Now()
	job.State.RunningAtMs = start.UnixMilli()
	executor := s.executor
	snapshot := *job
	s.mu.Unlock()

	s.logger.Info().Str("job", id).Str("name", snapshot.Name).Msg("Executing scheduled job")

	var err error
	if executor != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		err = executor(ctx, &snapshot)
		cancel()
	} else {
		err = errors.New("no executor configured")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The job may have been replaced or removed while it ran.
	job, exists = s.jobs[id]
	if !exists {
		return
	}

	job.State.LastRunAtMs = start.UnixMilli()
	job.State.RunningAtMs = 0
	job.State.LastDurationMs = time.Since(start).Milliseconds()
	if err != nil {
		job.State.LastStatus = "error"
		job.State.LastError = err.Error()
		s.logger.Error().Err(err).Str("job", id).Msg("Job execution failed")
	} else {
		job.State.LastStatus = "ok"
		job.State.LastError = ""
		s.logger.Info().Str("job", id).Msg("Job execution completed")
	}

	switch {
	case job.DeleteAfterRun:
		s.unscheduleJob(job)
		delete(s.jobs, id)
		s.removed[id] = true
	case job.Schedule.Kind == ScheduleKindAt:
		job.timer = nil
		job.Enabled = false
		job.State.NextRunAtMs = 0
	case job.cronEntryID != 0:
		if entry := s.cron.Entry(job.cronEntryID); entry.Valid() {
			job.State.NextRunAtMs = entry.Schedule.Next(time.Now()).UnixMilli()
		}
	}

	if err := s.saveLocked(); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to save schedule store")
	}
}

// saveLocked persists all jobs, keeping jobs another process added to the
// store in the meantime. Expects lock to be held.
func (s *Scheduler) saveLocked() error {
	return s.store.Update(func(stored []*Job) ([]*Job, error) {
		list := make([]*Job, 0, len(s.jobs))
		for _, j := range s.jobs {
			list = append(list, j)
		}
		for _, j := range stored {
			if _, ok := s.jobs[j.ID]; !ok && !s.removed[j.ID] {
				list = append(list, j)
			}
		}
		return list, nil
	})
}
