package schedule

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func everyJob(id string) *Job {
	return &Job{
		ID:       id,
		Name:     "Test Job",
		Enabled:  true,
		Schedule: Schedule{Kind: ScheduleKindEvery, EveryMs: 60000},
		Payload:  Payload{Channel: "group:42", Text: "ping"},
	}
}

func TestScheduler_Persistence(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "schedule.json")
	logger := zerolog.Nop()

	s1 := NewScheduler(NewStore(storePath), logger)
	require.NoError(t, s1.AddJob(everyJob("job-1")))

	_, err := os.Stat(storePath)
	require.NoError(t, err)

	s2 := NewScheduler(NewStore(storePath), logger)
	require.NoError(t, s2.Load())

	jobs := s2.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "job-1", jobs[0].ID)
	assert.Equal(t, "Test Job", jobs[0].Name)
	assert.Equal(t, int64(60000), jobs[0].Schedule.EveryMs)
	assert.Equal(t, "group:42", jobs[0].Payload.Channel)
	assert.NotZero(t, jobs[0].cronEntryID)
}

func TestScheduler_Lifecycle(t *testing.T) {
	s := NewScheduler(nil, zerolog.Nop())

	job := everyJob("job-1")
	job.Schedule = Schedule{Kind: ScheduleKindCron, Expr: "*/5 * * * *"}

	require.NoError(t, s.AddJob(job))
	assert.Error(t, s.AddJob(job))

	retrieved, ok := s.GetJob("job-1")
	require.True(t, ok)
	assert.NotZero(t, retrieved.cronEntryID)
	assert.NotZero(t, retrieved.State.NextRunAtMs)

	disabled := *job
	disabled.Enabled = false
	require.NoError(t, s.UpdateJob(&disabled))
	retrieved, _ = s.GetJob("job-1")
	assert.Zero(t, retrieved.cronEntryID)

	enabled := disabled
	enabled.Enabled = true
	require.NoError(t, s.UpdateJob(&enabled))
	retrieved, _ = s.GetJob("job-1")
	assert.NotZero(t, retrieved.cronEntryID)

	require.NoError(t, s.RemoveJob("job-1"))
	_, ok = s.GetJob("job-1")
	assert.False(t, ok)

	assert.ErrorIs(t, s.RemoveJob("job-1"), ErrJobNotFound)
	assert.ErrorIs(t, s.UpdateJob(&enabled), ErrJobNotFound)
	assert.ErrorIs(t, s.RunJobNow("job-1"), ErrJobNotFound)
}

func TestScheduler_AddInvalid(t *testing.T) {
	s := NewScheduler(nil, zerolog.Nop())

	job := everyJob("job-1")
	job.Payload.Channel = "room:1"
	assert.Error(t, s.AddJob(job))
	assert.Empty(t, s.Jobs())
}

func TestScheduler_Execution(t *testing.T) {
	s := NewScheduler(nil, zerolog.Nop())

	executed := make(chan *Job, 1)
	s.SetExecutor(func(ctx context.Context, job *Job) error {
		executed <- job
		return nil
	})
	s.Start()
	defer s.Stop()

	require.NoError(t, s.AddJob(everyJob("job-exec")))
	require.NoError(t, s.RunJobNow("job-exec"))

	select {
	case job := <-executed:
		assert.Equal(t, "ping", job.Payload.Text)
	case <-time.After(2 * time.Second):
		t.Fatal("Job execution timed out")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for ctx.Err() == nil {
		s.mu.RLock()
		status := s.jobs["job-exec"].State.LastStatus
		s.mu.RUnlock()
		if status == "ok" {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job state was not updated")
}

func TestScheduler_AtJobRunsOnce(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "schedule.json")
	s := NewScheduler(NewStore(storePath), zerolog.Nop())

	calls := make(chan struct{}, 4)
	s.SetExecutor(func(ctx context.Context, job *Job) error {
		calls <- struct{}{}
		return errors.New("gateway down")
	})

	job := everyJob("job-at")
	job.Schedule = Schedule{Kind: ScheduleKindAt, AtMs: time.Now().Add(20 * time.Millisecond).UnixMilli()}
	require.NoError(t, s.AddJob(job))

	select {
	case <-calls:
	case <-time.After(2 * time.Second):
		t.Fatal("at job did not fire")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for ctx.Err() == nil {
		jobs, err := NewStore(storePath).Load()
		require.NoError(t, err)
		if len(jobs) == 1 && jobs[0].State.LastStatus == "error" {
			assert.False(t, jobs[0].Enabled)
			assert.Equal(t, "gateway down", jobs[0].State.LastError)
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("at job state was not persisted")
}

func TestScheduler_DeleteAfterRun(t *testing.T) {
	s := NewScheduler(nil, zerolog.Nop())
	done := make(chan struct{}, 1)
	s.SetExecutor(func(ctx context.Context, job *Job) error {
		done <- struct{}{}
		return nil
	})

	job := everyJob("job-once")
	job.DeleteAfterRun = true
	require.NoError(t, s.AddJob(job))
	require.NoError(t, s.RunJobNow(job.ID))
	<-done

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for ctx.Err() == nil {
		if _, ok := s.GetJob(job.ID); !ok {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job was not removed after running")
}

func TestScheduler_SaveKeepsForeignJobs(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "schedule.json")
	s := NewScheduler(NewStore(storePath), zerolog.Nop())
	require.NoError(t, s.AddJob(everyJob("job-1")))

	// Another process adds a job behind the scheduler's back.
	require.NoError(t, NewStore(storePath).Update(func(jobs []*Job) ([]*Job, error) {
		return append(jobs, everyJob("job-2")), nil
	}))

	require.NoError(t, s.RemoveJob("job-1"))

	jobs, err := NewStore(storePath).Load()
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "job-2", jobs[0].ID)
}

func TestScheduler_LoadSyncs(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "schedule.json")
	store := NewStore(storePath)
	s := NewScheduler(store, zerolog.Nop())

	require.NoError(t, s.AddJob(everyJob("keep")))
	require.NoError(t, s.AddJob(everyJob("drop")))
	kept, _ := s.GetJob("keep")
	entry := kept.cronEntryID

	require.NoError(t, store.Update(func(jobs []*Job) ([]*Job, error) {
		out := jobs[:0]
		for _, j := range jobs {
			if j.ID != "drop" {
				out = append(out, j)
			}
		}
		return append(out, everyJob("new")), nil
	}))
	require.NoError(t, s.Load())

	_, ok := s.GetJob("drop")
	assert.False(t, ok)
	added, ok := s.GetJob("new")
	require.True(t, ok)
	assert.NotZero(t, added.cronEntryID)
	kept, _ = s.GetJob("keep")
	assert.Equal(t, entry, kept.cronEntryID)
}

func TestScheduler_Watch(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "schedule.json")
	s := NewScheduler(NewStore(storePath), zerolog.Nop())
	require.NoError(t, s.Load())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx) }()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		// Retry the write until the watcher is up and has picked it up.
		require.NoError(t, NewStore(storePath).Update(func(jobs []*Job) ([]*Job, error) {
			if len(jobs) == 0 {
				jobs = append(jobs, everyJob("from-cli"))
			}
			return jobs, nil
		}))
		time.Sleep(200 * time.Millisecond)
		if _, ok := s.GetJob("from-cli"); ok {
			break
		}
	}

	_, ok := s.GetJob("from-cli")
	assert.True(t, ok)

	cancel()
	require.NoError(t, <-done)
}
