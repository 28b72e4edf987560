package schedule

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSchedule(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		want    Schedule
		wantErr bool
	}{
		{"every", "@every 10m", Schedule{Kind: ScheduleKindEvery, EveryMs: 600000}, false},
		{"at", "2030-01-02T03:04:05Z", Schedule{Kind: ScheduleKindAt, AtMs: time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC).UnixMilli()}, false},
		{"cron", "0 9 * * 1-5", Schedule{Kind: ScheduleKindCron, Expr: "0 9 * * 1-5"}, false},
		{"cron with seconds", "30 0 9 * * *", Schedule{Kind: ScheduleKindCron, Expr: "30 0 9 * * *"}, false},
		{"descriptor", "@daily", Schedule{Kind: ScheduleKindCron, Expr: "@daily"}, false},
		{"empty", "  ", Schedule{}, true},
		{"bad interval", "@every soon", Schedule{}, true},
		{"garbage", "whenever", Schedule{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSchedule(tt.spec)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSchedule_String(t *testing.T) {
	assert.Equal(t, "@every 1m30s", Schedule{Kind: ScheduleKindEvery, EveryMs: 90000}.String())
	assert.Equal(t, "@hourly", Schedule{Kind: ScheduleKindCron, Expr: "@hourly"}.String())
}

func TestJob_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Job)
		wantErr bool
	}{
		{"valid", func(*Job) {}, false},
		{"image only", func(j *Job) { j.Payload.Text = ""; j.Payload.ImageURL = "https://example.com/a.png" }, false},
		{"no content", func(j *Job) { j.Payload.Text = "" }, true},
		{"bad image url", func(j *Job) { j.Payload.ImageURL = "::" }, true},
		{"missing channel", func(j *Job) { j.Payload.Channel = "" }, true},
		{"bad channel", func(j *Job) { j.Payload.Channel = "group:abc" }, true},
		{"bad kind", func(j *Job) { j.Schedule.Kind = "sometimes" }, true},
		{"every too short", func(j *Job) { j.Schedule.EveryMs = 10 }, true},
		{"cron without expr", func(j *Job) { j.Schedule = Schedule{Kind: ScheduleKindCron} }, true},
		{"cron bad expr", func(j *Job) { j.Schedule = Schedule{Kind: ScheduleKindCron, Expr: "61 * * * *"} }, true},
		{"at without time", func(j *Job) { j.Schedule = Schedule{Kind: ScheduleKindAt} }, true},
		{"missing id", func(j *Job) { j.ID = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := NewJob("greet", Schedule{Kind: ScheduleKindEvery, EveryMs: 60000}, Payload{Channel: "temp:1@2", Text: "hi"})
			tt.mutate(job)
			err := job.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStore_Update(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "schedule.json")
	store := NewStore(path)

	jobs, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, jobs)

	a := NewJob("a", Schedule{Kind: ScheduleKindEvery, EveryMs: 60000}, Payload{Channel: "group:1", Text: "a"})
	b := NewJob("b", Schedule{Kind: ScheduleKindEvery, EveryMs: 60000}, Payload{Channel: "group:1", Text: "b"})
	b.CreatedAtMs = a.CreatedAtMs + 1

	require.NoError(t, store.Update(func(jobs []*Job) ([]*Job, error) {
		return append(jobs, b, a), nil
	}))

	jobs, err = store.Load()
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "a", jobs[0].Name)
	assert.Equal(t, "b", jobs[1].Name)
	assert.FileExists(t, path+".lock")
}
