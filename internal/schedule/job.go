// Package schedule sends messages on a timetable.
package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/liteclaw/mirai/pkg/message"
)

// ScheduleKind defines the type of schedule.
type ScheduleKind string

const (
	ScheduleKindAt    ScheduleKind = "at"
	ScheduleKindEvery ScheduleKind = "every"
	ScheduleKindCron  ScheduleKind = "cron"
)

// Schedule defines when a job should run.
type Schedule struct {
	Kind    ScheduleKind `json:"kind" validate:"required,oneof=at every cron"`
	AtMs    int64        `json:"atMs,omitempty" validate:"required_if=Kind at"`
	EveryMs int64        `json:"everyMs,omitempty" validate:"required_if=Kind every"`
	Expr    string       `json:"expr,omitempty" validate:"required_if=Kind cron"`
}

// String renders the schedule the way ParseSchedule accepts it.
func (s Schedule) String() string {
	switch s.Kind {
	case ScheduleKindAt:
		return time.UnixMilli(s.AtMs).Format(time.RFC3339)
	case ScheduleKindEvery:
		return "@every " + (time.Duration(s.EveryMs) * time.Millisecond).String()
	case ScheduleKindCron:
		return s.Expr
	}
	return string(s.Kind)
}

// Payload is the message a job sends.
type Payload struct {
	// Channel is "group:<id>", "friend:<qq>" or "temp:<qq>@<group>".
	Channel string `json:"channel" validate:"required"`
	Text    string `json:"text,omitempty" validate:"required_without=ImageURL"`
	// ImageURL is attached as an image when set.
	ImageURL string `json:"imageUrl,omitempty" validate:"omitempty,url"`
}

// JobState tracks the runtime state of a job.
type JobState struct {
	NextRunAtMs    int64  `json:"nextRunAtMs,omitempty"`
	RunningAtMs    int64  `json:"runningAtMs,omitempty"`
	LastRunAtMs    int64  `json:"lastRunAtMs,omitempty"`
	LastStatus     string `json:"lastStatus,omitempty"` // "ok", "error"
	LastError      string `json:"lastError,omitempty"`
	LastDurationMs int64  `json:"lastDurationMs,omitempty"`
}

// Job is a scheduled message.
type Job struct {
	ID             string   `json:"id" validate:"required"`
	Name           string   `json:"name,omitempty"`
	Enabled        bool     `json:"enabled"`
	DeleteAfterRun bool     `json:"deleteAfterRun,omitempty"`
	CreatedAtMs    int64    `json:"createdAtMs"`
	UpdatedAtMs    int64    `json:"updatedAtMs"`
	Schedule       Schedule `json:"schedule"`
	Payload        Payload  `json:"payload"`
	State          JobState `json:"state"`

	// Runtime only
	cronEntryID cron.EntryID
	timer       *time.Timer
}

// NewJob creates an enabled job with a fresh id.
func NewJob(name string, sched Schedule, payload Payload) *Job {
	now := time.Now().UnixMilli()
	return &Job{
		ID:          uuid.NewString(),
		Name:        name,
		Enabled:     true,
		CreatedAtMs: now,
		UpdatedAtMs: now,
		Schedule:    sched,
		Payload:     payload,
	}
}

// parser accepts five-field expressions with an optional leading seconds
// field, plus descriptors such as @hourly.
var parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ParseSchedule reads "@every <duration>", an RFC 3339 timestamp or a cron
// expression.
func ParseSchedule(spec string) (Schedule, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Schedule{}, errors.New("empty schedule")
	}

	if rest, ok := strings.CutPrefix(spec, "@every "); ok {
		d, err := time.ParseDuration(strings.TrimSpace(rest))
		if err != nil {
			return Schedule{}, fmt.Errorf("invalid interval %q: %w", rest, err)
		}
		return Schedule{Kind: ScheduleKindEvery, EveryMs: d.Milliseconds()}, nil
	}

	if at, err := time.Parse(time.RFC3339, spec); err == nil {
		return Schedule{Kind: ScheduleKindAt, AtMs: at.UnixMilli()}, nil
	}

	if _, err := parser.Parse(spec); err != nil {
		return Schedule{}, fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}
	return Schedule{Kind: ScheduleKindCron, Expr: spec}, nil
}

var validate = validator.New()

// Validate checks a job is complete and runnable.
func (j *Job) Validate() error {
	if err := validate.Struct(j); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid job: %s failed %q", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("invalid job: %w", err)
	}

	if _, err := message.ParseChannel(j.Payload.Channel); err != nil {
		return fmt.Errorf("invalid job: %w", err)
	}
	if j.Schedule.Kind == ScheduleKindEvery && j.Schedule.EveryMs < time.Second.Milliseconds() {
		return errors.New("invalid job: interval must be at least 1s")
	}
	if j.Schedule.Kind == ScheduleKindCron {
		if _, err := parser.Parse(j.Schedule.Expr); err != nil {
			return fmt.Errorf("invalid job: cron expression %q: %w", j.Schedule.Expr, err)
		}
	}
	return nil
}
