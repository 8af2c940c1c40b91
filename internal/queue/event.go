// Package queue defines message payloads exchanged over the message broker
// and the consumer that records them.
package queue

import (
	"time"

	"github.com/iliyamo/optitask/internal/model"
)

// TimeEntryRecordedQueue is the durable queue time entry events go to.
const TimeEntryRecordedQueue = "time_entry.recorded"

// TimeEntryRecordedEvent is published after a time entry is created. It
// carries enough for downstream consumers to log or aggregate without
// querying the primary database.
type TimeEntryRecordedEvent struct {
	TimeEntryID       string `json:"time_entry_id"`
	UserID            string `json:"user_id"`
	TaskID            string `json:"task_id"`
	StartTime         string `json:"start_time"`
	EndTime           string `json:"end_time,omitempty"`
	DurationSeconds   *int32 `json:"duration_seconds,omitempty"`
	IsPomodoroSession bool   `json:"is_pomodoro_session"`
	RecordedAt        string `json:"recorded_at"`
}

// NewTimeEntryRecorded builds the event for e with timestamps in RFC 3339 UTC.
func NewTimeEntryRecorded(e model.TimeEntry, at time.Time) TimeEntryRecordedEvent {
	ev := TimeEntryRecordedEvent{
		TimeEntryID:       e.ID.String(),
		UserID:            e.UserID.String(),
		TaskID:            e.TaskID.String(),
		StartTime:         e.StartTime.UTC().Format(time.RFC3339),
		DurationSeconds:   e.DurationSeconds,
		IsPomodoroSession: e.IsPomodoroSession,
		RecordedAt:        at.UTC().Format(time.RFC3339),
	}
	if e.EndTime != nil {
		ev.EndTime = e.EndTime.UTC().Format(time.RFC3339)
	}
	return ev
}
