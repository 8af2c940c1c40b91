package model

import (
	"time"

	"github.com/google/uuid"
)

// TimeEntry records time spent on a task. Every entry belongs to exactly
// one task of the same user.
//
// Fields:
//  ID                – primary key identifier.
//  UserID            – owning user.
//  TaskID            – task the time was spent on.
//  StartTime         – start of the interval (UTC).
//  EndTime           – end of the interval, nullable while running.
//  DurationSeconds   – whole seconds, nullable; derived from the interval when omitted.
//  IsPomodoroSession – true for structured focus sessions.
//  CreatedAt         – creation timestamp.
//  UpdatedAt         – last update timestamp.
type TimeEntry struct {
	ID                uuid.UUID  `json:"id"`                  // time_entries.id
	UserID            uuid.UUID  `json:"user_id"`             // time_entries.user_id
	TaskID            uuid.UUID  `json:"task_id"`             // time_entries.task_id
	StartTime         time.Time  `json:"start_time"`          // time_entries.start_time
	EndTime           *time.Time `json:"end_time"`            // time_entries.end_time (nullable)
	DurationSeconds   *int32     `json:"duration_seconds"`    // time_entries.duration_seconds (nullable)
	IsPomodoroSession bool       `json:"is_pomodoro_session"` // time_entries.is_pomodoro_session
	CreatedAt         time.Time  `json:"created_at"`          // time_entries.created_at
	UpdatedAt         time.Time  `json:"updated_at"`          // time_entries.updated_at
}
