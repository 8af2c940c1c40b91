package model

import (
	"time"

	"github.com/google/uuid"
)

// Label is a per-user tag that can be attached to any number of the
// same user's tasks through TaskLabel.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owning user.
//  Name      – label text, required.
//  Color     – optional UI color, nullable.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Label struct {
	ID        uuid.UUID `json:"id"`         // labels.id
	UserID    uuid.UUID `json:"user_id"`    // labels.user_id
	Name      string    `json:"name"`       // labels.name
	Color     *string   `json:"color"`      // labels.color (nullable)
	CreatedAt time.Time `json:"created_at"` // labels.created_at
	UpdatedAt time.Time `json:"updated_at"` // labels.updated_at
}

// TaskLabel links a task to a label. The pair is the whole identity; the
// row carries no timestamps.
type TaskLabel struct {
	TaskID  uuid.UUID `json:"task_id"`  // task_labels.task_id
	LabelID uuid.UUID `json:"label_id"` // task_labels.label_id
}
