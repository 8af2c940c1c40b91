package model

import (
	"time"

	"github.com/google/uuid"
)

// Task statuses accepted by the API.
const (
	StatusTodo       = "todo"
	StatusInProgress = "inprogress"
	StatusDone       = "done"
)

// ValidStatus reports whether s is one of the known task statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Task is a unit of work owned by one user. It may belong to at most one
// of the user's projects.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – owning user.
//  ProjectID   – optional project, nullable; cleared when the project is deleted.
//  Title       – required title.
//  Description – optional free text.
//  Status      – todo, inprogress or done (default todo).
//  DueDate     – optional calendar date.
//  Order       – optional manual sort position, stored as task_order.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Task struct {
	ID          uuid.UUID  `json:"id"`          // tasks.id
	UserID      uuid.UUID  `json:"user_id"`     // tasks.user_id
	ProjectID   *uuid.UUID `json:"project_id"`  // tasks.project_id (nullable)
	Title       string     `json:"title"`       // tasks.title
	Description *string    `json:"description"` // tasks.description (nullable)
	Status      string     `json:"status"`      // tasks.status
	DueDate     *Date      `json:"due_date"`    // tasks.due_date (nullable)
	Order       *int32     `json:"order"`       // tasks.task_order (nullable)
	CreatedAt   time.Time  `json:"created_at"`  // tasks.created_at
	UpdatedAt   time.Time  `json:"updated_at"`  // tasks.updated_at
}

// TaskWithLabels is the read shape of a task: the stored row plus the
// labels attached to it at read time. Labels is never nil so it always
// encodes as a JSON array.
type TaskWithLabels struct {
	Task
	Labels []Label `json:"labels"`
}

// WithLabels wraps t with the given labels.
func (t Task) WithLabels(labels []Label) TaskWithLabels {
	if labels == nil {
		labels = []Label{}
	}
	return TaskWithLabels{Task: t, Labels: labels}
}
