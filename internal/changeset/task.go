package changeset

import (
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/optitask/internal/apperr"
	"github.com/iliyamo/optitask/internal/model"
)

// NewTask holds the fields accepted when creating a task.
type NewTask struct {
	ProjectID   *uuid.UUID
	Title       string
	Description *string
	Status      string
	DueDate     *model.Date
	Order       *int32
}

// TaskChanges is the partial update of a task.
type TaskChanges struct {
	ProjectID   Field[uuid.UUID]
	Title       Optional[string]
	Description Field[string]
	Status      Optional[string]
	DueDate     Field[model.Date]
	Order       Field[int32]
	UpdatedAt   time.Time
}

// DecodeNewTask validates a create payload. title is required and status
// defaults to todo.
func DecodeNewTask(p Payload) (NewTask, error) {
	var in NewTask

	title, err := requiredText(p, "title")
	if err != nil {
		return in, err
	}
	t, ok := title.Get()
	if !ok {
		return in, apperr.BadRequestf("Field 'title' is required")
	}
	in.Title = t

	status, err := decodeStatus(p)
	if err != nil {
		return in, err
	}
	in.Status = status.Or(model.StatusTodo)

	project, err := p.NullableUUID("project_id")
	if err != nil {
		return in, err
	}
	in.ProjectID = project.Ptr()

	desc, err := p.NullableString("description")
	if err != nil {
		return in, err
	}
	in.Description = desc.Ptr()

	due, err := p.NullableDate("due_date")
	if err != nil {
		return in, err
	}
	in.DueDate = due.Ptr()

	order, err := p.NullableInt32("order")
	if err != nil {
		return in, err
	}
	in.Order = order.Ptr()
	return in, nil
}

// BuildTaskChanges validates an update payload and stamps UpdatedAt.
func BuildTaskChanges(p Payload, now time.Time) (TaskChanges, error) {
	c := TaskChanges{UpdatedAt: stamp(now)}
	var err error
	if c.Title, err = requiredText(p, "title"); err != nil {
		return TaskChanges{}, err
	}
	if c.Status, err = decodeStatus(p); err != nil {
		return TaskChanges{}, err
	}
	if c.ProjectID, err = p.NullableUUID("project_id"); err != nil {
		return TaskChanges{}, err
	}
	if c.Description, err = p.NullableString("description"); err != nil {
		return TaskChanges{}, err
	}
	if c.DueDate, err = p.NullableDate("due_date"); err != nil {
		return TaskChanges{}, err
	}
	if c.Order, err = p.NullableInt32("order"); err != nil {
		return TaskChanges{}, err
	}
	return c, nil
}

// Assignments lists the columns the update writes, updated_at last.
func (c TaskChanges) Assignments() []Assignment {
	var a assignments
	a = addField(a, "project_id", c.ProjectID)
	a = addOptional(a, "title", c.Title)
	a = addField(a, "description", c.Description)
	a = addOptional(a, "status", c.Status)
	a = addField(a, "due_date", c.DueDate)
	a = addField(a, "task_order", c.Order)
	return append(a, Assignment{Column: "updated_at", Value: c.UpdatedAt})
}

func decodeStatus(p Payload) (Optional[string], error) {
	status, err := p.String("status")
	if err != nil {
		return status, err
	}
	if s, ok := status.Get(); ok && !model.ValidStatus(s) {
		return Optional[string]{}, apperr.BadRequestf("Invalid status: %s. Supported: todo, inprogress, done", s)
	}
	return status, nil
}
