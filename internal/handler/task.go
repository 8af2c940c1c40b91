package handler // handler package contains task and task label handlers

import (
	"net/http" // http provides status code constants

	"github.com/labstack/echo/v4" // echo is the web framework used for handlers

	"github.com/iliyamo/optitask/internal/apperr"     // apperr classifies invalid filters
	"github.com/iliyamo/optitask/internal/changeset"  // changeset decodes create and update payloads
	"github.com/iliyamo/optitask/internal/model"      // model defines task statuses
	"github.com/iliyamo/optitask/internal/repository" // repository holds the scoped data access
)

// TaskHandler exposes /tasks and the /tasks/:id/labels association.
type TaskHandler struct {
	Tasks *repository.TaskRepo      // Tasks provides task persistence
	Links *repository.TaskLabelRepo // Links manages task to label rows
	Clock Clock                     // Clock stamps updated_at on updates
}

// NewTaskHandler constructs a TaskHandler and panics if any dependency is nil.
func NewTaskHandler(tasks *repository.TaskRepo, links *repository.TaskLabelRepo, clock Clock) *TaskHandler {
	if tasks == nil || links == nil {
		panic("nil repository passed to NewTaskHandler")
	}
	return &TaskHandler{Tasks: tasks, Links: links, Clock: clock}
}

// Create handles POST /tasks. status defaults to todo; a project_id must
// name one of the caller's projects.
func (h *TaskHandler) Create(c echo.Context) error {
	owner, err := getUserID(c)
	if err != nil {
		return err
	}
	p, err := readPayload(c)
	if err != nil {
		return err
	}
	in, err := changeset.DecodeNewTask(p) // title required
	if err != nil {
		return err
	}
	task, err := h.Tasks.Create(c.Request().Context(), owner, in)
	if err != nil {
		return err
	}
	c.Logger().Infof("user %s created task %s", owner, task.ID)
	return c.JSON(http.StatusCreated, task)
}

// List handles GET /tasks with the optional project_id and status filters.
func (h *TaskHandler) List(c echo.Context) error {
	owner, err := getUserID(c)
	if err != nil {
		return err
	}
	var f repository.TaskFilter
	if f.ProjectID, err = queryID(c, "project_id"); err != nil {
		return err
	}
	if s := c.QueryParam("status"); s != "" {
		if !model.ValidStatus(s) { // reject unknown statuses instead of returning nothing
			return apperr.BadRequestf("Invalid status: %s. Supported: todo, inprogress, done", s)
		}
		f.Status = &s
	}
	items, err := h.Tasks.List(c.Request().Context(), owner, f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// Get handles GET /tasks/:id; the task comes with its labels.
func (h *TaskHandler) Get(c echo.Context) error {
	owner, err := getUserID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	task, err := h.Tasks.Get(c.Request().Context(), owner, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

// Update handles PUT /tasks/:id.
func (h *TaskHandler) Update(c echo.Context) error {
	owner, err := getUserID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	p, err := readPayload(c)
	if err != nil {
		return err
	}
	changes, err := changeset.BuildTaskChanges(p, h.Clock.now())
	if err != nil {
		return err
	}
	task, err := h.Tasks.Update(c.Request().Context(), owner, id, changes)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

// Delete handles DELETE /tasks/:id; its time entries and label links go with it.
func (h *TaskHandler) Delete(c echo.Context) error {
	owner, err := getUserID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	n, err := h.Tasks.Delete(c.Request().Context(), owner, id)
	if err != nil {
		return err
	}
	if n > 0 {
		c.Logger().Infof("user %s deleted task %s", owner, id)
	}
	return deleted(c, "Task", id, n)
}

// AddLabel handles POST /tasks/:id/labels with body {"label_id": "..."}.
func (h *TaskHandler) AddLabel(c echo.Context) error {
	owner, err := getUserID(c)
	if err != nil {
		return err
	}
	taskID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	p, err := readPayload(c)
	if err != nil {
		return err
	}
	labelID, err := p.UUID("label_id")
	if err != nil {
		return err
	}
	lid, ok := labelID.Get()
	if !ok {
		return apperr.BadRequestf("Field 'label_id' is required")
	}
	link, err := h.Links.AddLabel(c.Request().Context(), owner, taskID, lid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"status":   "success",
		"message":  "Label added to task successfully",
		"task_id":  link.TaskID,
		"label_id": link.LabelID,
	})
}

// ListLabels handles GET /tasks/:id/labels.
func (h *TaskHandler) ListLabels(c echo.Context) error {
	owner, err := getUserID(c)
	if err != nil {
		return err
	}
	taskID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	labels, err := h.Links.ListLabels(c.Request().Context(), owner, taskID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, labels)
}

// RemoveLabel handles DELETE /tasks/:id/labels/:labelId. Only the task's
// ownership is checked.
func (h *TaskHandler) RemoveLabel(c echo.Context) error {
	owner, err := getUserID(c)
	if err != nil {
		return err
	}
	taskID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	labelID, err := pathID(c, "labelId")
	if err != nil {
		return err
	}
	if err := h.Links.RemoveLabel(c.Request().Context(), owner, taskID, labelID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "success",
		"message": "Label removed from task successfully",
	})
}
