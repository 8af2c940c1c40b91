package handler // handler package contains project and label handlers

import (
	"net/http" // http provides status code constants

	"github.com/labstack/echo/v4" // echo is the web framework used for handlers

	"github.com/iliyamo/optitask/internal/changeset"  // changeset decodes create and update payloads
	"github.com/iliyamo/optitask/internal/repository" // repository holds the scoped data access
)

// ProjectHandler exposes /projects for the authenticated caller.
type ProjectHandler struct {
	Projects *repository.ProjectRepo // Projects provides project persistence
	Clock    Clock                    // Clock stamps updated_at on updates
}

// NewProjectHandler constructs a ProjectHandler and panics if the repository is nil.
func NewProjectHandler(projects *repository.ProjectRepo, clock Clock) *ProjectHandler {
	if projects == nil {
		panic("nil repository passed to NewProjectHandler")
	}
	return &ProjectHandler{Projects: projects, Clock: clock}
}

// Create handles POST /projects.
func (h *ProjectHandler) Create(c echo.Context) error {
	owner, err := getUserID(c) // caller identity set by the middleware
	if err != nil {
		return err
	}
	p, err := readPayload(c) // body must be a JSON object
	if err != nil {
		return err
	}
	in, err := changeset.DecodeNewProject(p) // name required, color optional
	if err != nil {
		return err
	}
	project, err := h.Projects.Create(c.Request().Context(), owner, in)
	if err != nil {
		return err
	}
	c.Logger().Infof("user %s created project %s", owner, project.ID)
	return c.JSON(http.StatusCreated, project)
}

// List handles GET /projects.
func (h *ProjectHandler) List(c echo.Context) error {
	owner, err := getUserID(c)
	if err != nil {
		return err
	}
	items, err := h.Projects.List(c.Request().Context(), owner)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// Get handles GET /projects/:id.
func (h *ProjectHandler) Get(c echo.Context) error {
	owner, err := getUserID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	project, err := h.Projects.Get(c.Request().Context(), owner, id) // foreign ids look missing
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, project)
}

// Update handles PUT /projects/:id. Absent fields are left alone and an
// explicit null clears color.
func (h *ProjectHandler) Update(c echo.Context) error {
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
	changes, err := changeset.BuildProjectChanges(p, h.Clock.now())
	if err != nil {
		return err
	}
	project, err := h.Projects.Update(c.Request().Context(), owner, id, changes)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, project)
}

// Delete handles DELETE /projects/:id. Tasks of the project are kept and
// lose their project.
func (h *ProjectHandler) Delete(c echo.Context) error {
	owner, err := getUserID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	n, err := h.Projects.Delete(c.Request().Context(), owner, id)
	if err != nil {
		return err
	}
	if n > 0 {
		c.Logger().Infof("user %s deleted project %s", owner, id)
	}
	return deleted(c, "Project", id, n)
}
