package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/optitask/internal/changeset"
	"github.com/iliyamo/optitask/internal/repository"
)

// LabelHandler exposes /labels.
type LabelHandler struct {
	Labels *repository.LabelRepo
	Clock  Clock
}

// NewLabelHandler constructs a LabelHandler and panics if the repository is nil.
func NewLabelHandler(labels *repository.LabelRepo, clock Clock) *LabelHandler {
	if labels == nil {
		panic("nil repository passed to NewLabelHandler")
	}
	return &LabelHandler{Labels: labels, Clock: clock}
}

func (h *LabelHandler) Create(c echo.Context) error {
	owner, err := getUserID(c)
	if err != nil {
		return err
	}
	p, err := readPayload(c)
	if err != nil {
		return err
	}
	in, err := changeset.DecodeNewLabel(p)
	if err != nil {
		return err
	}
	label, err := h.Labels.Create(c.Request().Context(), owner, in)
	if err != nil {
		return err
	}
	c.Logger().Infof("user %s created label %s", owner, label.ID)
	return c.JSON(http.StatusCreated, label)
}

func (h *LabelHandler) List(c echo.Context) error {
	owner, err := getUserID(c)
	if err != nil {
		return err
	}
	items, err := h.Labels.List(c.Request().Context(), owner)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *LabelHandler) Get(c echo.Context) error {
	owner, err := getUserID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	label, err := h.Labels.Get(c.Request().Context(), owner, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, label)
}

func (h *LabelHandler) Update(c echo.Context) error {
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
	changes, err := changeset.BuildLabelChanges(p, h.Clock.now())
	if err != nil {
		return err
	}
	label, err := h.Labels.Update(c.Request().Context(), owner, id, changes)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, label)
}

// Delete handles DELETE /labels/:id; the label is detached from every task.
func (h *LabelHandler) Delete(c echo.Context) error {
	owner, err := getUserID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	n, err := h.Labels.Delete(c.Request().Context(), owner, id)
	if err != nil {
		return err
	}
	return deleted(c, "Label", id, n)
}
