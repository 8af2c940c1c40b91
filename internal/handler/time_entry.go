package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/optitask/internal/apperr"
	"github.com/iliyamo/optitask/internal/changeset"
	"github.com/iliyamo/optitask/internal/model"
	"github.com/iliyamo/optitask/internal/queue"
	"github.com/iliyamo/optitask/internal/repository"
)

// publishTimeout bounds the background publication of one event.
const publishTimeout = 5 * time.Second

// EventPublisher receives domain events. Publication is best effort.
type EventPublisher interface {
	PublishTimeEntryRecorded(ctx context.Context, ev queue.TimeEntryRecordedEvent) error
}

// TimeEntryHandler exposes /time-entries.
type TimeEntryHandler struct {
	Entries *repository.TimeEntryRepo
	Events  EventPublisher // optional
	Clock   Clock
}

// NewTimeEntryHandler constructs a TimeEntryHandler. events may be nil.
func NewTimeEntryHandler(entries *repository.TimeEntryRepo, events EventPublisher, clock Clock) *TimeEntryHandler {
	if entries == nil {
		panic("nil repository passed to NewTimeEntryHandler")
	}
	return &TimeEntryHandler{Entries: entries, Events: events, Clock: clock}
}

// Create handles POST /time-entries. Without duration_seconds the duration
// is derived from a closed interval.
func (h *TimeEntryHandler) Create(c echo.Context) error {
	owner, err := getUserID(c)
	if err != nil {
		return err
	}
	p, err := readPayload(c)
	if err != nil {
		return err
	}
	in, err := changeset.DecodeNewTimeEntry(p)
	if err != nil {
		return err
	}
	entry, err := h.Entries.Create(c.Request().Context(), owner, in)
	if err != nil {
		return err
	}
	c.Logger().Infof("user %s recorded time entry %s on task %s", owner, entry.ID, entry.TaskID)
	h.publish(c, entry)
	return c.JSON(http.StatusCreated, entry)
}

// publish sends the recorded event in the background; failures only log.
func (h *TimeEntryHandler) publish(c echo.Context, entry model.TimeEntry) {
	if h.Events == nil {
		return
	}
	ev := queue.NewTimeEntryRecorded(entry, h.Clock.now())
	logger := c.Logger()
	ctx := context.WithoutCancel(c.Request().Context())
	go func() {
		ctx, cancel := context.WithTimeout(ctx, publishTimeout)
		defer cancel()
		if err := h.Events.PublishTimeEntryRecorded(ctx, ev); err != nil {
			logger.Warnf("publish time entry %s: %v", ev.TimeEntryID, err)
		}
	}()
}

// List handles GET /time-entries with the optional task_id, date_from and
// date_to filters. Dates without a time cover the whole day.
func (h *TimeEntryHandler) List(c echo.Context) error {
	owner, err := getUserID(c)
	if err != nil {
		return err
	}
	var f repository.TimeEntryFilter
	if f.TaskID, err = queryID(c, "task_id"); err != nil {
		return err
	}
	if f.From, err = queryTime(c, "date_from", false); err != nil {
		return err
	}
	if f.To, err = queryTime(c, "date_to", true); err != nil {
		return err
	}
	items, err := h.Entries.List(c.Request().Context(), owner, f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *TimeEntryHandler) Get(c echo.Context) error {
	owner, err := getUserID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	entry, err := h.Entries.Get(c.Request().Context(), owner, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entry)
}

// Update handles PUT /time-entries/:id. Closing the interval without a
// duration derives it from the effective start time.
func (h *TimeEntryHandler) Update(c echo.Context) error {
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
	changes, err := changeset.BuildTimeEntryChanges(p, h.Clock.now())
	if err != nil {
		return err
	}
	entry, err := h.Entries.Update(c.Request().Context(), owner, id, changes)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entry)
}

func (h *TimeEntryHandler) Delete(c echo.Context) error {
	owner, err := getUserID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	n, err := h.Entries.Delete(c.Request().Context(), owner, id)
	if err != nil {
		return err
	}
	return deleted(c, "TimeEntry", id, n)
}

// queryTime parses an optional timestamp or YYYY-MM-DD query parameter. A
// bare date is the start of the day, or its last second when endOfDay.
func queryTime(c echo.Context, name string, endOfDay bool) (*time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	if t, err := changeset.ParseTimestamp(raw); err == nil {
		return &t, nil
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		return nil, apperr.BadRequestf("Invalid %s: %q is neither a timestamp nor a date", name, raw)
	}
	t := d.Time()
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return &t, nil
}
