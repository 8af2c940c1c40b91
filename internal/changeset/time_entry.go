package changeset

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/optitask/internal/apperr"
)

// NewTimeEntry holds the fields accepted when creating a time entry.
type NewTimeEntry struct {
	TaskID            uuid.UUID
	StartTime         time.Time
	EndTime           *time.Time
	DurationSeconds   *int32
	IsPomodoroSession bool
}

// TimeEntryChanges is the partial update of a time entry.
type TimeEntryChanges struct {
	TaskID            Optional[uuid.UUID]
	StartTime         Optional[time.Time]
	EndTime           Field[time.Time]
	DurationSeconds   Field[int32]
	IsPomodoroSession Optional[bool]
	UpdatedAt         time.Time
}

// DecodeNewTimeEntry validates a create payload and derives the duration
// when it is absent and the interval is closed.
func DecodeNewTimeEntry(p Payload) (NewTimeEntry, error) {
	var in NewTimeEntry

	task, err := p.UUID("task_id")
	if err != nil {
		return in, err
	}
	id, ok := task.Get()
	if !ok {
		return in, apperr.BadRequestf("Field 'task_id' is required")
	}
	in.TaskID = id

	start, err := p.Time("start_time")
	if err != nil {
		return in, err
	}
	st, ok := start.Get()
	if !ok {
		return in, apperr.BadRequestf("Field 'start_time' is required")
	}
	in.StartTime = st

	end, err := p.NullableTime("end_time")
	if err != nil {
		return in, err
	}
	in.EndTime = end.Ptr()

	dur, err := decodeDuration(p)
	if err != nil {
		return in, err
	}
	in.DurationSeconds = dur.Ptr()

	pomodoro, err := p.Bool("is_pomodoro_session")
	if err != nil {
		return in, err
	}
	in.IsPomodoroSession = pomodoro.Or(false)

	if in.DurationSeconds == nil && in.EndTime != nil {
		if in.DurationSeconds, err = derive(in.StartTime, *in.EndTime); err != nil {
			return in, err
		}
	}
	return in, nil
}

// BuildTimeEntryChanges validates an update payload and stamps UpdatedAt.
// Duration derivation needs the stored start time, see DeriveDuration.
func BuildTimeEntryChanges(p Payload, now time.Time) (TimeEntryChanges, error) {
	c := TimeEntryChanges{UpdatedAt: stamp(now)}
	var err error
	if c.TaskID, err = p.UUID("task_id"); err != nil {
		return TimeEntryChanges{}, err
	}
	if c.StartTime, err = p.Time("start_time"); err != nil {
		return TimeEntryChanges{}, err
	}
	if c.EndTime, err = p.NullableTime("end_time"); err != nil {
		return TimeEntryChanges{}, err
	}
	if c.DurationSeconds, err = decodeDuration(p); err != nil {
		return TimeEntryChanges{}, err
	}
	if c.IsPomodoroSession, err = p.Bool("is_pomodoro_session"); err != nil {
		return TimeEntryChanges{}, err
	}
	return c, nil
}

// NeedsStoredStart reports whether DeriveDuration depends on the stored
// start time: the update closes the interval, supplies no duration of its
// own and leaves start_time untouched.
func (c TimeEntryChanges) NeedsStoredStart() bool {
	return c.derives() && !c.StartTime.IsSet()
}

func (c TimeEntryChanges) derives() bool {
	_, closing := c.EndTime.Get()
	return closing && c.DurationSeconds.State() != Value
}

// DeriveDuration fills DurationSeconds from the effective interval when
// the update sets end_time and the duration is absent or explicitly null.
// storedStart is used unless the same update moves start_time. An
// explicit duration is never overwritten.
func (c TimeEntryChanges) DeriveDuration(storedStart time.Time) (TimeEntryChanges, error) {
	if !c.derives() {
		return c, nil
	}
	end, _ := c.EndTime.Get()
	start := c.StartTime.Or(storedStart)
	d, err := derive(start, end)
	if err != nil {
		return c, err
	}
	if d != nil {
		c.DurationSeconds = Set(*d)
	}
	return c, nil
}

// Assignments lists the columns the update writes, updated_at last.
func (c TimeEntryChanges) Assignments() []Assignment {
	var a assignments
	a = addOptional(a, "task_id", c.TaskID)
	a = addOptional(a, "start_time", c.StartTime)
	a = addField(a, "end_time", c.EndTime)
	a = addField(a, "duration_seconds", c.DurationSeconds)
	a = addOptional(a, "is_pomodoro_session", c.IsPomodoroSession)
	return append(a, Assignment{Column: "updated_at", Value: c.UpdatedAt})
}

// derive returns end-start in whole seconds, or nil unless end is after
// start. Intervals that do not fit duration_seconds are rejected.
func derive(start, end time.Time) (*int32, error) {
	if !end.After(start) {
		return nil, nil
	}
	secs := int64(end.Sub(start) / time.Second)
	if secs > math.MaxInt32 {
		return nil, apperr.BadRequestf("Interval from start_time to end_time is too long: %d seconds exceeds %d", secs, math.MaxInt32)
	}
	d := int32(secs)
	return &d, nil
}

func decodeDuration(p Payload) (Field[int32], error) {
	dur, err := p.NullableInt32("duration_seconds")
	if err != nil {
		return dur, err
	}
	if v, ok := dur.Get(); ok && v < 0 {
		return Field[int32]{}, apperr.BadRequestf("Field 'duration_seconds' cannot be negative")
	}
	return dur, nil
}
