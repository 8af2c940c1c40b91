package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/optitask/internal/changeset"
	"github.com/iliyamo/optitask/internal/database"
	"github.com/iliyamo/optitask/internal/model"
)

const timeEntryColumns = "id, user_id, task_id, start_time, end_time, duration_seconds, is_pomodoro_session, created_at, updated_at"

// TimeEntryFilter narrows a time entry listing. From and To bound
// start_time inclusively.
type TimeEntryFilter struct {
	TaskID *uuid.UUID
	From   *time.Time
	To     *time.Time
}

// TimeEntryRepo encapsulates all database queries related to time entries.
type TimeEntryRepo struct {
	db    *sql.DB
	clock Clock
}

var _ Scoped[model.TimeEntry, changeset.NewTimeEntry, changeset.TimeEntryChanges] = (*TimeEntryRepo)(nil)

// NewTimeEntryRepo constructs a TimeEntryRepo. A nil clock uses time.Now.
func NewTimeEntryRepo(db *sql.DB, clock Clock) *TimeEntryRepo {
	return &TimeEntryRepo{db: db, clock: clock}
}

// Create records time against one of owner's tasks. A task that does not
// exist or belongs to someone else fails with NotFound.
func (r *TimeEntryRepo) Create(ctx context.Context, owner uuid.UUID, in changeset.NewTimeEntry) (model.TimeEntry, error) {
	var out model.TimeEntry
	err := database.WithTx(ctx, r.db, func(q database.DBTX) error {
		if err := ensureOwned(ctx, q, "tasks", "Task", owner, in.TaskID); err != nil {
			return err
		}
		id, now := uuid.New(), r.clock.stamp()
		const qInsert = `INSERT INTO time_entries (` + timeEntryColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
		if _, err := q.ExecContext(ctx, qInsert, id, owner, in.TaskID, in.StartTime.UTC(), utcPtr(in.EndTime),
			in.DurationSeconds, in.IsPomodoroSession, now, now); err != nil {
			return wrapDB(err, "insert time entry")
		}
		var err error
		out, err = getTimeEntry(ctx, q, scoped(owner, id))
		return err
	})
	return out, err
}

// Get fetches a time entry by id for owner.
func (r *TimeEntryRepo) Get(ctx context.Context, owner, id uuid.UUID) (model.TimeEntry, error) {
	var out model.TimeEntry
	err := database.WithConn(ctx, r.db, func(q database.DBTX) error {
		var err error
		out, err = getTimeEntry(ctx, q, scoped(owner, id))
		return err
	})
	return out, err
}

// List returns owner's time entries, most recent start first.
func (r *TimeEntryRepo) List(ctx context.Context, owner uuid.UUID, f TimeEntryFilter) ([]model.TimeEntry, error) {
	out := []model.TimeEntry{}
	err := database.WithConn(ctx, r.db, func(q database.DBTX) error {
		query := `SELECT ` + timeEntryColumns + ` FROM time_entries WHERE user_id = ?`
		args := []any{owner}
		if f.TaskID != nil {
			query += ` AND task_id = ?`
			args = append(args, *f.TaskID)
		}
		if f.From != nil {
			query += ` AND start_time >= ?`
			args = append(args, f.From.UTC())
		}
		if f.To != nil {
			query += ` AND start_time <= ?`
			args = append(args, f.To.UTC())
		}
		query += ` ORDER BY start_time DESC`

		rows, err := q.QueryContext(ctx, query, args...)
		if err != nil {
			return wrapDB(err, "list time entries")
		}
		defer rows.Close()
		for rows.Next() {
			e, err := scanTimeEntry(rows)
			if err != nil {
				return wrapDB(err, "scan time entry")
			}
			out = append(out, e)
		}
		return wrapDB(rows.Err(), "list time entries")
	})
	return out, err
}

// Update applies changes in one transaction. When the update closes the
// interval without a duration, the duration is derived from the
// effective start time: the new one if supplied, else the stored one.
func (r *TimeEntryRepo) Update(ctx context.Context, owner, id uuid.UUID, changes changeset.TimeEntryChanges) (model.TimeEntry, error) {
	var out model.TimeEntry
	err := database.WithTx(ctx, r.db, func(q database.DBTX) error {
		s := scoped(owner, id)
		if taskID, ok := changes.TaskID.Get(); ok {
			if err := ensureOwned(ctx, q, "tasks", "Task", owner, taskID); err != nil {
				return err
			}
		}
		var storedStart time.Time
		if changes.NeedsStoredStart() {
			err := q.QueryRowContext(ctx, `SELECT start_time FROM time_entries WHERE `+s.where(""), s.args()...).Scan(&storedStart)
			if err != nil {
				return translate(err, "TimeEntry", id)
			}
		}
		var err error
		if changes, err = changes.DeriveDuration(storedStart.UTC()); err != nil {
			return err
		}
		if err := scopedUpdate(ctx, q, "time_entries", s, changes.Assignments()); err != nil {
			return translate(err, "TimeEntry", id)
		}
		out, err = getTimeEntry(ctx, q, s)
		return err
	})
	return out, err
}

// Delete removes the time entry.
func (r *TimeEntryRepo) Delete(ctx context.Context, owner, id uuid.UUID) (int64, error) {
	var n int64
	err := database.WithConn(ctx, r.db, func(q database.DBTX) error {
		var err error
		n, err = scopedDelete(ctx, q, "time_entries", scoped(owner, id))
		return wrapDB(err, "delete time entry")
	})
	return n, err
}

func getTimeEntry(ctx context.Context, q database.DBTX, s scope) (model.TimeEntry, error) {
	row := q.QueryRowContext(ctx, `SELECT `+timeEntryColumns+` FROM time_entries WHERE `+s.where(""), s.args()...)
	e, err := scanTimeEntry(row)
	return e, translate(err, "TimeEntry", s.id)
}

func scanTimeEntry(row rowScanner) (model.TimeEntry, error) {
	var e model.TimeEntry
	if err := row.Scan(&e.ID, &e.UserID, &e.TaskID, &e.StartTime, &e.EndTime,
		&e.DurationSeconds, &e.IsPomodoroSession, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return model.TimeEntry{}, err
	}
	e.StartTime, e.CreatedAt, e.UpdatedAt = e.StartTime.UTC(), e.CreatedAt.UTC(), e.UpdatedAt.UTC()
	e.EndTime = utcPtr(e.EndTime)
	return e, nil
}
