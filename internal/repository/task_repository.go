package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/iliyamo/optitask/internal/changeset"
	"github.com/iliyamo/optitask/internal/database"
	"github.com/iliyamo/optitask/internal/model"
)

const taskColumns = "id, user_id, project_id, title, description, status, due_date, task_order, created_at, updated_at"

// TaskFilter narrows a task listing. Nil fields do not filter.
type TaskFilter struct {
	ProjectID *uuid.UUID
	Status    *string
}

// TaskRepo encapsulates all database queries related to tasks. Reads
// return tasks with their labels attached.
type TaskRepo struct {
	db    *sql.DB
	clock Clock
}

var _ Scoped[model.TaskWithLabels, changeset.NewTask, changeset.TaskChanges] = (*TaskRepo)(nil)

// NewTaskRepo constructs a TaskRepo. A nil clock uses time.Now.
func NewTaskRepo(db *sql.DB, clock Clock) *TaskRepo {
	return &TaskRepo{db: db, clock: clock}
}

// Create inserts a task for owner. A referenced project must belong to
// owner, otherwise the call fails with NotFound.
func (r *TaskRepo) Create(ctx context.Context, owner uuid.UUID, in changeset.NewTask) (model.TaskWithLabels, error) {
	var out model.TaskWithLabels
	err := database.WithTx(ctx, r.db, func(q database.DBTX) error {
		if in.ProjectID != nil {
			if err := ensureOwned(ctx, q, "projects", "Project", owner, *in.ProjectID); err != nil {
				return err
			}
		}
		id, now := uuid.New(), r.clock.stamp()
		const qInsert = `INSERT INTO tasks (` + taskColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		if _, err := q.ExecContext(ctx, qInsert,
			id, owner, in.ProjectID, in.Title, in.Description, in.Status, in.DueDate, in.Order, now, now); err != nil {
			return wrapDB(err, "insert task")
		}
		var err error
		out, err = getTask(ctx, q, scoped(owner, id))
		return err
	})
	return out, err
}

// Get fetches a task with its labels.
func (r *TaskRepo) Get(ctx context.Context, owner, id uuid.UUID) (model.TaskWithLabels, error) {
	var out model.TaskWithLabels
	err := database.WithConn(ctx, r.db, func(q database.DBTX) error {
		var err error
		out, err = getTask(ctx, q, scoped(owner, id))
		return err
	})
	return out, err
}

// List returns owner's tasks ordered by manual order (unordered tasks
// last), then newest first. Labels are loaded with one extra query.
func (r *TaskRepo) List(ctx context.Context, owner uuid.UUID, f TaskFilter) ([]model.TaskWithLabels, error) {
	out := []model.TaskWithLabels{}
	err := database.WithConn(ctx, r.db, func(q database.DBTX) error {
		query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ?`
		args := []any{owner}
		if f.ProjectID != nil {
			query += ` AND project_id = ?`
			args = append(args, *f.ProjectID)
		}
		if f.Status != nil {
			query += ` AND status = ?`
			args = append(args, *f.Status)
		}
		// (task_order IS NULL) sorts NULLs last on both MySQL and SQLite
		query += ` ORDER BY (task_order IS NULL), task_order ASC, created_at DESC`

		tasks, err := queryTasks(ctx, q, query, args...)
		if err != nil {
			return err
		}
		ids := make([]uuid.UUID, len(tasks))
		for i, t := range tasks {
			ids[i] = t.ID
		}
		labels, err := labelsByTask(ctx, q, ids)
		if err != nil {
			return err
		}
		for _, t := range tasks {
			out = append(out, t.WithLabels(labels[t.ID]))
		}
		return nil
	})
	return out, err
}

// Update applies changes to the task and returns it with its labels.
// Moving the task to a project requires owning that project.
func (r *TaskRepo) Update(ctx context.Context, owner, id uuid.UUID, changes changeset.TaskChanges) (model.TaskWithLabels, error) {
	var out model.TaskWithLabels
	err := database.WithTx(ctx, r.db, func(q database.DBTX) error {
		if pid, ok := changes.ProjectID.Get(); ok {
			if err := ensureOwned(ctx, q, "projects", "Project", owner, pid); err != nil {
				return err
			}
		}
		s := scoped(owner, id)
		if err := scopedUpdate(ctx, q, "tasks", s, changes.Assignments()); err != nil {
			return translate(err, "Task", id)
		}
		var err error
		out, err = getTask(ctx, q, s)
		return err
	})
	return out, err
}

// Delete removes the task together with its time entries and label links.
func (r *TaskRepo) Delete(ctx context.Context, owner, id uuid.UUID) (int64, error) {
	var n int64
	err := database.WithConn(ctx, r.db, func(q database.DBTX) error {
		var err error
		n, err = scopedDelete(ctx, q, "tasks", scoped(owner, id))
		return wrapDB(err, "delete task")
	})
	return n, err
}

func getTask(ctx context.Context, q database.DBTX, s scope) (model.TaskWithLabels, error) {
	row := q.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE `+s.where(""), s.args()...)
	t, err := scanTask(row)
	if err != nil {
		return model.TaskWithLabels{}, translate(err, "Task", s.id)
	}
	labels, err := labelsByTask(ctx, q, []uuid.UUID{t.ID})
	if err != nil {
		return model.TaskWithLabels{}, err
	}
	return t.WithLabels(labels[t.ID]), nil
}

// queryTasks reads every row before returning so the connection is free
// for the label query that follows.
func queryTasks(ctx context.Context, q database.DBTX, query string, args ...any) ([]model.Task, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDB(err, "list tasks")
	}
	defer rows.Close()
	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, wrapDB(err, "scan task")
		}
		tasks = append(tasks, t)
	}
	return tasks, wrapDB(rows.Err(), "list tasks")
}

func scanTask(row rowScanner) (model.Task, error) {
	var t model.Task
	if err := row.Scan(&t.ID, &t.UserID, &t.ProjectID, &t.Title, &t.Description,
		&t.Status, &t.DueDate, &t.Order, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return model.Task{}, err
	}
	t.CreatedAt, t.UpdatedAt = t.CreatedAt.UTC(), t.UpdatedAt.UTC()
	return t, nil
}

// labelsByTask loads the labels attached to each of taskIDs, ordered by
// name within a task.
func labelsByTask(ctx context.Context, q database.DBTX, taskIDs []uuid.UUID) (map[uuid.UUID][]model.Label, error) {
	out := make(map[uuid.UUID][]model.Label, len(taskIDs))
	if len(taskIDs) == 0 {
		return out, nil
	}
	args := make([]any, len(taskIDs))
	for i, id := range taskIDs {
		args[i] = id
	}
	rows, err := q.QueryContext(ctx, `SELECT tl.task_id, l.id, l.user_id, l.name, l.color, l.created_at, l.updated_at
		FROM task_labels tl
		JOIN labels l ON l.id = tl.label_id
		WHERE tl.task_id IN (`+placeholders(len(taskIDs))+`)
		ORDER BY l.name, l.id`, args...)
	if err != nil {
		return nil, wrapDB(err, "load task labels")
	}
	defer rows.Close()
	for rows.Next() {
		var taskID uuid.UUID
		var l model.Label
		if err := rows.Scan(&taskID, &l.ID, &l.UserID, &l.Name, &l.Color, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, wrapDB(err, "scan task label")
		}
		l.CreatedAt, l.UpdatedAt = l.CreatedAt.UTC(), l.UpdatedAt.UTC()
		out[taskID] = append(out[taskID], l)
	}
	return out, wrapDB(rows.Err(), "load task labels")
}
