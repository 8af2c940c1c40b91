package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/iliyamo/optitask/internal/apperr"
	"github.com/iliyamo/optitask/internal/database"
	"github.com/iliyamo/optitask/internal/model"
)

// TaskLabelRepo manages the task to label association. Each operation is
// gated on the caller owning the task; adding also requires owning the
// label. Checks and the mutation share one transaction.
type TaskLabelRepo struct {
	db *sql.DB
}

// NewTaskLabelRepo constructs a TaskLabelRepo.
func NewTaskLabelRepo(db *sql.DB) *TaskLabelRepo {
	return &TaskLabelRepo{db: db}
}

// AddLabel attaches labelID to taskID. The task is checked before the
// label. Attaching a label twice fails with a Database error from the
// composite primary key.
func (r *TaskLabelRepo) AddLabel(ctx context.Context, owner, taskID, labelID uuid.UUID) (model.TaskLabel, error) {
	link := model.TaskLabel{TaskID: taskID, LabelID: labelID}
	err := database.WithTx(ctx, r.db, func(q database.DBTX) error {
		if err := ensureOwned(ctx, q, "tasks", "Task", owner, taskID); err != nil {
			return err
		}
		if err := ensureOwned(ctx, q, "labels", "Label", owner, labelID); err != nil {
			return err
		}
		_, err := q.ExecContext(ctx, `INSERT INTO task_labels (task_id, label_id) VALUES (?, ?)`, taskID, labelID)
		return wrapDB(err, "insert task label")
	})
	return link, err
}

// ListLabels returns the labels attached to one of owner's tasks.
func (r *TaskLabelRepo) ListLabels(ctx context.Context, owner, taskID uuid.UUID) ([]model.Label, error) {
	out := []model.Label{}
	err := database.WithConn(ctx, r.db, func(q database.DBTX) error {
		if err := ensureOwned(ctx, q, "tasks", "Task", owner, taskID); err != nil {
			return err
		}
		byTask, err := labelsByTask(ctx, q, []uuid.UUID{taskID})
		if err != nil {
			return err
		}
		out = append(out, byTask[taskID]...)
		return nil
	})
	return out, err
}

// RemoveLabel detaches labelID from taskID. Only the task's ownership is
// checked. Removing a label that is not attached fails with NotFound.
func (r *TaskLabelRepo) RemoveLabel(ctx context.Context, owner, taskID, labelID uuid.UUID) error {
	return database.WithTx(ctx, r.db, func(q database.DBTX) error {
		if err := ensureOwned(ctx, q, "tasks", "Task", owner, taskID); err != nil {
			return err
		}
		res, err := q.ExecContext(ctx, `DELETE FROM task_labels WHERE task_id = ? AND label_id = ?`, taskID, labelID)
		if err != nil {
			return wrapDB(err, "delete task label")
		}
		n, err := res.RowsAffected()
		if err != nil {
			return wrapDB(err, "delete task label")
		}
		if n == 0 {
			return apperr.NotFoundf("Label with id %s is not attached to task %s", labelID, taskID)
		}
		return nil
	})
}
