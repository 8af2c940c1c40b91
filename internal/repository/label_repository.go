package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/iliyamo/optitask/internal/changeset"
	"github.com/iliyamo/optitask/internal/database"
	"github.com/iliyamo/optitask/internal/model"
)

const labelColumns = "id, user_id, name, color, created_at, updated_at"

// LabelRepo encapsulates all database queries related to labels.
type LabelRepo struct {
	db    *sql.DB
	clock Clock
}

var _ Scoped[model.Label, changeset.NewLabel, changeset.LabelChanges] = (*LabelRepo)(nil)

// NewLabelRepo constructs a LabelRepo. A nil clock uses time.Now.
func NewLabelRepo(db *sql.DB, clock Clock) *LabelRepo {
	return &LabelRepo{db: db, clock: clock}
}

// Create inserts a label for owner and returns the stored row.
func (r *LabelRepo) Create(ctx context.Context, owner uuid.UUID, in changeset.NewLabel) (model.Label, error) {
	var out model.Label
	err := database.WithConn(ctx, r.db, func(q database.DBTX) error {
		id, now := uuid.New(), r.clock.stamp()
		const qInsert = `INSERT INTO labels (` + labelColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
		if _, err := q.ExecContext(ctx, qInsert, id, owner, in.Name, in.Color, now, now); err != nil {
			return wrapDB(err, "insert label")
		}
		var err error
		out, err = getLabel(ctx, q, scoped(owner, id))
		return err
	})
	return out, err
}

// Get fetches a label by id for owner.
func (r *LabelRepo) Get(ctx context.Context, owner, id uuid.UUID) (model.Label, error) {
	var out model.Label
	err := database.WithConn(ctx, r.db, func(q database.DBTX) error {
		var err error
		out, err = getLabel(ctx, q, scoped(owner, id))
		return err
	})
	return out, err
}

// List returns all labels of owner, newest first.
func (r *LabelRepo) List(ctx context.Context, owner uuid.UUID) ([]model.Label, error) {
	out := []model.Label{}
	err := database.WithConn(ctx, r.db, func(q database.DBTX) error {
		rows, err := q.QueryContext(ctx, `SELECT `+labelColumns+` FROM labels
			WHERE user_id = ? ORDER BY created_at DESC, id`, owner)
		if err != nil {
			return wrapDB(err, "list labels")
		}
		defer rows.Close()
		for rows.Next() {
			l, err := scanLabel(rows)
			if err != nil {
				return wrapDB(err, "scan label")
			}
			out = append(out, l)
		}
		return wrapDB(rows.Err(), "list labels")
	})
	return out, err
}

// Update applies changes to the label and returns the stored row.
func (r *LabelRepo) Update(ctx context.Context, owner, id uuid.UUID, changes changeset.LabelChanges) (model.Label, error) {
	var out model.Label
	err := database.WithTx(ctx, r.db, func(q database.DBTX) error {
		s := scoped(owner, id)
		if err := scopedUpdate(ctx, q, "labels", s, changes.Assignments()); err != nil {
			return translate(err, "Label", id)
		}
		var err error
		out, err = getLabel(ctx, q, s)
		return err
	})
	return out, err
}

// Delete removes the label and detaches it from every task.
func (r *LabelRepo) Delete(ctx context.Context, owner, id uuid.UUID) (int64, error) {
	var n int64
	err := database.WithConn(ctx, r.db, func(q database.DBTX) error {
		var err error
		n, err = scopedDelete(ctx, q, "labels", scoped(owner, id))
		return wrapDB(err, "delete label")
	})
	return n, err
}

func getLabel(ctx context.Context, q database.DBTX, s scope) (model.Label, error) {
	row := q.QueryRowContext(ctx, `SELECT `+labelColumns+` FROM labels WHERE `+s.where(""), s.args()...)
	l, err := scanLabel(row)
	return l, translate(err, "Label", s.id)
}

func scanLabel(row rowScanner) (model.Label, error) {
	var l model.Label
	if err := row.Scan(&l.ID, &l.UserID, &l.Name, &l.Color, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return model.Label{}, err
	}
	l.CreatedAt, l.UpdatedAt = l.CreatedAt.UTC(), l.UpdatedAt.UTC()
	return l, nil
}
