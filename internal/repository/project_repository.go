package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/iliyamo/optitask/internal/changeset"
	"github.com/iliyamo/optitask/internal/database"
	"github.com/iliyamo/optitask/internal/model"
)

const projectColumns = "id, user_id, name, color, created_at, updated_at"

// ProjectRepo encapsulates all database queries related to projects.
type ProjectRepo struct {
	db    *sql.DB
	clock Clock
}

var _ Scoped[model.Project, changeset.NewProject, changeset.ProjectChanges] = (*ProjectRepo)(nil)

// NewProjectRepo constructs a ProjectRepo. A nil clock uses time.Now.
func NewProjectRepo(db *sql.DB, clock Clock) *ProjectRepo {
	return &ProjectRepo{db: db, clock: clock}
}

// Create inserts a project for owner and returns the stored row.
func (r *ProjectRepo) Create(ctx context.Context, owner uuid.UUID, in changeset.NewProject) (model.Project, error) {
	var out model.Project
	err := database.WithConn(ctx, r.db, func(q database.DBTX) error {
		id, now := uuid.New(), r.clock.stamp()
		const qInsert = `INSERT INTO projects (` + projectColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
		if _, err := q.ExecContext(ctx, qInsert, id, owner, in.Name, in.Color, now, now); err != nil {
			return wrapDB(err, "insert project")
		}
		// select back so callers get exactly what was stored
		var err error
		out, err = getProject(ctx, q, scoped(owner, id))
		return err
	})
	return out, err
}

// Get fetches a project by id for owner.
func (r *ProjectRepo) Get(ctx context.Context, owner, id uuid.UUID) (model.Project, error) {
	var out model.Project
	err := database.WithConn(ctx, r.db, func(q database.DBTX) error {
		var err error
		out, err = getProject(ctx, q, scoped(owner, id))
		return err
	})
	return out, err
}

// List returns all projects of owner, newest first.
func (r *ProjectRepo) List(ctx context.Context, owner uuid.UUID) ([]model.Project, error) {
	out := []model.Project{}
	err := database.WithConn(ctx, r.db, func(q database.DBTX) error {
		rows, err := q.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects
			WHERE user_id = ? ORDER BY created_at DESC, id`, owner)
		if err != nil {
			return wrapDB(err, "list projects")
		}
		defer rows.Close()
		for rows.Next() {
			p, err := scanProject(rows)
			if err != nil {
				return wrapDB(err, "scan project")
			}
			out = append(out, p)
		}
		return wrapDB(rows.Err(), "list projects")
	})
	return out, err
}

// Update applies changes to the project and returns the stored row.
func (r *ProjectRepo) Update(ctx context.Context, owner, id uuid.UUID, changes changeset.ProjectChanges) (model.Project, error) {
	var out model.Project
	err := database.WithTx(ctx, r.db, func(q database.DBTX) error {
		s := scoped(owner, id)
		if err := scopedUpdate(ctx, q, "projects", s, changes.Assignments()); err != nil {
			return translate(err, "Project", id)
		}
		var err error
		out, err = getProject(ctx, q, s)
		return err
	})
	return out, err
}

// Delete removes the project. Tasks of the project are kept and become
// unassigned.
func (r *ProjectRepo) Delete(ctx context.Context, owner, id uuid.UUID) (int64, error) {
	var n int64
	err := database.WithConn(ctx, r.db, func(q database.DBTX) error {
		var err error
		n, err = scopedDelete(ctx, q, "projects", scoped(owner, id))
		return wrapDB(err, "delete project")
	})
	return n, err
}

func getProject(ctx context.Context, q database.DBTX, s scope) (model.Project, error) {
	row := q.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE `+s.where(""), s.args()...)
	p, err := scanProject(row)
	return p, translate(err, "Project", s.id)
}

func scanProject(row rowScanner) (model.Project, error) {
	var p model.Project
	if err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Color, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return model.Project{}, err
	}
	p.CreatedAt, p.UpdatedAt = p.CreatedAt.UTC(), p.UpdatedAt.UTC()
	return p, nil
}
