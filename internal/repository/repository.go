package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/optitask/internal/changeset"
	"github.com/iliyamo/optitask/internal/database"
)

// Scoped is the ownership-scoped CRUD contract implemented once per
// entity kind. E is the read shape, N the create input and C the
// changeset. Every method filters by both the row id and owner, so a row
// owned by someone else behaves exactly like a missing one.
type Scoped[E, N, C any] interface {
	Create(ctx context.Context, owner uuid.UUID, in N) (E, error)
	Get(ctx context.Context, owner, id uuid.UUID) (E, error)
	Update(ctx context.Context, owner, id uuid.UUID, changes C) (E, error)
	// Delete reports how many rows were removed; 0 means nothing matched.
	Delete(ctx context.Context, owner, id uuid.UUID) (int64, error)
}

// Clock supplies the creation timestamp of new rows.
type Clock func() time.Time

// stamp returns the clock's time in UTC at second precision, which both
// databases store losslessly.
func (c Clock) stamp() time.Time {
	if c == nil {
		c = time.Now
	}
	return c().UTC().Truncate(time.Second)
}

// scope is the owner filter applied to every single-row statement.
type scope struct {
	id    uuid.UUID
	owner uuid.UUID
}

func scoped(owner, id uuid.UUID) scope { return scope{id: id, owner: owner} }

// where renders the predicate; alias is a table alias or empty.
func (s scope) where(alias string) string {
	if alias != "" {
		alias += "."
	}
	return alias + "id = ? AND " + alias + "user_id = ?"
}

func (s scope) args() []any { return []any{s.id, s.owner} }

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scopedUpdate applies set to the single row matched by s. It returns
// sql.ErrNoRows when no row matched.
func scopedUpdate(ctx context.Context, q database.DBTX, table string, s scope, set []changeset.Assignment) error {
	cols := make([]string, 0, len(set))
	args := make([]any, 0, len(set)+2)
	for _, a := range set {
		cols = append(cols, a.Column+" = ?")
		args = append(args, a.Value)
	}
	query := "UPDATE " + table + " SET " + strings.Join(cols, ", ") + " WHERE " + s.where("")
	res, err := q.ExecContext(ctx, query, append(args, s.args()...)...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// scopedDelete removes the row matched by s and reports the count.
func scopedDelete(ctx context.Context, q database.DBTX, table string, s scope) (int64, error) {
	res, err := q.ExecContext(ctx, "DELETE FROM "+table+" WHERE "+s.where(""), s.args()...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ensureOwned fails with NotFound unless table holds id for owner.
func ensureOwned(ctx context.Context, q database.DBTX, table, entity string, owner, id uuid.UUID) error {
	s := scoped(owner, id)
	var one int
	err := q.QueryRowContext(ctx, "SELECT 1 FROM "+table+" WHERE "+s.where(""), s.args()...).Scan(&one)
	return translate(err, entity, id)
}

// placeholders returns "?, ?, ..." for n arguments.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
