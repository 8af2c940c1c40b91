package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/optitask/internal/database"
	"github.com/iliyamo/optitask/internal/model"
)

// AnalyticsRepo runs the aggregation queries behind the reports. Both
// queries only see the caller's own time entries whose start_time lies
// within [from, to].
type AnalyticsRepo struct {
	db *sql.DB
}

// NewAnalyticsRepo constructs an AnalyticsRepo.
func NewAnalyticsRepo(db *sql.DB) *AnalyticsRepo {
	return &AnalyticsRepo{db: db}
}

// TimeByProject sums tracked seconds per project, largest total first.
// Entries whose task has no project are left out.
func (r *AnalyticsRepo) TimeByProject(ctx context.Context, owner uuid.UUID, from, to time.Time) ([]model.TimeByProjectStat, error) {
	out := []model.TimeByProjectStat{}
	err := database.WithConn(ctx, r.db, func(q database.DBTX) error {
		const query = `SELECT p.id, p.name, COALESCE(SUM(te.duration_seconds), 0) AS total
			FROM time_entries te
			JOIN tasks t ON t.id = te.task_id
			JOIN projects p ON p.id = t.project_id
			WHERE te.user_id = ? AND p.user_id = ?
			  AND te.start_time >= ? AND te.start_time <= ?
			GROUP BY p.id, p.name
			ORDER BY total DESC, p.name ASC`
		rows, err := q.QueryContext(ctx, query, owner, owner, from.UTC(), to.UTC())
		if err != nil {
			return wrapDB(err, "time by project")
		}
		defer rows.Close()
		for rows.Next() {
			var s model.TimeByProjectStat
			if err := rows.Scan(&s.ProjectID, &s.ProjectName, &s.TotalDurationSeconds); err != nil {
				return wrapDB(err, "scan time by project")
			}
			out = append(out, s)
		}
		return wrapDB(rows.Err(), "time by project")
	})
	return out, err
}

// ProductivityTrend sums tracked seconds per UTC day of start_time,
// earliest day first. Days without entries are not returned.
func (r *AnalyticsRepo) ProductivityTrend(ctx context.Context, owner uuid.UUID, from, to time.Time) ([]model.ProductivityTrendPoint, error) {
	out := []model.ProductivityTrendPoint{}
	err := database.WithConn(ctx, r.db, func(q database.DBTX) error {
		const query = `SELECT DATE(te.start_time) AS date_point, COALESCE(SUM(te.duration_seconds), 0) AS total
			FROM time_entries te
			WHERE te.user_id = ? AND te.start_time >= ? AND te.start_time <= ?
			GROUP BY DATE(te.start_time)
			ORDER BY date_point ASC`
		rows, err := q.QueryContext(ctx, query, owner, from.UTC(), to.UTC())
		if err != nil {
			return wrapDB(err, "productivity trend")
		}
		defer rows.Close()
		for rows.Next() {
			var p model.ProductivityTrendPoint
			if err := rows.Scan(&p.DatePoint, &p.TotalDurationSeconds); err != nil {
				return wrapDB(err, "scan productivity trend")
			}
			out = append(out, p)
		}
		return wrapDB(rows.Err(), "productivity trend")
	})
	return out, err
}
