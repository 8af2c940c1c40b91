package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/optitask/internal/model"
)

// Store runs the aggregation queries. Both methods filter the caller's
// time entries by start_time within [from, to].
type Store interface {
	TimeByProject(ctx context.Context, owner uuid.UUID, from, to time.Time) ([]model.TimeByProjectStat, error)
	ProductivityTrend(ctx context.Context, owner uuid.UUID, from, to time.Time) ([]model.ProductivityTrendPoint, error)
}

// Engine answers report requests for one caller at a time.
type Engine struct {
	store Store
	now   func() time.Time
}

// NewEngine returns an Engine over store. now defaults to time.Now and is
// only used to find today's UTC date.
func NewEngine(store Store, now func() time.Time) *Engine {
	if store == nil {
		panic("analytics: nil store")
	}
	if now == nil {
		now = time.Now
	}
	return &Engine{store: store, now: now}
}

// Resolve turns q into a concrete range relative to the current day.
func (e *Engine) Resolve(q Query) (DateRange, error) {
	return CalculateDateRange(q, model.DateOf(e.now()))
}

// TimeByProject totals tracked seconds per project over the resolved range.
func (e *Engine) TimeByProject(ctx context.Context, owner uuid.UUID, q Query) ([]model.TimeByProjectStat, error) {
	r, err := e.Resolve(q)
	if err != nil {
		return nil, err
	}
	from, to := r.Bounds()
	return e.store.TimeByProject(ctx, owner, from, to)
}

// ProductivityTrend totals tracked seconds per day over the resolved range.
func (e *Engine) ProductivityTrend(ctx context.Context, owner uuid.UUID, q Query) ([]model.ProductivityTrendPoint, error) {
	r, err := e.Resolve(q)
	if err != nil {
		return nil, err
	}
	from, to := r.Bounds()
	return e.store.ProductivityTrend(ctx, owner, from, to)
}
