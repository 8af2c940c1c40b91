// Package analytics resolves reporting periods into date ranges and runs
// the time reports over them.
package analytics

import (
	"strings"
	"time"

	"github.com/iliyamo/optitask/internal/apperr"
	"github.com/iliyamo/optitask/internal/model"
)

// Supported period keywords.
const (
	PeriodThisWeek   = "this_week"
	PeriodLast7Days  = "last_7_days"
	PeriodThisMonth  = "this_month"
	PeriodLast30Days = "last_30_days"
)

// Query is the reporting window a client asked for. Explicit dates win
// when both are present; otherwise Period is used.
type Query struct {
	Period    string
	StartDate *model.Date
	EndDate   *model.Date
}

// ParseQuery builds a Query from raw query-string values. Empty strings
// mean the parameter was not sent.
func ParseQuery(period, startDate, endDate string) (Query, error) {
	q := Query{Period: strings.TrimSpace(period)}
	if startDate != "" {
		d, err := model.ParseDate(startDate)
		if err != nil {
			return Query{}, apperr.BadRequestf("Invalid start_date: %v", err)
		}
		q.StartDate = &d
	}
	if endDate != "" {
		d, err := model.ParseDate(endDate)
		if err != nil {
			return Query{}, apperr.BadRequestf("Invalid end_date: %v", err)
		}
		q.EndDate = &d
	}
	return q, nil
}

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	Start model.Date `json:"start_date"`
	End   model.Date `json:"end_date"`
}

// Bounds expands the range to timestamps: Start at 00:00:00 and End at
// 23:59:59, both UTC.
func (r DateRange) Bounds() (time.Time, time.Time) {
	end := r.End.Time().Add(24*time.Hour - time.Second)
	return r.Start.Time(), end
}

// CalculateDateRange resolves q against today. A lone start_date or
// end_date is ignored and the period keyword applies.
func CalculateDateRange(q Query, today model.Date) (DateRange, error) {
	if q.StartDate != nil && q.EndDate != nil {
		if q.StartDate.After(*q.EndDate) {
			return DateRange{}, apperr.BadRequestf("start_date cannot be after end_date")
		}
		return DateRange{Start: *q.StartDate, End: *q.EndDate}, nil
	}

	period := q.Period
	if period == "" {
		period = PeriodThisWeek
	}
	switch period {
	case PeriodThisWeek:
		offset := int(today.Weekday())
		if offset == 0 {
			offset = 7
		}
		start := today.AddDays(1 - offset)
		return DateRange{Start: start, End: start.AddDays(6)}, nil
	case PeriodLast7Days:
		return DateRange{Start: today.AddDays(-6), End: today}, nil
	case PeriodThisMonth:
		t := today.Time()
		first := model.NewDate(t.Year(), t.Month(), 1)
		nextMonth := model.NewDate(t.Year(), t.Month()+1, 1)
		return DateRange{Start: first, End: nextMonth.AddDays(-1)}, nil
	case PeriodLast30Days:
		return DateRange{Start: today.AddDays(-29), End: today}, nil
	default:
		return DateRange{}, apperr.BadRequestf(
			"Invalid period specified: %s. Supported: %s, %s, %s, %s or provide start_date & end_date.",
			period, PeriodThisWeek, PeriodLast7Days, PeriodThisMonth, PeriodLast30Days)
	}
}
