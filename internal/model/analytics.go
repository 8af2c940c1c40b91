package model

import "github.com/google/uuid"

// TimeByProjectStat is one row of the time-by-project report.
type TimeByProjectStat struct {
	ProjectID            uuid.UUID `json:"project_id"`
	ProjectName          string    `json:"project_name"`
	TotalDurationSeconds int64     `json:"total_duration_seconds"`
}

// ProductivityTrendPoint is the tracked total for one UTC calendar day.
type ProductivityTrendPoint struct {
	DatePoint            Date  `json:"date_point"`
	TotalDurationSeconds int64 `json:"total_duration_seconds"`
}
