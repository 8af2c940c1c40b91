package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/optitask/internal/analytics"
)

// AnalyticsHandler exposes the /analytics reports. Both accept either
// ?period=... or ?start_date=YYYY-MM-DD&end_date=YYYY-MM-DD.
type AnalyticsHandler struct {
	Engine *analytics.Engine
}

// NewAnalyticsHandler constructs an AnalyticsHandler and panics if engine is nil.
func NewAnalyticsHandler(engine *analytics.Engine) *AnalyticsHandler {
	if engine == nil {
		panic("nil engine passed to NewAnalyticsHandler")
	}
	return &AnalyticsHandler{Engine: engine}
}

func reportQuery(c echo.Context) (analytics.Query, error) {
	return analytics.ParseQuery(c.QueryParam("period"), c.QueryParam("start_date"), c.QueryParam("end_date"))
}

// TimeByProject handles GET /analytics/time-by-project.
func (h *AnalyticsHandler) TimeByProject(c echo.Context) error {
	owner, err := getUserID(c)
	if err != nil {
		return err
	}
	q, err := reportQuery(c)
	if err != nil {
		return err
	}
	stats, err := h.Engine.TimeByProject(c.Request().Context(), owner, q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// ProductivityTrend handles GET /analytics/productivity-trend.
func (h *AnalyticsHandler) ProductivityTrend(c echo.Context) error {
	owner, err := getUserID(c)
	if err != nil {
		return err
	}
	q, err := reportQuery(c)
	if err != nil {
		return err
	}
	points, err := h.Engine.ProductivityTrend(c.Request().Context(), owner, q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, points)
}
