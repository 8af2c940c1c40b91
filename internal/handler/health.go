package handler // declare the package name; contains HTTP handlers

import (
	"database/sql" // sql provides the pooled connection handle
	"net/http"     // net/http provides status codes and response helpers

	"github.com/labstack/echo/v4" // echo is the web framework used for this project

	"github.com/iliyamo/optitask/internal/database" // database checks connections out of the pool
)

// HealthHandler reports whether the service can reach its database.
type HealthHandler struct {
	DB *sql.DB // DB is the process-wide pool
}

// NewHealthHandler constructs a HealthHandler and panics if db is nil.
func NewHealthHandler(db *sql.DB) *HealthHandler {
	if db == nil {
		panic("nil db passed to NewHealthHandler")
	}
	return &HealthHandler{DB: db}
}

// Health is used by load balancers and monitoring systems. It checks a
// connection out of the pool and pings it; failure is a PoolError.
func (h *HealthHandler) Health(c echo.Context) error {
	if err := database.Ping(c.Request().Context(), h.DB); err != nil {
		return err // reported as a PoolError envelope
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "success",
		"message": "Healthy and DB Pool accessible",
	})
}
