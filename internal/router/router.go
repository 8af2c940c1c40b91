package router // package router builds the Echo instance and registers the API routes

import (
	"database/sql"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/iliyamo/optitask/internal/analytics"
	"github.com/iliyamo/optitask/internal/handler"
	"github.com/iliyamo/optitask/internal/middleware"
	"github.com/iliyamo/optitask/internal/repository"
)

// Options configures the server-wide middleware.
type Options struct {
	BodyLimit      string                    // e.g. "4K"; empty disables the limit
	RequestTimeout time.Duration             // zero disables the per-request deadline
	LogLevel       log.Lvl                   // level of the Echo logger
	AccessLog      bool                      // request logging through middleware.Logger
	Identity       middleware.IdentityConfig // accepted caller identity sources
	RateLimit      echo.MiddlewareFunc       // optional, runs after identity
}

// Handlers bundles every handler the API serves.
type Handlers struct {
	Health      *handler.HealthHandler
	Projects    *handler.ProjectHandler
	Tasks       *handler.TaskHandler
	Labels      *handler.LabelHandler
	TimeEntries *handler.TimeEntryHandler
	Analytics   *handler.AnalyticsHandler
}

// NewHandlers wires repositories over db into handlers. events may be nil;
// clock defaults to time.Now.
func NewHandlers(db *sql.DB, events handler.EventPublisher, clock func() time.Time) Handlers {
	if clock == nil {
		clock = time.Now
	}
	return Handlers{
		Health:      handler.NewHealthHandler(db),
		Projects:    handler.NewProjectHandler(repository.NewProjectRepo(db, clock), clock),
		Tasks:       handler.NewTaskHandler(repository.NewTaskRepo(db, clock), repository.NewTaskLabelRepo(db), clock),
		Labels:      handler.NewLabelHandler(repository.NewLabelRepo(db, clock), clock),
		TimeEntries: handler.NewTimeEntryHandler(repository.NewTimeEntryRepo(db, clock), events, clock),
		Analytics:   handler.NewAnalyticsHandler(analytics.NewEngine(repository.NewAnalyticsRepo(db), clock)),
	}
}

// New creates the Echo instance with the error envelope and the
// server-wide middleware installed.
func New(opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handler.ErrorHandler
	e.Logger.SetLevel(opts.LogLevel)

	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.RequestID())
	if opts.AccessLog {
		e.Use(echomw.Logger())
	}
	e.Use(echomw.Recover())
	if opts.BodyLimit != "" {
		e.Use(echomw.BodyLimit(opts.BodyLimit))
	}
	if opts.RequestTimeout > 0 {
		e.Use(echomw.ContextTimeout(opts.RequestTimeout))
	}
	return e
}

// RegisterRoutes registers /health and the protected API. Every API route
// runs the identity middleware first, then the optional rate limiter.
func RegisterRoutes(e *echo.Echo, h Handlers, opts Options) {
	// Health stays outside authentication so load balancers can call it.
	e.GET("/health", h.Health.Health)

	protect := []echo.MiddlewareFunc{middleware.Identity(opts.Identity)}
	if opts.RateLimit != nil {
		protect = append(protect, opts.RateLimit)
	}

	projects := e.Group("/projects", protect...)
	projects.POST("", h.Projects.Create)
	projects.GET("", h.Projects.List)
	projects.GET("/:id", h.Projects.Get)
	projects.PUT("/:id", h.Projects.Update)
	projects.DELETE("/:id", h.Projects.Delete)

	tasks := e.Group("/tasks", protect...)
	tasks.POST("", h.Tasks.Create)
	tasks.GET("", h.Tasks.List)
	tasks.GET("/:id", h.Tasks.Get)
	tasks.PUT("/:id", h.Tasks.Update)
	tasks.DELETE("/:id", h.Tasks.Delete)
	// Labels of one task share the /tasks scope.
	tasks.POST("/:id/labels", h.Tasks.AddLabel)
	tasks.GET("/:id/labels", h.Tasks.ListLabels)
	tasks.DELETE("/:id/labels/:labelId", h.Tasks.RemoveLabel)

	labels := e.Group("/labels", protect...)
	labels.POST("", h.Labels.Create)
	labels.GET("", h.Labels.List)
	labels.GET("/:id", h.Labels.Get)
	labels.PUT("/:id", h.Labels.Update)
	labels.DELETE("/:id", h.Labels.Delete)

	entries := e.Group("/time-entries", protect...)
	entries.POST("", h.TimeEntries.Create)
	entries.GET("", h.TimeEntries.List)
	entries.GET("/:id", h.TimeEntries.Get)
	entries.PUT("/:id", h.TimeEntries.Update)
	entries.DELETE("/:id", h.TimeEntries.Delete)

	reports := e.Group("/analytics", protect...)
	reports.GET("/time-by-project", h.Analytics.TimeByProject)
	reports.GET("/productivity-trend", h.Analytics.ProductivityTrend)
}
