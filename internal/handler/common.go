package handler // handler defines the HTTP handlers of the API

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/optitask/internal/apperr"
	"github.com/iliyamo/optitask/internal/changeset"
	"github.com/iliyamo/optitask/internal/middleware"
)

// Clock returns the current time; tests substitute a fixed one.
type Clock func() time.Time

func (f Clock) now() time.Time {
	if f == nil {
		return time.Now()
	}
	return f()
}

// getUserID returns the caller resolved by the identity middleware.
func getUserID(c echo.Context) (uuid.UUID, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return uuid.Nil, apperr.NewUnauthorized("Missing or invalid X-User-Id header")
	}
	return id, nil
}

// pathID parses the named path parameter as a UUID.
func pathID(c echo.Context, name string) (uuid.UUID, error) {
	raw := c.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.BadRequestf("Invalid %s: %q is not a valid UUID", name, raw)
	}
	return id, nil
}

// queryID parses an optional UUID query parameter.
func queryID(c echo.Context, name string) (*uuid.UUID, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperr.BadRequestf("Invalid %s: %q is not a valid UUID", name, raw)
	}
	return &id, nil
}

// readPayload reads the request body as a JSON object. The body limit
// middleware turns oversized bodies into a 413 while it is being read.
func readPayload(c echo.Context) (changeset.Payload, error) {
	req := c.Request()
	if ct := req.Header.Get(echo.HeaderContentType); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil || mt != echo.MIMEApplicationJSON {
			return nil, echo.ErrUnsupportedMediaType
		}
	}
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}
	return changeset.Decode(body)
}

// deleted renders the success envelope of a delete, or NotFound when
// nothing was removed.
func deleted(c echo.Context, entity string, id uuid.UUID, n int64) error {
	if n == 0 {
		return apperr.NotFoundf("%s with id %s not found or not owned by user to delete", entity, id)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "success",
		"message": fmt.Sprintf("%s with id %s deleted successfully", entity, id),
	})
}
