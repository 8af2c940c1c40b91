package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/optitask/internal/apperr"
)

// ErrorHandler renders every error as
// {"status":"error","statusCode":N,"message":M}. 5xx responses carry a
// generic message; the detail goes to the log at ERROR. 4xx are logged
// at WARN.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status, message := classify(err)
	if status >= http.StatusInternalServerError {
		c.Logger().Errorf("server error response (%d) %s %s: %v", status, c.Request().Method, c.Request().URL.Path, err)
	} else {
		c.Logger().Warnf("client error response (%d) %s %s: %v", status, c.Request().Method, c.Request().URL.Path, err)
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(status)
	} else {
		werr = c.JSON(status, echo.Map{
			"status":     "error",
			"statusCode": status,
			"message":    message,
		})
	}
	if werr != nil {
		c.Logger().Errorf("write error response: %v", werr)
	}
}

// classify maps err onto a status code and the message a client may see.
func classify(err error) (int, string) {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae.Kind.Status(), apperr.PublicMessage(ae)
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code >= http.StatusInternalServerError {
			return he.Code, apperr.GenericMessage
		}
		if m, ok := he.Message.(string); ok {
			return he.Code, m
		}
		return he.Code, fmt.Sprint(he.Message)
	}
	return http.StatusInternalServerError, apperr.GenericMessage
}
