package middleware

// identity.go resolves the caller for every protected request and stores
// it in the Echo context under ContextUserID. Downstream handlers read it
// with UserID and never see an unauthenticated request.

import (
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/optitask/internal/apperr"
)

const (
	// ContextUserID is the echo.Context key holding the caller's uuid.UUID.
	ContextUserID = "user_id"
	// UserIDHeader carries a pre-validated caller id from an upstream gateway.
	UserIDHeader = "X-User-Id"
)

// IdentityConfig selects which identity sources are accepted.
type IdentityConfig struct {
	JWTSecret       string // enables Bearer tokens when non-empty
	TrustUserHeader bool   // accept UserIDHeader
}

// Identity returns a middleware that rejects requests without a valid
// caller. A Bearer token, when JWT is enabled and the header is present,
// takes precedence over UserIDHeader; an invalid token is never retried
// against the header.
func Identity(cfg IdentityConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			if cfg.JWTSecret != "" {
				if raw, ok := bearerToken(req.Header.Get(echo.HeaderAuthorization)); ok {
					id, err := bearerSubject(cfg.JWTSecret, raw)
					if err != nil {
						return err
					}
					c.Set(ContextUserID, id)
					return next(c)
				}
			}

			if cfg.TrustUserHeader {
				id, err := uuid.Parse(strings.TrimSpace(req.Header.Get(UserIDHeader)))
				if err == nil && id != uuid.Nil {
					c.Set(ContextUserID, id)
					return next(c)
				}
				return apperr.NewUnauthorized("Missing or invalid X-User-Id header")
			}
			return apperr.NewUnauthorized("Missing bearer token")
		}
	}
}

// UserID returns the caller stored by Identity.
func UserID(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(ContextUserID).(uuid.UUID)
	return id, ok && id != uuid.Nil
}
