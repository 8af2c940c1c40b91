package middleware

import (
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/optitask/internal/apperr"
	"github.com/iliyamo/optitask/internal/utils"
)

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header value. ok is false when the header is absent or uses another scheme.
func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	raw := strings.TrimSpace(header[len(prefix):])
	return raw, raw != ""
}

// bearerSubject verifies an HS256 access token and returns its subject.
// Every failure is reported as Unauthorized without detail.
func bearerSubject(secret, raw string) (uuid.UUID, error) {
	id, err := utils.ParseAccessToken(secret, raw)
	if err != nil {
		return uuid.Nil, apperr.Wrap(apperr.Unauthorized, err, "Invalid or expired token")
	}
	return id, nil
}
