package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/apperr"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/logger"
)

// writeError converts a service error into the wire envelope
// {"error": {"code": ..., "message": ...}} with the mapped status. Clients
// branch on the code; the message is informational. Unclassified errors are
// logged with their cause and surface as a generic 500.
func writeError(c echo.Context, log *logger.Logger, err error) error {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed",
			"method", c.Request().Method,
			"path", c.Path(),
			"error", err,
		)
	}

	return c.JSON(status, map[string]interface{}{
		"error": map[string]interface{}{
			"code":    apperr.CodeOf(err),
			"message": apperr.MessageOf(err),
		},
	})
}

// pathUUID parses a UUID path parameter
func pathUUID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperr.Validation(apperr.CodeInvalidRequest, name+" must be a valid UUID")
	}
	return id, nil
}

// parseUUIDField parses a UUID from a request body field
func parseUUIDField(value, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, apperr.Validation(apperr.CodeInvalidRequest, name+" must be a valid UUID")
	}
	return id, nil
}
