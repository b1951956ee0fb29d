package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/defm/console/internal/core/domain"
)

// errorResponse is the canonical error envelope of the DEFM backend.
type errorResponse struct {
	Detail string `json:"detail"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"detail": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Detail: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Incorrect username or password"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "Could not validate credentials"
	case errors.Is(err, domain.ErrInactiveUser):
		return http.StatusBadRequest, "Inactive user"
	case errors.Is(err, domain.ErrPermissionDenied), errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "Not enough permissions"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, domain.ErrTargetNotFound):
		return http.StatusNotFound, "Target user not found"
	case errors.Is(err, domain.ErrCaseNotFound):
		return http.StatusNotFound, "Case not found"
	case errors.Is(err, domain.ErrEvidenceNotFound):
		return http.StatusNotFound, "Evidence not found"
	case errors.Is(err, domain.ErrFileNotFound):
		return http.StatusNotFound, "Evidence file not found"
	case errors.Is(err, domain.ErrCustodyNotFound):
		return http.StatusNotFound, "Chain of custody record not found"
	case errors.Is(err, domain.ErrReportNotFound):
		return http.StatusNotFound, "Report not found"
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusBadRequest, "Username or email already registered"
	case errors.Is(err, domain.ErrSelfTransfer):
		return http.StatusBadRequest, "Cannot transfer custody to yourself"
	case errors.Is(err, domain.ErrNoIntegrityData):
		return http.StatusBadRequest, "No file or hash information available"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "Internal server error"
}
