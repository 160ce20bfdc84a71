package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/eventhub/events-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Message string `json:"message"`
}

type mappedError struct {
	err     error
	status  int
	message string
}

// Conflicts answer 400 to stay compatible with existing clients.
var knownErrors = []mappedError{
	{domain.ErrEventNotFound, http.StatusNotFound, "Event not found"},
	{domain.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{domain.ErrAttendeeNotFound, http.StatusNotFound, "Attendance not found"},
	{domain.ErrAlreadyRegistered, http.StatusBadRequest, "Attendee already registered for this event"},
	{domain.ErrDuplicateTitle, http.StatusBadRequest, "This event already exists"},
	{domain.ErrUserExists, http.StatusBadRequest, "The user already exists"},
	{domain.ErrForbidden, http.StatusForbidden, "You are not authorized to perform this action"},
	{domain.ErrUnauthorized, http.StatusUnauthorized, "Authorization token is missing"},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, "Incorrect email or password"},
	{domain.ErrInvalidID, http.StatusBadRequest, "Invalid id"},
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"message": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Message: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, ve.Message
	}

	for _, m := range knownErrors {
		if errors.Is(err, m.err) {
			return m.status, m.message
		}
	}

	// Echo's own errors: bind failures, unknown routes, body limit.
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code >= http.StatusInternalServerError {
			logUnhandled(log, c, err)
		}
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	logUnhandled(log, c, err)
	return http.StatusInternalServerError, "internal server error"
}

func logUnhandled(log zerolog.Logger, c echo.Context, err error) {
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")
}
