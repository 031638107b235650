package httputil

import (
	"context"
	"errors"
	"net/http"

	"github.com/redmonkez12/daily-diet-api/internal/logging"
	"github.com/redmonkez12/daily-diet-api/internal/validation"
)

// RespondFailure writes the response for errors shared by every resource:
// validation failures (400), timeouts (503) and everything else (500).
// Domain not-found errors must be handled by the caller first.
// Internal details are logged, never sent to the client.
func RespondFailure(w http.ResponseWriter, logger *logging.Logger, err error, action string) {
	var verr *validation.Error

	switch {
	case errors.Is(err, validation.ErrInvalidID):
		logger.Warn(action+" failed: invalid id", "error", err.Error())
		RespondErrorWithCode(w, "invalid id, expected a UUID", CodeInvalidID, http.StatusBadRequest)

	case errors.As(err, &verr):
		logger.Warn(action+" failed: validation error", "error", err.Error())
		RespondValidationError(w, "validation failed", verr.Fields)

	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		logger.Warn(action+" failed: request timed out", "error", err.Error())
		RespondErrorWithCode(w, "request timed out, please retry", CodeTimeout, http.StatusServiceUnavailable)

	default:
		logger.Error(action+" failed: internal error", "error", err.Error())
		RespondErrorWithCode(w, "internal server error", CodeInternalError, http.StatusInternalServerError)
	}
}

// RespondInvalidBody writes the 400 used when the body is not valid JSON
func RespondInvalidBody(w http.ResponseWriter, logger *logging.Logger, err error) {
	logger.Warn("invalid request body", "error", err.Error())
	RespondErrorWithCode(w, "invalid request body", CodeInvalidRequestBody, http.StatusBadRequest)
}
