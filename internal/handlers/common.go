package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qcbd/app-beneficiary/internal/logging"
	"github.com/qcbd/app-beneficiary/internal/models"
	"github.com/qcbd/app-beneficiary/internal/validation"
	"github.com/qcbd/app-beneficiary/internal/workflow"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// ValidationErrorResponse is returned with 422 when a save or submit fails
// validation. Locator names the first failing tab and field.
type ValidationErrorResponse struct {
	Error   string                  `json:"error"`
	Errors  []validation.FieldError `json:"errors"`
	Locator validation.Locator      `json:"locator"`
	Tabs    []validation.TabState   `json:"tabs"`
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrApplicationNotFound),
		errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrDocumentNotFound),
		errors.Is(err, models.ErrMediaNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidID),
		errors.Is(err, models.ErrValidationFailed),
		errors.Is(err, models.ErrInvalidRole),
		errors.Is(err, models.ErrInvalidExportField),
		errors.Is(err, models.ErrInvalidDocumentType),
		errors.Is(err, models.ErrEmptyFile):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrUsernameExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as JSON. Validation failures carry the field
// errors and tab states; unexpected errors are logged and hidden.
func respondError(c *gin.Context, logger *logging.SafeLogger, err error, operation string) {
	if verr, ok := workflow.AsValidationError(err); ok {
		c.JSON(http.StatusUnprocessableEntity, ValidationErrorResponse{
			Error:   models.ErrValidationFailed.Error(),
			Errors:  verr.Result.Errors,
			Locator: verr.Locator,
			Tabs:    verr.Result.Tabs(),
		})
		return
	}

	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error(operation+" failed", zap.Error(err), zap.String("path", c.FullPath()))
		_ = c.Error(err)
		c.JSON(status, ErrorResponse{Error: "Internal server error"})
		return
	}
	c.JSON(status, ErrorResponse{Error: err.Error()})
}
