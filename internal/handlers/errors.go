package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/novocode/novocode-api/internal/models"
	"github.com/novocode/novocode-api/internal/services"
	apperrors "github.com/novocode/novocode-api/pkg/errors"
)

// attachError attaches err to the gin context so the observability middleware
// can include the reason in the request log. c.Error() returns *gin.Error (not
// the error interface), so we suppress errcheck here intentionally.
func attachError(c *gin.Context, err error) {
	if err != nil {
		_ = c.Error(err) //nolint:errcheck
	}
}

// respondError sends an error JSON response and attaches the error to the gin context
// so the observability middleware can include the reason in the request log.
func respondError(c *gin.Context, status int, message string, err error) {
	attachError(c, err)
	c.JSON(status, gin.H{"error": message})
}

// respondErrorWithDetails sends an error response with an additional details field.
func respondErrorWithDetails(c *gin.Context, status int, message string, details any, err error) {
	attachError(c, err)
	c.JSON(status, gin.H{"error": message, "details": details})
}

// respondValidationError reports a request that failed binding.
func respondValidationError(c *gin.Context, err error) {
	respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
}

// Client-facing messages for precondition violations. Anything else under
// ErrInvalidInput is reported generically.
var preconditionMessages = []struct {
	err     error
	message string
}{
	{models.ErrTestimonialAlreadySubmitted, "Testimonial already submitted"},
	{models.ErrOnlyApprovedCanBePublished, "Only approved testimonials may be published"},
	{models.ErrInvalidTransition, "Action not allowed in the current state"},
	{services.ErrCaptchaFailed, "Captcha verification failed"},
}

// respondServiceError maps service errors to HTTP status codes. Internal
// error text never reaches the client.
func respondServiceError(c *gin.Context, err error, notFoundMessage string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		respondError(c, http.StatusNotFound, notFoundMessage, err)
	case errors.Is(err, apperrors.ErrUnauthorized):
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
	case errors.Is(err, apperrors.ErrAccessDenied):
		respondError(c, http.StatusForbidden, "Access denied", err)
	case errors.Is(err, apperrors.ErrConflict):
		respondError(c, http.StatusConflict, "The record was changed by someone else, reload and try again", err)
	case errors.Is(err, apperrors.ErrInvalidInput):
		respondError(c, http.StatusBadRequest, preconditionMessage(err), err)
	case errors.Is(err, apperrors.ErrUnavailable):
		respondError(c, http.StatusServiceUnavailable, "Service temporarily unavailable", err)
	default:
		respondError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}

func preconditionMessage(err error) string {
	for _, p := range preconditionMessages {
		if errors.Is(err, p.err) {
			return p.message
		}
	}
	return "Invalid request"
}
