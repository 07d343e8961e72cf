package api

import (
	"errors"
	"net/http"

	"ironhouse/gym-api/internal/logging"
	"ironhouse/gym-api/internal/service"

	"github.com/gin-gonic/gin"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func respondOK(c *gin.Context, code int, data any, message string) {
	c.JSON(code, Envelope{Success: true, Data: data, Message: message})
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, Envelope{Success: false, Message: message})
}

var (
	badRequestErrors = []error{
		service.ErrInvalidInput,
		service.ErrBookingDetailsRequired,
		service.ErrRecurringDetailsRequired,
		service.ErrDuplicateBooking,
		service.ErrCancellationWindow,
		service.ErrBookingAlreadyCancelled,
		service.ErrWaitlistEntryInactive,
		service.ErrRecurringAlreadyCancelled,
	}
	notFoundErrors = []error{
		service.ErrClassNotFound,
		service.ErrMemberProfileNotFound,
		service.ErrUserNotFound,
		service.ErrBookingNotFound,
		service.ErrWaitlistEntryNotFound,
		service.ErrRecurringBookingNotFound,
	}
)

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// abortWithServiceError maps a service error to its HTTP status. Unexpected
// errors are logged and hidden behind a generic message.
func abortWithServiceError(c *gin.Context, err error) {
	switch {
	case isAny(err, badRequestErrors):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case isAny(err, notFoundErrors):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotAuthorized):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrAuthenticationFailed):
		abortWithError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrUserAlreadyExists):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrImageStorageDisabled):
		abortWithError(c, http.StatusServiceUnavailable, err.Error())
	default:
		ctx := c.Request.Context()
		logging.FromContext(ctx).ErrorContext(ctx, "Request failed", "path", c.FullPath(), "error", err)
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
