package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sandeepkv93/bossmode/internal/calendar"
	"github.com/sandeepkv93/bossmode/internal/model"
	"github.com/sandeepkv93/bossmode/internal/optimistic"
	"github.com/sandeepkv93/bossmode/internal/reminder"
	"github.com/sandeepkv93/bossmode/internal/scheduler"
	"github.com/sandeepkv93/bossmode/internal/service"
)

const (
	CodeInvalidInput       = "invalid_input"
	CodeNotFound           = "not_found"
	CodeNoActiveAlert      = "no_active_alert"
	CodeDuplicate          = "duplicate"
	CodePersistenceFailure = "persistence_failure"
	CodeUnavailable        = "unavailable"
	CodeInternal           = "internal"
)

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// statusFor maps a planner error to its HTTP status and envelope code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrTaskNotFound), errors.Is(err, service.ErrCategoryNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, reminder.ErrNoActiveAlert):
		return http.StatusNotFound, CodeNoActiveAlert
	case errors.Is(err, service.ErrDuplicateCategory):
		return http.StatusConflict, CodeDuplicate
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, calendar.ErrInvalidDate),
		errors.Is(err, model.ErrInvalidPriority),
		errors.Is(err, model.ErrInvalidRecurrence),
		errors.Is(err, model.ErrInvalidReminder),
		errors.Is(err, model.ErrInvalidSnooze):
		return http.StatusBadRequest, CodeInvalidInput
	case errors.Is(err, optimistic.ErrPersistenceFailure):
		return http.StatusBadGateway, CodePersistenceFailure
	case errors.Is(err, scheduler.ErrStopped):
		return http.StatusServiceUnavailable, CodeUnavailable
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

func writeError(c *gin.Context, err error) {
	status, code := statusFor(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, ErrorResponse{Error: ErrorBody{Code: code, Message: err.Error()}})
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: ErrorBody{Code: CodeInvalidInput, Message: message}})
}
