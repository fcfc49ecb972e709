package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nhle/taskly/internal/engine"
)

var (
	errInvalidRequestBody = errors.New("invalid request body")
	errMissingCompleted   = errors.New("is_completed must be a boolean")
	errMissingMembers     = errors.New("members must be an array")
)

type apiError struct {
	Code    int    `json:"-"`
	Message string `json:"message"`
	Detail  string `json:"error,omitempty"`
}

func newAPIError(code int, message, detail string) apiError {
	return apiError{
		Code:    code,
		Message: message,
		Detail:  detail,
	}
}

func (e apiError) Error() string {
	return e.Message
}

func abort(c *gin.Context, err apiError) {
	c.AbortWithStatusJSON(err.Code, err)
}

func newBadRequestError(message string, cause error) apiError {
	detail := ""
	if cause != nil {
		detail = cause.Error()
	}
	return newAPIError(http.StatusBadRequest, message, detail)
}

// fromEngineError maps the engine's error taxonomy onto HTTP statuses.
func fromEngineError(message string, err error) apiError {
	switch {
	case errors.Is(err, engine.ErrValidation):
		return newAPIError(http.StatusBadRequest, message, err.Error())
	case errors.Is(err, engine.ErrNotFound):
		return newAPIError(http.StatusNotFound, message, err.Error())
	default:
		return newAPIError(http.StatusInternalServerError, message, err.Error())
	}
}
