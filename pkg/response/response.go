package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the unified API envelope for non-generation endpoints and for
// every rejection. Error carries the machine-readable error kind.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// AppError represents a structured application error with HTTP status and error code.
type AppError struct {
	HTTPStatus int         // HTTP status code (e.g. 400, 404, 500)
	Code       int         // Application-level error code
	Kind       string      // Stable error identifier, e.g. "rate_limited"
	Message    string      // Human-readable error message
	Details    interface{} // Optional structured context for the client
}

func (e *AppError) Error() string {
	return e.Message
}

// WithDetails returns a copy of the error carrying extra client-facing context.
func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

func newAppError(status int, kind, msg string) *AppError {
	return &AppError{HTTPStatus: status, Code: status, Kind: kind, Message: msg}
}

func NewBadRequest(msg string) *AppError {
	return newAppError(http.StatusBadRequest, "bad_request", msg)
}

func NewUnauthorized(msg string) *AppError {
	return newAppError(http.StatusUnauthorized, "unauthorized", msg)
}

func NewForbidden(kind, msg string) *AppError {
	if kind == "" {
		kind = "forbidden"
	}
	return newAppError(http.StatusForbidden, kind, msg)
}

func NewNotFound(msg string) *AppError {
	return newAppError(http.StatusNotFound, "not_found", msg)
}

func NewTooManyRequests(kind, msg string) *AppError {
	if kind == "" {
		kind = "rate_limited"
	}
	return newAppError(http.StatusTooManyRequests, kind, msg)
}

func NewServerError(msg string) *AppError {
	return newAppError(http.StatusInternalServerError, "internal_error", msg)
}

// --- Gin response helpers ---

// Success sends a 200 OK response with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "ok",
		Data:    data,
	})
}

// Error sends an error response. If err is an *AppError, its status, kind and
// details are used; otherwise a generic 500 internal server error is returned.
func Error(c *gin.Context, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, Response{
			Code:    appErr.Code,
			Message: appErr.Message,
			Error:   appErr.Kind,
			Details: appErr.Details,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, Response{
		Code:    500,
		Message: err.Error(),
		Error:   "internal_error",
	})
}

func BadRequest(c *gin.Context, msg string) {
	Error(c, NewBadRequest(msg))
}

func Unauthorized(c *gin.Context, msg string) {
	Error(c, NewUnauthorized(msg))
}

func NotFound(c *gin.Context, msg string) {
	Error(c, NewNotFound(msg))
}

func ServerError(c *gin.Context, msg string) {
	Error(c, NewServerError(msg))
}
