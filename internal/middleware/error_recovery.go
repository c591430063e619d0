package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"feedbackapp/internal/observability"
	contextutils "feedbackapp/internal/utils"

	"github.com/gin-gonic/gin"
)

// RecoveryMiddleware turns a handler panic into a fatal INTERNAL_SERVER_ERROR
// response in the standard error body. The stack is always logged and is only
// included in the response in gin debug mode.
func RecoveryMiddleware(logger *observability.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = observability.NewNopLogger()
	}

	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			stack := string(debug.Stack())

			panicErr, ok := rec.(error)
			if !ok {
				panicErr = fmt.Errorf("panic: %v", rec)
			}
			logger.Error(c.Request.Context(), "Panic recovered", panicErr, map[string]interface{}{
				"method": c.Request.Method,
				"path":   c.Request.URL.Path,
				"stack":  stack,
			})

			details := "A panic occurred while processing the request"
			if gin.Mode() == gin.DebugMode {
				details += "\nStack trace: " + stack
			}
			HandleAppError(c, contextutils.NewAppErrorWithCause(contextutils.ErrorCodeInternalError,
				contextutils.SeverityFatal, "Internal server error", details, panicErr))
			c.Abort()
		}()

		c.Next()
	}
}

// HandleAppError writes err as a structured error response. Errors that are not
// AppErrors become INTERNAL_SERVER_ERROR with the error text as details.
func HandleAppError(c *gin.Context, err error) {
	var appErr *contextutils.AppError
	if !contextutils.AsError(err, &appErr) {
		appErr = contextutils.NewAppError(contextutils.ErrorCodeInternalError, contextutils.SeverityError,
			"Internal server error", err.Error())
	}
	StandardizeAppError(c, appErr)
}

// StandardizeAppError attaches err to the gin context for span annotation and
// writes its JSON body with the mapped status.
func StandardizeAppError(c *gin.Context, err *contextutils.AppError) {
	_ = c.Error(err)
	c.JSON(HTTPStatusForCode(err.Code), err.ToJSON())
}

// HTTPStatusForCode maps AppError codes to HTTP status codes
func HTTPStatusForCode(code contextutils.ErrorCode) int {
	switch code {
	case contextutils.ErrorCodeInvalidInput, contextutils.ErrorCodeMissingRequired,
		contextutils.ErrorCodeInvalidFormat, contextutils.ErrorCodeValidationFailed:
		return http.StatusBadRequest
	case contextutils.ErrorCodeUnauthorized, contextutils.ErrorCodeSessionExpired,
		contextutils.ErrorCodeInvalidCredentials:
		return http.StatusUnauthorized
	case contextutils.ErrorCodeForbidden:
		return http.StatusForbidden
	case contextutils.ErrorCodeRecordNotFound:
		return http.StatusNotFound
	case contextutils.ErrorCodeRecordExists:
		return http.StatusConflict
	case contextutils.ErrorCodeServiceUnavailable, contextutils.ErrorCodeDatabaseConnection:
		return http.StatusServiceUnavailable
	case contextutils.ErrorCodeTimeout:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}
