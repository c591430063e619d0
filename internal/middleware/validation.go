package middleware

import (
	"bytes"
	"io"
	"net/http"
	"sync"

	"feedbackapp/internal/observability"
	contextutils "feedbackapp/internal/utils"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

var (
	defaultSchemaLoader     *SchemaLoader
	defaultSchemaLoaderErr  error
	defaultSchemaLoaderOnce sync.Once
)

// DefaultSchemaLoader returns the process-wide loader with the embedded schemas compiled.
func DefaultSchemaLoader() (*SchemaLoader, error) {
	defaultSchemaLoaderOnce.Do(func() {
		loader := NewSchemaLoader()
		if err := loader.LoadEmbeddedSchemas(); err != nil {
			defaultSchemaLoaderErr = err
			return
		}
		defaultSchemaLoader = loader
	})
	return defaultSchemaLoader, defaultSchemaLoaderErr
}

// RequestValidationMiddleware validates POST, PUT and PATCH bodies against the schema
// registered for the matched route. Routes without a schema pass through untouched.
// The body is restored so handlers can bind it.
func RequestValidationMiddleware(logger *observability.Logger, loader *SchemaLoader) gin.HandlerFunc {
	if loader == nil {
		panic("RequestValidationMiddleware: loader is nil")
	}

	return func(c *gin.Context) {
		method := c.Request.Method
		if method != http.MethodPost && method != http.MethodPut && method != http.MethodPatch {
			c.Next()
			return
		}

		schemaName := loader.DetermineRequestSchema(method, c.FullPath())
		if schemaName == "" {
			c.Next()
			return
		}

		ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "request_validation",
			attribute.String("http.route", c.FullPath()),
			attribute.String("validation.schema", schemaName),
		)
		defer span.End()

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			HandleAppError(c, contextutils.NewAppErrorWithCause(contextutils.ErrorCodeInvalidInput, contextutils.SeverityWarn,
				"Failed to read request body", err.Error(), err))
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		if len(bytes.TrimSpace(body)) == 0 {
			body = []byte("{}")
		}

		if err := loader.ValidateJSON(body, schemaName); err != nil {
			span.SetAttributes(attribute.Bool("validation.passed", false))
			logger.Warn(ctx, "Request validation failed", map[string]interface{}{
				"method":      method,
				"path":        c.Request.URL.Path,
				"schema_name": schemaName,
				"error":       err.Error(),
			})
			HandleAppError(c, err)
			c.Abort()
			return
		}

		span.SetAttributes(attribute.Bool("validation.passed", true))
		c.Next()
	}
}
