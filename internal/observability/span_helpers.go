package observability

import (
	contextutils "feedbackapp/internal/utils"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// FinishSpan ends a span and records any error pointed to by errPtr.
// Use with a named error return: `defer observability.FinishSpan(span, &err)`
//
// Errors caused by the caller (validation, credentials, role, unknown ids) are
// recorded as events with their code but leave the span status unset, so only
// service faults show up as failed spans.
func FinishSpan(span trace.Span, errPtr *error) {
	if span == nil {
		return
	}
	defer span.End()

	if errPtr == nil || *errPtr == nil {
		return
	}
	err := *errPtr

	span.SetAttributes(
		attribute.String("error.code", string(contextutils.GetErrorCode(err))),
		attribute.String("error.severity", string(contextutils.GetErrorSeverity(err))),
	)
	if contextutils.IsCallerFault(err) {
		span.AddEvent("request rejected", trace.WithAttributes(attribute.String("error.message", err.Error())))
		return
	}
	span.RecordError(err, trace.WithStackTrace(true))
	span.SetStatus(codes.Error, err.Error())
}
