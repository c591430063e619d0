package observability

import (
	"context"
	"sync"

	"feedbackapp/internal/config"
	contextutils "feedbackapp/internal/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// InitMetrics initializes OpenTelemetry metrics
func InitMetrics(cfg *config.OpenTelemetryConfig) (result0 *metric.MeterProvider, err error) {
	ctx := context.Background()

	res, err := serviceResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var exporter metric.Exporter
	switch cfg.Protocol {
	case "grpc", "":
		opts := []otlpmetricgrpc.Option{
			otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
			otlpmetricgrpc.WithHeaders(cfg.Headers),
		}
		if cfg.Insecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		exp, err := otlpmetricgrpc.New(ctx, opts...)
		if err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to create otlp grpc metric exporter: %w", err)
		}
		exporter = exp
	case "http":
		opts := []otlpmetrichttp.Option{
			otlpmetrichttp.WithEndpoint(cfg.Endpoint),
			otlpmetrichttp.WithHeaders(cfg.Headers),
		}
		if cfg.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		exp, err := otlpmetrichttp.New(ctx, opts...)
		if err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to create otlp http metric exporter: %w", err)
		}
		exporter = exp
	default:
		return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "unsupported otel protocol: %s", cfg.Protocol)
	}

	mp := metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(exporter)),
		metric.WithResource(res),
	)
	return mp, nil
}

// FeedbackMetrics holds the domain counters for the feedback lifecycle.
type FeedbackMetrics struct {
	submissions       otelmetric.Int64Counter
	statusTransitions otelmetric.Int64Counter
}

// NewFeedbackMetrics registers the feedback counters on the given meter.
func NewFeedbackMetrics(meter otelmetric.Meter) (*FeedbackMetrics, error) {
	submissions, err := meter.Int64Counter("feedback.submissions",
		otelmetric.WithDescription("Number of feedback records submitted"),
		otelmetric.WithUnit("{feedback}"),
	)
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to create submissions counter: %w", err)
	}

	transitions, err := meter.Int64Counter("feedback.status_transitions",
		otelmetric.WithDescription("Number of feedback status writes"),
		otelmetric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to create status transitions counter: %w", err)
	}

	return &FeedbackMetrics{submissions: submissions, statusTransitions: transitions}, nil
}

var (
	defaultFeedbackMetrics     *FeedbackMetrics
	defaultFeedbackMetricsOnce sync.Once
)

// DefaultFeedbackMetrics returns counters bound to the global meter provider.
// Before SetupObservability installs a provider the global one is a no-op.
func DefaultFeedbackMetrics() *FeedbackMetrics {
	defaultFeedbackMetricsOnce.Do(func() {
		m, err := NewFeedbackMetrics(otel.Meter(instrumentationName))
		if err != nil {
			m = &FeedbackMetrics{}
		}
		defaultFeedbackMetrics = m
	})
	return defaultFeedbackMetrics
}

// RecordSubmission counts one stored feedback record.
func (m *FeedbackMetrics) RecordSubmission(ctx context.Context, feedbackType string) {
	if m == nil || m.submissions == nil {
		return
	}
	m.submissions.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("feedback.type", feedbackType)))
}

// RecordStatusTransition counts one status write, including self-transitions.
func (m *FeedbackMetrics) RecordStatusTransition(ctx context.Context, status string) {
	if m == nil || m.statusTransitions == nil {
		return
	}
	m.statusTransitions.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("feedback.status", status)))
}
