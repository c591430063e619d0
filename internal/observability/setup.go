package observability

import (
	"context"
	"os"

	"feedbackapp/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap/zapcore"
)

// SetupObservability is SetupObservabilityWithLevel at info level.
func SetupObservability(cfg *config.OpenTelemetryConfig, serviceName string) (result0 trace.TracerProvider, result1 *metric.MeterProvider, result2 *Logger, err error) {
	return SetupObservabilityWithLevel(cfg, serviceName, "info")
}

// SetupObservabilityWithLevel builds the logger and, as cfg enables them, the
// tracer and meter providers, installing each as the otel global. serviceName
// overrides cfg.ServiceName when set. An unparsable logLevel falls back to info.
// The returned providers are nil for disabled signals.
func SetupObservabilityWithLevel(cfg *config.OpenTelemetryConfig, serviceName, logLevel string) (result0 trace.TracerProvider, result1 *metric.MeterProvider, result2 *Logger, err error) {
	if serviceName != "" {
		cfg.ServiceName = serviceName
	}
	for key, value := range map[string]string{
		"OTEL_SERVICE_NAME":    cfg.ServiceName,
		"OTEL_SERVICE_VERSION": cfg.ServiceVersion,
	} {
		if err := os.Setenv(key, value); err != nil {
			return nil, nil, nil, err
		}
	}

	level, parseErr := zapcore.ParseLevel(logLevel)
	if parseErr != nil {
		level = zapcore.InfoLevel
	}
	logger := NewLoggerWithLevel(cfg, level)

	var tp trace.TracerProvider
	if cfg.EnableTracing {
		var sdk string
		tp, sdk, err = newTracerProvider(cfg)
		if err != nil {
			return nil, nil, nil, err
		}
		otel.SetTracerProvider(tp)
		InitTracing(cfg)
		InitGlobalTracer()
		logger.Info(context.Background(), "Tracing enabled", map[string]interface{}{
			"service_name": cfg.ServiceName,
			"sdk":          sdk,
			"sampling":     cfg.SamplingRate,
		})
	}

	var mp *metric.MeterProvider
	if cfg.EnableMetrics {
		mp, err = InitMetrics(cfg)
		if err != nil {
			return nil, nil, nil, err
		}
		otel.SetMeterProvider(mp)
	}

	return tp, mp, logger, nil
}
