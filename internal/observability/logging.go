// Package observability provides OpenTelemetry tracing, metrics, and structured logging
// with trace correlation for the feedback service.
package observability

import (
	"context"
	"os"

	"feedbackapp/internal/config"
	contextutils "feedbackapp/internal/utils"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap with context-aware helpers. Every entry logged with a
// context that carries a span gets trace_id and span_id fields.
type Logger struct {
	*zap.Logger
}

// NewLogger creates an info level logger
func NewLogger(cfg *config.OpenTelemetryConfig) *Logger {
	return NewLoggerWithLevel(cfg, zap.InfoLevel)
}

// NewLoggerWithLevel builds the stdout logger and, when cfg enables it, tees
// every entry to the OTLP log exporter.
func NewLoggerWithLevel(cfg *config.OpenTelemetryConfig, level zapcore.Level) *Logger {
	if cfg == nil {
		return NewNopLogger()
	}

	zapLogger, err := stdoutConfig(level).Build()
	if err != nil {
		zapLogger = zap.NewExample()
	}

	if cfg.EnableLogging && cfg.Endpoint != "" {
		otelCore, err := otlpCore(cfg)
		if err != nil {
			zapLogger.Error("OTLP logging disabled", zap.Error(err), zap.String("endpoint", cfg.Endpoint))
		} else {
			zapLogger = zap.New(zapcore.NewTee(zapLogger.Core(), otelCore))
		}
	}

	return &Logger{Logger: zapLogger}
}

// stdoutConfig is JSON with ISO8601 timestamps, or zap's console format when ENV=development.
func stdoutConfig(level zapcore.Level) zap.Config {
	var zc zap.Config
	if os.Getenv("ENV") == "development" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
		zc.EncoderConfig.TimeKey = "timestamp"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc
}

func otlpCore(cfg *config.OpenTelemetryConfig) (zapcore.Core, error) {
	ctx := context.Background()

	res, err := serviceResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	opts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(cfg.Endpoint), otlploggrpc.WithHeaders(cfg.Headers)}
	if cfg.Insecure {
		opts = append(opts, otlploggrpc.WithInsecure())
	}
	exporter, err := otlploggrpc.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	provider := log.NewLoggerProvider(
		log.WithProcessor(log.NewBatchProcessor(exporter)),
		log.WithResource(res),
	)
	return otelzap.NewCore(instrumentationName, otelzap.WithLoggerProvider(provider)), nil
}

// NewNopLogger returns a logger that discards everything. Used by tests and
// by commands that do not want log output on their terminal.
func NewNopLogger() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

func (l *Logger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.log(ctx, zap.DebugLevel, msg, mergeFields(fields...))
}

func (l *Logger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.log(ctx, zap.InfoLevel, msg, mergeFields(fields...))
}

func (l *Logger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.log(ctx, zap.WarnLevel, msg, mergeFields(fields...))
}

// Error logs msg with err's text under "error". AppErrors also contribute
// error_code and error_severity so failed submissions and status updates can
// be grouped by cause.
func (l *Logger) Error(ctx context.Context, msg string, err error, fields ...map[string]interface{}) {
	merged := mergeFields(fields...)
	if err != nil {
		merged["error"] = err.Error()
		var appErr *contextutils.AppError
		if contextutils.AsError(err, &appErr) {
			merged["error_code"] = string(appErr.Code)
			merged["error_severity"] = string(appErr.Severity)
		}
	}
	l.log(ctx, zap.ErrorLevel, msg, merged)
}

func (l *Logger) log(ctx context.Context, level zapcore.Level, msg string, fields map[string]interface{}) {
	if ce := l.Logger.Check(level, msg); ce != nil {
		ce.Write(zapFields(ctx, fields)...)
	}
}

func zapFields(ctx context.Context, fields map[string]interface{}) []zap.Field {
	out := make([]zap.Field, 0, len(fields)+2)
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		out = append(out,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	for k, v := range fields {
		out = append(out, zap.Any(k, v))
	}
	return out
}

// mergeFields flattens the variadic field maps into a fresh map; later maps win.
// The caller's maps are never modified.
func mergeFields(fields ...map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{})
	for _, fieldMap := range fields {
		for k, v := range fieldMap {
			merged[k] = v
		}
	}
	return merged
}

// Sync flushes any buffered log entries
func (l *Logger) Sync() error {
	return l.Logger.Sync()
}
