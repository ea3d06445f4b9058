package telemetry

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"

	"github.com/blaisecz/sleep-coach/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Shutdown flushes and stops the tracer provider.
type Shutdown func(context.Context) error

func noop(context.Context) error { return nil }

// InitTracer installs the global OpenTelemetry tracer provider.
//
// With OTEL_TRACES_EXPORTER=stdout spans are written to stdout. Otherwise
// spans go to Langfuse's OTLP endpoint when Langfuse is configured, and the
// default no-op provider stays in place when it is not.
func InitTracer(ctx context.Context, cfg *config.Config, serviceName string) (Shutdown, error) {
	return initTracer(ctx, cfg, serviceName, os.Stdout)
}

func initTracer(ctx context.Context, cfg *config.Config, serviceName string, stdout io.Writer) (Shutdown, error) {
	var (
		exporter sdktrace.SpanExporter
		err      error
	)

	switch cfg.OtelTracesExporter {
	case config.ExporterNone:
		return noop, nil
	case config.ExporterStdout:
		exporter, err = stdouttrace.New(stdouttrace.WithWriter(stdout))
	default:
		if cfg.LangfuseBaseURL == "" || cfg.LangfusePublicKey == "" || cfg.LangfuseSecretKey == "" {
			// Langfuse not configured; keep default noop tracer provider.
			return noop, nil
		}
		exporter, err = langfuseExporter(ctx, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}

	res, err := resource.New(
		ctx,
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("langfuse.environment", cfg.LangfuseEnv),
			attribute.String("deployment.environment", cfg.AppEnv),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp.Shutdown, nil
}

func langfuseExporter(ctx context.Context, cfg *config.Config) (sdktrace.SpanExporter, error) {
	// Basic auth header from Langfuse public/secret keys.
	creds := cfg.LangfusePublicKey + ":" + cfg.LangfuseSecretKey
	auth := base64.StdEncoding.EncodeToString([]byte(creds))

	return otlptracehttp.New(
		ctx,
		otlptracehttp.WithEndpointURL(cfg.LangfuseBaseURL+"/api/public/otel/v1/traces"),
		otlptracehttp.WithHeaders(map[string]string{
			"Authorization": "Basic " + auth,
		}),
	)
}

// TraceID returns the hex trace id of the span in ctx, or "" when the
// context carries no sampled span.
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
