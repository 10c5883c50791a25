// Package telemetry wires OpenTelemetry trace and metric providers.
// Exporting is opt-in: with no exporter configured, Init is a no-op and
// the global providers stay inert.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.40.0"

	"gitlab.com/hmwai/subtrack/internal/config"
	"gitlab.com/hmwai/subtrack/internal/logger"
)

const serviceName = "subtrack"

// Metrics are the application counters, registered once at startup.
type Metrics struct {
	ChargesCreated  metric.Int64Counter
	ChargesImported metric.Int64Counter
	ExtractionCalls metric.Int64Counter
	AdviceCalls     metric.Int64Counter
}

// Shutdown flushes and stops the configured providers.
type Shutdown func(ctx context.Context) error

// Init configures the global trace and metric providers from cfg and
// returns the application metrics plus a shutdown hook. When no exporter
// is configured both providers are left untouched and the counters are
// no-op instruments.
func Init(ctx context.Context, cfg *config.Config) (*Metrics, Shutdown, error) {
	if cfg.OTELExporter == "" {
		m, err := newMetrics(otel.Meter(serviceName))
		return m, func(context.Context) error { return nil }, err
	}

	// The semconv version must match the schema URL of resource.Default(),
	// or Merge rejects the pair as conflicting.
	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
	))
	if err != nil {
		return nil, nil, fmt.Errorf("building resource: %w", err)
	}

	traceExp, err := newTraceExporter(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("creating trace exporter: %w", err)
	}
	metricExp, err := newMetricExporter(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExp),
		sdktrace.WithResource(res),
	)
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExp,
			sdkmetric.WithInterval(30*time.Second))),
		sdkmetric.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)

	logger.Log.Info().
		Str("exporter", cfg.OTELExporter).
		Str("endpoint", cfg.OTELEndpoint).
		Msg("telemetry enabled")

	m, err := newMetrics(mp.Meter(serviceName))
	if err != nil {
		return nil, nil, err
	}

	shutdown := func(ctx context.Context) error {
		if err := tp.Shutdown(ctx); err != nil {
			return err
		}
		return mp.Shutdown(ctx)
	}
	return m, shutdown, nil
}

func newTraceExporter(ctx context.Context, cfg *config.Config) (sdktrace.SpanExporter, error) {
	if cfg.OTELExporter == "stdout" {
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
	if cfg.OTELProtocol == "grpc" {
		opts := []otlptracegrpc.Option{otlptracegrpc.WithInsecure()}
		if cfg.OTELEndpoint != "" {
			opts = append(opts, otlptracegrpc.WithEndpoint(cfg.OTELEndpoint))
		}
		return otlptracegrpc.New(ctx, opts...)
	}
	opts := []otlptracehttp.Option{otlptracehttp.WithInsecure()}
	if cfg.OTELEndpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(cfg.OTELEndpoint))
	}
	return otlptracehttp.New(ctx, opts...)
}

func newMetricExporter(ctx context.Context, cfg *config.Config) (sdkmetric.Exporter, error) {
	if cfg.OTELExporter == "stdout" {
		return stdoutmetric.New()
	}
	if cfg.OTELProtocol == "grpc" {
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if cfg.OTELEndpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(cfg.OTELEndpoint))
		}
		return otlpmetricgrpc.New(ctx, opts...)
	}
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithInsecure()}
	if cfg.OTELEndpoint != "" {
		opts = append(opts, otlpmetrichttp.WithEndpoint(cfg.OTELEndpoint))
	}
	return otlpmetrichttp.New(ctx, opts...)
}

func newMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.ChargesCreated, err = meter.Int64Counter("subtrack.charges.created",
		metric.WithDescription("Charges created through the API")); err != nil {
		return nil, err
	}
	if m.ChargesImported, err = meter.Int64Counter("subtrack.charges.imported",
		metric.WithDescription("Charges replaced via snapshot import")); err != nil {
		return nil, err
	}
	if m.ExtractionCalls, err = meter.Int64Counter("subtrack.ai.extractions",
		metric.WithDescription("AI charge extraction attempts")); err != nil {
		return nil, err
	}
	if m.AdviceCalls, err = meter.Int64Counter("subtrack.ai.advice_calls",
		metric.WithDescription("AI savings advice requests")); err != nil {
		return nil, err
	}
	return m, nil
}
