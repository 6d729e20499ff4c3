// internal/common/observability/metrics.go
package observability

import (
	"context"
	"time"

	"job-portal/internal/common/config"
	"job-portal/internal/common/logger"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer

	screeningCounter  otelmetric.Int64Counter
	screeningDuration otelmetric.Float64Histogram
}

// New wires the OTel meter onto reg and, when enabled, a Jaeger tracer.
// Failures degrade to no-op instruments and are logged.
func New(serviceName string, tracing config.TracingConfig, reg promclient.Registerer, log logger.Logger) *Observability {
	o := &Observability{tracer: otel.Tracer(serviceName)}

	if tracing.Enabled {
		tp, err := newTracerProvider(serviceName, tracing)
		if err != nil {
			log.Warn("Tracing disabled", map[string]interface{}{"error": err})
		} else {
			otel.SetTracerProvider(tp)
			o.tracerProvider = tp
			o.tracer = tp.Tracer(serviceName)
		}
	}

	exporter, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		log.Warn("Failed to create Prometheus exporter", map[string]interface{}{"error": err})
		return o
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)
	o.meterProvider = provider

	meter := provider.Meter(serviceName)

	o.screeningCounter, _ = meter.Int64Counter(
		"screenings_processed",
		otelmetric.WithDescription("Number of screenings that reached a decision"),
	)

	o.screeningDuration, _ = meter.Float64Histogram(
		"screenings_duration",
		otelmetric.WithDescription("Screening run duration"),
		otelmetric.WithUnit("ms"),
	)

	return o
}

// StartSpan opens a span on the configured tracer. The caller ends it.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return o.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (o *Observability) RecordScreening(ctx context.Context, status string, duration time.Duration) {
	attrs := otelmetric.WithAttributes(attribute.String("status", status))
	if o.screeningCounter != nil {
		o.screeningCounter.Add(ctx, 1, attrs)
	}
	if o.screeningDuration != nil {
		o.screeningDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
	if o.tracerProvider != nil {
		_ = o.tracerProvider.Shutdown(ctx)
	}
}
