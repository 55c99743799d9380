// Package otel wires OpenTelemetry tracing for tableroll commands.
package otel

import (
	"context"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	// EndpointVar is the OTLP/HTTP collector URL. Empty disables tracing.
	EndpointVar = "TABLEROLL_OTEL_ENDPOINT"
	// EnabledVar set to "false" disables tracing even with an endpoint.
	EnabledVar = "TABLEROLL_OTEL_ENABLED"
	// SampleRatioVar, when set to "ratio", samples a fraction of new traces
	// given by TABLEROLL_OTEL_RATIO. Anything else samples every trace.
	SampleRatioVar = "TABLEROLL_OTEL_SAMPLER"
)

// Setup initialises OpenTelemetry tracing for the given service.
//
// Tracing is opt-in: when TABLEROLL_OTEL_ENDPOINT is empty or
// TABLEROLL_OTEL_ENABLED is "false", Setup returns a no-op shutdown function
// and no global provider is registered.
func Setup(ctx context.Context, serviceName string) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }

	if strings.EqualFold(os.Getenv(EnabledVar), "false") {
		return noop, nil
	}
	endpoint := strings.TrimSpace(os.Getenv(EndpointVar))
	if endpoint == "" {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
	if err != nil {
		return noop, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceNamespace("tableroll"),
		),
	)
	if err != nil {
		return noop, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler()),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return tp.Shutdown, nil
}

func sampler() sdktrace.Sampler {
	if !strings.EqualFold(os.Getenv(SampleRatioVar), "ratio") {
		return sdktrace.AlwaysSample()
	}
	ratio := 1.0
	if raw := strings.TrimSpace(os.Getenv("TABLEROLL_OTEL_RATIO")); raw != "" {
		if parsed, err := parseRatio(raw); err == nil {
			ratio = parsed
		}
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}
