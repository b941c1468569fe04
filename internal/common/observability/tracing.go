package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

type tracing struct {
	provider *sdktrace.TracerProvider
}

func newTracing(serviceName, endpoint string) (*tracing, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("no jaeger endpoint configured")
	}

	exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(endpoint)))
	if err != nil {
		return nil, fmt.Errorf("create jaeger exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", serviceName),
		)),
	)
	otel.SetTracerProvider(tp)
	return &tracing{provider: tp}, nil
}

func (t *tracing) shutdown(ctx context.Context) error {
	return t.provider.Shutdown(ctx)
}

// Tracer returns a named tracer from the global provider. Without a configured endpoint the
// global provider is a no-op.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}
