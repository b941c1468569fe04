package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

type Observability struct {
	meterProvider  *metric.MeterProvider
	tracing        *tracing
	meter          otelmetric.Meter
	deliveryCount  otelmetric.Int64Counter
	dispatchFanout otelmetric.Int64Histogram
}

// New wires the OTel meter to the prometheus registry and, when jaegerEndpoint is set,
// installs a batching tracer provider as the global one.
func New(serviceName, jaegerEndpoint string, log *zap.Logger) *Observability {
	o := &Observability{}

	if tp, err := newTracing(serviceName, jaegerEndpoint); err != nil {
		log.Warn("tracing disabled", zap.Error(err))
	} else {
		o.tracing = tp
	}

	exporter, err := prometheus.New()
	if err != nil {
		log.Warn("failed to create prometheus exporter", zap.Error(err))
		return o
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	o.meterProvider = provider
	o.meter = provider.Meter(serviceName)

	o.deliveryCount, _ = o.meter.Int64Counter(
		"notifications.attempts",
		otelmetric.WithDescription("Notification delivery attempts"),
	)
	o.dispatchFanout, _ = o.meter.Int64Histogram(
		"dispatch.recipients",
		otelmetric.WithDescription("Recipients per fan-out dispatch"),
	)

	return o
}

// RecordDelivery counts one delivery attempt.
func (o *Observability) RecordDelivery(ctx context.Context, channel, status string) {
	if o != nil && o.deliveryCount != nil {
		o.deliveryCount.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("channel", channel),
			attribute.String("status", status),
		))
	}
}

// RecordFanout records the recipient count of one dispatch.
func (o *Observability) RecordFanout(ctx context.Context, kind string, recipients int) {
	if o != nil && o.dispatchFanout != nil {
		o.dispatchFanout.Record(ctx, int64(recipients), otelmetric.WithAttributes(
			attribute.String("kind", kind),
		))
	}
}

func (o *Observability) Shutdown() {
	if o == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
	if o.tracing != nil {
		_ = o.tracing.shutdown(ctx)
	}
}
