// Package tracing wires the OpenTelemetry SDK: a global tracer provider exporting
// spans over OTLP/gRPC, used by the HTTP middleware and the bun query hook.
package tracing

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/code19m/errx"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.23.1"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/rise-and-shine/tabletop/meta"
)

const flushTimeout = 5 * time.Second

// Shutdown flushes buffered spans and stops the exporter.
type Shutdown func() error

// InitGlobalTracer installs the global tracer provider and W3C propagators.
// A disabled config installs a no-op provider and a no-op Shutdown.
func InitGlobalTracer(cfg Config) (Shutdown, error) {
	if cfg.Disable {
		otel.SetTracerProvider(noop.NewTracerProvider())
		return func() error { return nil }, nil
	}

	exporter, err := otlptrace.New(context.Background(), otlptracegrpc.NewClient(
		otlptracegrpc.WithInsecure(),
		otlptracegrpc.WithEndpoint(net.JoinHostPort(cfg.ExporterHost, strconv.Itoa(cfg.ExporterPort))),
		otlptracegrpc.WithReconnectionPeriod(reconnectionPeriod),
	))
	if err != nil {
		return nil, errx.Wrap(err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRate))),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(Resource(cfg.Tags)),
	)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	otel.SetTracerProvider(tp)

	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		defer cancel()

		if err := tp.ForceFlush(ctx); err != nil {
			return errx.Wrap(err)
		}
		return errx.Wrap(tp.Shutdown(ctx))
	}, nil
}

// Resource describes this service: configured tags plus the name and version
// recorded with meta.SetServiceInfo.
func Resource(tags map[string]string) *resource.Resource {
	info := meta.Service()
	attrs := lo.MapToSlice(tags, func(k, v string) attribute.KeyValue {
		return attribute.String(k, v)
	})
	attrs = append(attrs,
		semconv.ServiceNameKey.String(info.Name),
		semconv.ServiceVersionKey.String(info.Version),
	)
	return resource.NewWithAttributes(semconv.SchemaURL, attrs...)
}
