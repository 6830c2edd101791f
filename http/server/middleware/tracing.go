package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.23.1"
	"go.opentelemetry.io/otel/trace"

	"github.com/rise-and-shine/tabletop/http/server"
	"github.com/rise-and-shine/tabletop/meta"
	"github.com/rise-and-shine/tabletop/observability/tracing"
)

const traceIDHeader = "X-Trace-ID"

// NewTracingMW creates a middleware that provides OpenTelemetry tracing for HTTP requests.
//
// It starts a server span for each request, stores the trace id in the request
// context and the X-Trace-ID response header, names the span after the matched
// route and records errors returned by the chain.
func NewTracingMW() server.Middleware {
	return server.Middleware{
		Priority: 900,
		Handler: func(c *fiber.Ctx) error {
			ctx, span := otel.Tracer("http-server").Start(
				c.UserContext(),
				fmt.Sprintf("%s %s", c.Method(), "/"),
				trace.WithSpanKind(trace.SpanKindServer),
			)
			defer span.End()

			traceID := tracing.GetStartingTraceID(ctx)
			c.Set(traceIDHeader, traceID)
			c.SetUserContext(meta.InjectMetaToContext(ctx, map[meta.ContextKey]string{
				meta.TraceID: traceID,
			}))

			err := c.Next()

			routerPattern := c.Route().Path
			if routerPattern != "" && routerPattern != "/" {
				span.SetName(fmt.Sprintf("%s %s", c.Method(), routerPattern))
			}

			span.SetAttributes(
				semconv.HTTPMethodKey.String(c.Method()),
				semconv.HTTPRouteKey.String(routerPattern),
				semconv.HTTPURLKey.String(c.OriginalURL()),
				semconv.HTTPStatusCodeKey.Int(c.Response().StatusCode()),
			)

			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}

			return err
		},
	}
}
