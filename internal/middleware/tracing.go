package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingMiddleware creates an OpenTelemetry span for every request and
// exposes the trace ID to handlers and response headers.
func TracingMiddleware() fiber.Handler {
	tracer := otel.Tracer("pawgram/http")

	return func(c *fiber.Ctx) error {
		spanName := fmt.Sprintf("%s %s", c.Method(), c.Route().Path)
		ctx, span := tracer.Start(c.UserContext(), spanName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Method()),
				attribute.String("http.route", c.Route().Path),
				attribute.String("http.target", c.OriginalURL()),
				attribute.String("http.client_ip", c.IP()),
			),
		)
		defer span.End()

		traceID := span.SpanContext().TraceID().String()
		c.Locals("traceID", traceID)
		c.Set("X-Trace-ID", traceID)
		c.SetUserContext(ctx)

		err := c.Next()

		status := c.Response().StatusCode()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if err != nil || status >= 500 {
			span.SetStatus(codes.Error, fmt.Sprintf("status %d", status))
			if err != nil {
				span.RecordError(err)
			}
		}

		return err
	}
}
