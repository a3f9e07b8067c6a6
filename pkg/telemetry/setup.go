package telemetry

import (
	"context"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"github.com/vyvo/netblank/pkg/neterr"
)

// InitTracer installs a global tracer provider exporting spans to w. The
// resource merges serviceName with OTEL_RESOURCE_ATTRIBUTES, detected under
// ctx. When the exporter cannot be built tracing stays disabled and a no-op
// shutdown is returned.
func InitTracer(ctx context.Context, serviceName string, w io.Writer, logger neterr.Logger) func(context.Context) error {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		if logger != nil {
			logger.Error("telemetry exporter init failed", "error", err)
		}
		return func(context.Context) error { return nil }
	}

	res, err := resource.New(ctx,
		resource.WithSchemaURL(semconv.SchemaURL),
		resource.WithFromEnv(),
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		if logger != nil {
			logger.Error("telemetry resource detection failed", "error", err)
		}
		res = resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceName(serviceName))
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(provider)

	return provider.Shutdown
}
