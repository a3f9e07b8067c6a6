package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestInitTracerExportsSpans(t *testing.T) {
	t.Setenv("OTEL_RESOURCE_ATTRIBUTES", "deployment.environment=ci")
	var buf bytes.Buffer
	shutdown := InitTracer(context.Background(), "netblank-test", &buf, nil)

	_, span := otel.Tracer("test").Start(context.Background(), "probe")
	span.End()

	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"Name": "probe"`) {
		t.Fatalf("expected exported span, got %s", out)
	}
	if !strings.Contains(out, "netblank-test") {
		t.Fatalf("expected service name in resource, got %s", out)
	}
	if !strings.Contains(out, "deployment.environment") {
		t.Fatalf("expected env resource attributes, got %s", out)
	}
}
