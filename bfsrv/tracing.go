package bfsrv

import (
	"context"
	"strings"

	"github.com/advdv/bframe"
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
)

// NewTracerProvider creates and configures the OpenTelemetry TracerProvider.
// Supported exporters via BF_OTEL_EXPORTER: "stdout" (default) and "none". With
// "none" spans are still created, so logs keep their trace ids, but never exported.
// Shutdown is handled automatically via fx.Lifecycle.
func NewTracerProvider(lc fx.Lifecycle, env Environment) (trace.TracerProvider, error) {
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(newResource(env.serviceName())),
	}

	exporter, err := newExporter(env.otelExporter())
	if err != nil {
		return nil, err
	}

	if exporter != nil {
		opts = append(opts, sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)))
	}

	tp := sdktrace.NewTracerProvider(opts...)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return tp.Shutdown(ctx)
		},
	})

	return tp, nil
}

// NewPropagator creates the W3C TraceContext + Baggage composite propagator.
func NewPropagator() propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	)
}

// newExporter creates a span exporter based on the exporter type. It returns a nil
// exporter for "none".
func newExporter(exporterType string) (sdktrace.SpanExporter, error) {
	switch exporterType {
	case "stdout", "":
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	case "none":
		return nil, nil
	default:
		return nil, errors.Newf("unsupported BF_OTEL_EXPORTER: %q (supported: stdout, none)", exporterType)
	}
}

func newResource(serviceName string) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
	)
}

// headerCarrier adapts the header block of a raw message to a TextMapCarrier. Field
// names are matched case-insensitively since clients canonicalize them.
type headerCarrier map[string]string

var _ propagation.TextMapCarrier = headerCarrier{}

func newHeaderCarrier(msg bframe.Message) headerCarrier {
	head, _, _ := strings.Cut(msg.String(), "\r\n\r\n")

	lines := strings.Split(head, "\r\n")
	carrier := make(headerCarrier, len(lines))

	// the first line is the request line
	for _, line := range lines[1:] {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(name))
		if _, exists := carrier[key]; !exists {
			carrier[key] = strings.TrimSpace(value)
		}
	}

	return carrier
}

func (c headerCarrier) Get(key string) string { return c[strings.ToLower(key)] }
func (c headerCarrier) Set(key, value string) { c[strings.ToLower(key)] = value }
func (c headerCarrier) Keys() []string        { return lo.Keys(c) }
