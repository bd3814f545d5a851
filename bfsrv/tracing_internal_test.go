package bfsrv

import (
	"context"
	"testing"

	"github.com/advdv/bframe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

func TestNewExporter(t *testing.T) {
	t.Run("stdout exporter", func(t *testing.T) {
		exp, err := newExporter("stdout")
		require.NoError(t, err)
		require.NotNil(t, exp)
	})

	t.Run("empty defaults to stdout", func(t *testing.T) {
		exp, err := newExporter("")
		require.NoError(t, err)
		require.NotNil(t, exp)
	})

	t.Run("none has no exporter", func(t *testing.T) {
		exp, err := newExporter("none")
		require.NoError(t, err)
		require.Nil(t, exp)
	})

	t.Run("unsupported exporter returns error", func(t *testing.T) {
		_, err := newExporter("xrayudp")
		require.EqualError(t, err, `unsupported BF_OTEL_EXPORTER: "xrayudp" (supported: stdout, none)`)
	})
}

func TestNewResource(t *testing.T) {
	res := newResource("my-service")

	var found bool
	for _, attr := range res.Attributes() {
		if string(attr.Key) == "service.name" && attr.Value.AsString() == "my-service" {
			found = true
		}
	}

	require.True(t, found, "expected service.name attribute in resource")
}

func TestNewTracerProvider(t *testing.T) {
	for _, exp := range []string{"stdout", "none"} {
		t.Run(exp, func(t *testing.T) {
			var tp trace.TracerProvider
			app := fxtest.New(t,
				fx.Supply(fx.Annotate(testEnv{otelExp: exp}, fx.As(new(Environment)))),
				fx.Provide(NewTracerProvider),
				fx.Populate(&tp),
			)

			app.RequireStart()

			require.IsType(t, &sdktrace.TracerProvider{}, tp)

			_, span := tp.Tracer("test").Start(context.Background(), "op")
			assert.True(t, span.SpanContext().IsValid())
			span.End()

			app.RequireStop()
		})
	}

	t.Run("invalid exporter", func(t *testing.T) {
		app := fx.New(
			fx.NopLogger,
			fx.Supply(fx.Annotate(testEnv{otelExp: "invalid"}, fx.As(new(Environment)))),
			fx.Provide(NewTracerProvider),
			fx.Invoke(func(trace.TracerProvider) {}),
		)

		require.Error(t, app.Err())
	})
}

func TestHeaderCarrier(t *testing.T) {
	msg := bframe.Message("GET /items HTTP/1.1\r\n" +
		"Traceparent: 00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01\r\n" +
		"Host:  example.com \r\n" +
		"host: other\r\n" +
		"bogus line\r\n" +
		"\r\n" +
		"traceparent: in the body")

	carrier := newHeaderCarrier(msg)

	assert.Equal(t, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", carrier.Get("traceparent"))
	assert.Equal(t, "example.com", carrier.Get("HOST"))
	assert.Empty(t, carrier.Get("tracestate"))
	assert.ElementsMatch(t, []string{"traceparent", "host"}, carrier.Keys())

	carrier.Set("Baggage", "k=v")
	assert.Equal(t, "k=v", carrier.Get("baggage"))

	t.Run("extracts remote span context", func(t *testing.T) {
		ctx := NewPropagator().Extract(context.Background(), newHeaderCarrier(msg))

		sc := trace.SpanContextFromContext(ctx)
		require.True(t, sc.IsValid())
		assert.True(t, sc.IsRemote())
		assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", sc.TraceID().String())
		assert.Equal(t, "00f067aa0ba902b7", sc.SpanID().String())
	})

	t.Run("message without headers", func(t *testing.T) {
		carrier := newHeaderCarrier(bframe.Message("GET / HTTP/1.1\r\n\r\n"))
		assert.Empty(t, carrier.Keys())

		ctx := NewPropagator().Extract(context.Background(), carrier)
		assert.False(t, trace.SpanContextFromContext(ctx).IsValid())
	})

	var _ propagation.TextMapCarrier = carrier
}
