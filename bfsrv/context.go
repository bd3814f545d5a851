package bfsrv

import (
	"context"
	"time"

	"github.com/advdv/bframe"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ctxKey is the key type for context values.
type ctxKey int

const (
	ctxKeyRequestDep ctxKey = iota
)

// requestDep holds request-scoped dependencies available via context.
// App-scoped dependencies (env, mux) are accessed via Runtime instead.
type requestDep struct {
	logger *zap.Logger
}

// withRequestDep injects dependencies into the request context.
func withRequestDep(d *requestDep) bframe.Middleware {
	return func(next bframe.Handler) bframe.Handler {
		return bframe.HandlerFunc(func(ctx context.Context, w *bframe.Response, r *bframe.Request) error {
			ctx = context.WithValue(ctx, ctxKeyRequestDep, d)
			return next.ServeFrame(ctx, w, r)
		})
	}
}

// WithLogger returns a context that makes [Log] return logs. Handlers served by the
// server get this automatically, it is meant for calling handlers in tests.
func WithLogger(ctx context.Context, logs *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKeyRequestDep, &requestDep{logger: logs})
}

func requestDepFromContext(ctx context.Context) *requestDep {
	d, ok := ctx.Value(ctxKeyRequestDep).(*requestDep)
	if !ok {
		panic("bfsrv: requestDep not found in context; is the middleware configured?")
	}

	return d
}

// Log returns a trace-correlated zap logger from the context.
func Log(ctx context.Context) *zap.Logger {
	d := requestDepFromContext(ctx)
	return d.logger.With(traceFields(ctx)...)
}

// Span returns the current trace span from the context.
func Span(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// traceFields extracts trace_id and span_id from the context for log correlation.
func traceFields(ctx context.Context) []zap.Field {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return nil
	}

	sc := span.SpanContext()

	return []zap.Field{
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	}
}

// WithRequestTimeout returns middleware that bounds the context of every message
// by the given timeout. A timeout of zero or less leaves the context untouched.
func WithRequestTimeout(timeout time.Duration) bframe.Middleware {
	return func(next bframe.Handler) bframe.Handler {
		if timeout <= 0 {
			return next
		}

		return bframe.HandlerFunc(func(ctx context.Context, w *bframe.Response, r *bframe.Request) error {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			return next.ServeFrame(ctx, w, r)
		})
	}
}

// RequestRemainingTime returns the duration until the request context deadline.
// Returns 0 if no deadline is set or if the deadline has passed.
func RequestRemainingTime(ctx context.Context) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return 0
	}

	return max(0, time.Until(deadline))
}
