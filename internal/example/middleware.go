// Package example implements example middleware in an outside package.
package example

import (
	"context"

	"github.com/advdv/bframe"
	"go.uber.org/zap"
)

// ctxKey type scopes middlware values.
type ctxKey string

// Middleware provides an example for middleware that adds a request logger to the context.
func Middleware(logs *zap.Logger) bframe.Middleware {
	return func(n bframe.Handler) bframe.Handler {
		return bframe.HandlerFunc(func(ctx context.Context, w *bframe.Response, r *bframe.Request) error {
			logs := logs.With(zap.String("method", r.Method), zap.String("path", r.Path))
			ctx = context.WithValue(ctx, ctxKey("zap"), logs)

			return n.ServeFrame(ctx, w, r)
		})
	}
}

// Log returns the logger stored by [Middleware], or a no-op logger.
func Log(ctx context.Context) *zap.Logger {
	v, ok := ctx.Value(ctxKey("zap")).(*zap.Logger)
	if !ok {
		return zap.NewNop()
	}

	return v
}
