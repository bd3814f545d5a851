package bframe_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/advdv/bframe"
	"github.com/stretchr/testify/require"
)

func apiHandler() bframe.HandlerFunc {
	return func(_ context.Context, w *bframe.Response, r *bframe.Request) error {
		_, err := fmt.Fprintf(w, "path:%s", r.Path)
		return err
	}
}

func TestMountSubPath(t *testing.T) {
	for _, tt := range []struct{ path, want string }{
		{"/api/users", "path:/users"},
		{"/api", "path:/"},
		{"/api/", "path:/"},
		{"/api/v1/users/123", "path:/v1/users/123"},
	} {
		mux := bframe.NewServeMux()
		mux.MountFunc("/api", apiHandler())

		resp := serve(t, mux, get(tt.path))
		require.Equal(t, "HTTP/1.1 200 OK", statusLine(resp), tt.path)
		require.Equal(t, tt.want, string(resp.Body()), tt.path)
	}
}

func TestMountWithMethod(t *testing.T) {
	mux := bframe.NewServeMux()
	mux.MountFunc("GET /api", apiHandler())

	resp := serve(t, mux, bframe.Message("POST /api/users HTTP/1.1\r\nContent-Length: 0\r\n\r\n"))
	require.Equal(t, "HTTP/1.1 405 Method Not Allowed", statusLine(resp))

	resp = serve(t, mux, get("/apix"))
	require.Equal(t, "HTTP/1.1 404 Not Found", statusLine(resp))
}

func TestMountMiddlewareSeesOriginalPath(t *testing.T) {
	mux := bframe.NewServeMux()
	mux.Use(func(next bframe.Handler) bframe.Handler {
		return bframe.HandlerFunc(func(ctx context.Context, w *bframe.Response, r *bframe.Request) error {
			return next.ServeFrame(context.WithValue(ctx, ctxKey("mw_path"), r.Path), w, r)
		})
	})

	mux.MountFunc("/api", func(ctx context.Context, w *bframe.Response, r *bframe.Request) error {
		_, err := fmt.Fprintf(w, "mw:%s,handler:%s", ctx.Value(ctxKey("mw_path")), r.Path)
		return err
	})

	resp := serve(t, mux, get("/api/users"))
	require.Equal(t, "mw:/api/users,handler:/users", string(resp.Body()))
}

func TestMountSubMux(t *testing.T) {
	sub := bframe.NewServeMux()
	sub.HandleFunc("GET /users/{id}", func(_ context.Context, w *bframe.Response, r *bframe.Request) error {
		_, err := fmt.Fprintf(w, "user %s", r.PathValue("id"))
		return err
	})

	mux := bframe.NewServeMux()
	mux.Mount("/api", sub)

	resp := serve(t, mux, get("/api/users/7"))
	require.Equal(t, "user 7", string(resp.Body()))

	resp = serve(t, mux, get("/api/nope"))
	require.Equal(t, "HTTP/1.1 404 Not Found", statusLine(resp))
}
