package bfsrv_test

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/advdv/bframe"
	"github.com/advdv/bframe/bfsrv"
	"github.com/advdv/bframe/bfsrv/bfsrvtest"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
)

// TestEnv is a test environment with app-specific fields beyond BaseEnvironment.
type TestEnv struct {
	bfsrv.BaseEnvironment
	UpstreamURL string `env:"UPSTREAM_URL"`
}

type handlers struct {
	rt *bfsrv.Runtime[TestEnv]
}

func newHandlers(rt *bfsrv.Runtime[TestEnv]) *handlers {
	return &handlers{rt: rt}
}

func (h *handlers) getItem(ctx context.Context, w *bframe.Response, r *bframe.Request) error {
	id := r.PathValue("id")
	if id == "0" {
		return bframe.NewError(bframe.CodeNotFound, errors.New("no such item"))
	}

	self, err := h.rt.Reverse("get-item", id)
	if err != nil {
		return err
	}

	bfsrv.Span(ctx).AddEvent("item requested")
	bfsrv.Log(ctx).Info("item requested")

	w.SetContentType("application/json")
	_, err = w.WriteString(`{"id":"` + id + `","self":"` + self + `","service":"` + h.rt.Env().ServiceName + `"}`)

	return err
}

func (h *handlers) echo(_ context.Context, w *bframe.Response, r *bframe.Request) error {
	if ct, ok := r.Message.Header("Content-Type"); ok {
		w.SetContentType(ct)
	}

	_, err := w.Write(r.Message.Body())

	return err
}

func (h *handlers) remaining(ctx context.Context, w *bframe.Response, _ *bframe.Request) error {
	if bfsrv.RequestRemainingTime(ctx) <= 0 {
		return errors.New("no deadline")
	}

	_, err := w.WriteString("ok")

	return err
}

func (h *handlers) upstream(ctx context.Context, w *bframe.Response, _ *bframe.Request) error {
	var body string
	if err := h.rt.NewRequest().
		BaseURL(h.rt.Env().UpstreamURL).
		ToString(&body).
		Fetch(ctx); err != nil {
		return err
	}

	_, err := w.WriteString(body)

	return err
}

func routing(m *bfsrv.Mux, h *handlers) {
	m.HandleFunc("GET /items/{id}", h.getItem, "get-item")
	m.HandleFunc("POST /echo", h.echo)
	m.HandleFunc("GET /remaining", h.remaining)
	m.HandleFunc("GET /upstream", h.upstream)
	m.HandleFunc("GET /panic", func(context.Context, *bframe.Response, *bframe.Request) error {
		panic("boom")
	})
}

// startApp starts the test app with the routes above. The environment must be set.
func startApp(t *testing.T, opts ...bfsrv.Option) *bfsrvtest.App {
	t.Helper()

	app := bfsrvtest.New[TestEnv](t, routing,
		append([]bfsrv.Option{bfsrv.WithFx(fx.Provide(newHandlers))}, opts...)...)
	app.RequireStart()
	t.Cleanup(app.RequireStop)

	return app
}

// exchange writes the request and reads the next response from the connection.
func exchange(t *testing.T, conn net.Conn, rd *bfsrvtest.Reader, req string) bframe.Message {
	t.Helper()

	_, err := conn.Write([]byte(req))
	require.NoError(t, err)

	return next(t, conn, rd)
}

func next(t *testing.T, conn net.Conn, rd *bfsrvtest.Reader) bframe.Message {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	resp, err := rd.Next()
	require.NoError(t, err)

	return resp
}

func statusLine(resp bframe.Message) string {
	line, _, _ := strings.Cut(resp.String(), "\r\n")
	return line
}
