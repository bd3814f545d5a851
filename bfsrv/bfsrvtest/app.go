// Package bfsrvtest provides test helpers for bfsrv applications.
//
// It constructs the identical DI graph as [bfsrv.NewApp] but uses
// [fxtest.App] which fails the test immediately on DI errors.
//
// Example:
//
//	bfsrvtest.SetBaseEnv(t)
//	app := bfsrvtest.New[TestEnv](t, routing)
//	app.RequireStart()
//	t.Cleanup(app.RequireStop)
package bfsrvtest

import (
	"net"
	"strconv"
	"testing"

	"github.com/advdv/bframe/bfsrv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

// App embeds *fxtest.App for testing bfsrv applications.
type App struct {
	*fxtest.App
	srv *bfsrv.Server
}

// New creates a test app with the same DI graph as [bfsrv.NewApp].
func New[E bfsrv.Environment](t testing.TB, routing any, opts ...bfsrv.Option) *App {
	app := &App{}
	app.App = fxtest.New(t, append(bfsrv.FxOptions[E](routing, opts...), fx.Populate(&app.srv))...)

	return app
}

// Addr returns the loopback "host:port" the started app can be reached at.
func (a *App) Addr() string {
	addr, ok := a.srv.Addr().(*net.TCPAddr)
	if !ok {
		panic("bfsrvtest: app is not started")
	}

	return net.JoinHostPort("127.0.0.1", strconv.Itoa(addr.Port))
}

// URL returns the base http URL of the started app.
func (a *App) URL() string {
	return "http://" + a.Addr()
}

// Dial opens a raw TCP connection to the started app. The connection is closed when
// the test ends.
func (a *App) Dial(t testing.TB) net.Conn {
	t.Helper()

	conn, err := net.Dial("tcp", a.Addr())
	if err != nil {
		t.Fatalf("bfsrvtest: failed to dial: %v", err)
	}

	t.Cleanup(func() { conn.Close() })

	return conn
}
