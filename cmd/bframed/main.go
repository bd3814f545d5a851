// Command bframed serves a small set of demo routes over raw TCP.
package main

import (
	"github.com/advdv/bframe/bfsrv"
	"go.uber.org/fx"
)

// Env is the environment of the demo server.
type Env struct {
	bfsrv.BaseEnvironment
	Greeting string `env:"BF_GREETING" envDefault:"hello from bframe"`
}

func routing(m *bfsrv.Mux, h *Handlers) {
	m.HandleFunc("GET /", h.Index, "index")
	m.HandleFunc("POST /echo", h.Echo, "echo")
	m.HandleFunc("GET /items/{id}", h.GetItem, "get-item")
	m.HandleFunc("POST /form", h.Form, "form")
	m.HandleFunc("POST /users", h.CreateUser, "create-user")
}

func main() {
	bfsrv.NewApp[Env](routing,
		bfsrv.WithFx(fx.Provide(NewHandlers)),
	).Run()
}
