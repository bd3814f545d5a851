package bfsrv

import (
	"net/http"

	"github.com/carlmjohnson/requests"
)

// Runtime provides access to app-scoped dependencies.
// Inject this into handler constructors via fx instead of pulling from context.
//
//	type Handlers struct {
//	    rt *bfsrv.Runtime[Env]
//	}
//
//	func NewHandlers(rt *bfsrv.Runtime[Env]) *Handlers {
//	    return &Handlers{rt: rt}
//	}
type Runtime[E Environment] struct {
	env       E
	mux       *Mux
	transport http.RoundTripper
}

// NewRuntime creates a new Runtime with the given dependencies.
func NewRuntime[E Environment](env E, mux *Mux, transport http.RoundTripper) *Runtime[E] {
	return &Runtime[E]{
		env:       env,
		mux:       mux,
		transport: transport,
	}
}

// Env returns the environment configuration.
func (r *Runtime[E]) Env() E {
	return r.env
}

// Reverse returns the path for a named route with the given parameters.
// The route must have been registered with a name using Handle/HandleFunc.
func (r *Runtime[E]) Reverse(name string, params ...string) (string, error) {
	return r.mux.Reverse(name, params...)
}

// NewRequest returns a fresh [requests.Builder] for outbound calls. Its transport
// continues the trace of the message being served.
func (r *Runtime[E]) NewRequest() *requests.Builder {
	return newRequestBuilder(r.transport)
}
