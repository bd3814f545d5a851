package bframe

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// ServeMux routes complete messages to handlers by method and path, buffers their
// responses and renders handler errors as response packets.
type ServeMux struct {
	logs        Logger
	bufLimit    int
	reverser    *Reverser
	routes      []route
	middlewares struct {
		captured bool
		buffered []Middleware
	}
}

type route struct {
	pat     *pattern
	handler Handler
}

// NewServeMux creates a new ServeMux with default settings.
func NewServeMux() *ServeMux {
	return NewServeMuxWith(-1, NewStdLogger(nil), NewReverser())
}

// NewServeMuxWith creates a ServeMux with custom settings.
func NewServeMuxWith(bufLimit int, logger Logger, reverser *Reverser) *ServeMux {
	return &ServeMux{
		bufLimit: bufLimit,
		logs:     logger,
		reverser: reverser,
	}
}

// Reverse returns the path based on the name and parameter values.
func (m *ServeMux) Reverse(name string, vals ...string) (string, error) {
	return m.reverser.Reverse(name, vals...)
}

// Use allows providing of middleware.
func (m *ServeMux) Use(mw ...Middleware) {
	m.ensureNoUseAfterHandle()
	m.middlewares.buffered = append(m.middlewares.buffered, mw...)
}

// HandleFunc handles the request given the pattern using a function.
func (m *ServeMux) HandleFunc(pattern string, handler HandlerFunc, name ...string) {
	m.Handle(pattern, handler, name...)
}

// Handle registers a handler for a pattern such as "GET /items/{id}". A pattern
// without method matches every method. It panics if the pattern is invalid.
func (m *ServeMux) Handle(pattern string, handler Handler, name ...string) {
	m.handle(pattern, Wrap(handler, m.middlewares.buffered...), name...)
}

func (m *ServeMux) handle(str string, handler Handler, name ...string) {
	m.middlewares.captured = true

	if len(name) > 0 {
		str = m.reverser.Named(name[0], str)
	}

	pat, err := parsePattern(str)
	if err != nil {
		panic("bframe: " + err.Error())
	}

	m.routes = append(m.routes, route{pat: pat, handler: handler})
}

// ServeMessage routes a complete message and returns the serialized response.
func (m *ServeMux) ServeMessage(ctx context.Context, msg Message) Message {
	req, err := NewRequest(msg)
	if err != nil {
		m.logs.LogMalformedRequest(err)
		return errorPacket(NewError(CodeBadRequest, err))
	}

	resp := NewResponse(m.bufLimit)
	if err := m.ServeFrame(ctx, resp, req); err != nil {
		resp.Reset()

		if CodeOf(err) == CodeUnknown {
			m.logs.LogUnhandledServeError(err)
			return NewPacket(CodeInternalServerError, DefaultContentType, []byte(CodeInternalServerError.Reason()))
		}

		return errorPacket(err)
	}

	return resp.Packet()
}

// ServeFrame implements [Handler] so a mux can be mounted on another mux. It returns
// an [*Error] with [CodeNotFound] or [CodeMethodNotAllowed] when no route matches.
func (m *ServeMux) ServeFrame(ctx context.Context, w *Response, r *Request) error {
	handler, params, code := m.match(r)
	if handler == nil {
		return NewError(code, errors.Newf("%s %s", r.Method, r.Path))
	}

	r2 := r.clone()
	r2.params = params

	return handler.ServeFrame(ctx, w, r2)
}

// match finds the most specific route for the request. When no route matches, the
// returned code tells whether the path or only the method was unknown.
func (m *ServeMux) match(req *Request) (Handler, map[string]string, Code) {
	type candidate struct {
		route
		params map[string]string
	}

	var pathMatches []candidate
	for _, rt := range m.routes {
		if params, ok := rt.pat.matchPath(req.Path); ok {
			pathMatches = append(pathMatches, candidate{rt, params})
		}
	}

	if len(pathMatches) == 0 {
		return nil, nil, CodeNotFound
	}

	methodMatches := lo.Filter(pathMatches, func(c candidate, _ int) bool {
		return c.pat.matchMethod(req.Method)
	})
	if len(methodMatches) == 0 {
		return nil, nil, CodeMethodNotAllowed
	}

	best := lo.MaxBy(methodMatches, func(a, b candidate) bool {
		return a.pat.specificity() > b.pat.specificity()
	})

	return best.handler, best.params, CodeOK
}

func (m *ServeMux) ensureNoUseAfterHandle() {
	if m.middlewares.captured {
		panic("bframe: cannot call Use() after calling Handle")
	}
}

func errorPacket(err error) Message {
	return NewPacket(CodeOf(err), DefaultContentType, []byte(err.Error()))
}
