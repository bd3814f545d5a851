package bframe

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
)

// Request is a complete message together with the routing information derived from it.
type Request struct {
	Method  string
	Path    string
	Query   string
	Message Message

	params map[string]string
}

// NewRequest derives method, path and query from a complete message. The path and
// query are not decoded.
func NewRequest(m Message) (*Request, error) {
	target, err := GetPath(m)
	if err != nil {
		return nil, errors.Wrap(err, "derive request path")
	}

	path, query, _ := strings.Cut(target, "?")

	return &Request{
		Method:  m.Method(),
		Path:    path,
		Query:   query,
		Message: m,
	}, nil
}

// PathValue returns the value of the named "{name}" path segment of the matched
// route, or the empty string.
func (r *Request) PathValue(name string) string {
	return r.params[name]
}

// clone returns a shallow copy that can be modified without affecting r.
func (r *Request) clone() *Request {
	r2 := new(Request)
	*r2 = *r

	return r2
}

// Handler serves one complete message by writing into a buffered [Response]. Returning
// an error discards everything written so far.
type Handler interface {
	ServeFrame(ctx context.Context, w *Response, r *Request) error
}

// HandlerFunc allow casting a function to implement [Handler].
type HandlerFunc func(context.Context, *Response, *Request) error

// ServeFrame implements the [Handler] interface.
func (f HandlerFunc) ServeFrame(ctx context.Context, w *Response, r *Request) error {
	return f(ctx, w, r)
}
