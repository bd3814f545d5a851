package bframe

import (
	"context"
	"strings"
)

// Mount mounts a Handler on a sub-path pattern such as "GET /api". The mounted
// handler sees the request path with the prefix stripped, "/api" and "/api/" both
// become "/". Middleware registered via Use() is applied and sees the original path.
func (m *ServeMux) Mount(pattern string, handler Handler) {
	method, path := splitMethodPattern(pattern)
	path = strings.TrimSuffix(path, "/")

	m.Handle(method+path+"/{"+mountRest+"...}", stripPrefix(path, handler))
}

// MountFunc mounts a HandlerFunc on a sub-path pattern.
func (m *ServeMux) MountFunc(pattern string, handler HandlerFunc) {
	m.Mount(pattern, handler)
}

// mountRest names the wildcard that captures the path below a mount point.
const mountRest = "bframe_mount_rest"

func splitMethodPattern(pattern string) (method, path string) {
	if idx := strings.LastIndex(pattern, "/"); idx > 0 {
		prefix := pattern[:idx]
		if spaceIdx := strings.Index(prefix, " "); spaceIdx >= 0 {
			return pattern[:spaceIdx+1], pattern[spaceIdx+1:]
		}
	}

	return "", pattern
}

func stripPrefix(prefix string, handler Handler) Handler {
	return HandlerFunc(func(ctx context.Context, w *Response, r *Request) error {
		p := strings.TrimPrefix(r.Path, prefix)
		if p == "" {
			p = "/"
		}

		r2 := r.clone()
		r2.Path = p

		return handler.ServeFrame(ctx, w, r2)
	})
}
