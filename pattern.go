package bframe

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// pattern is a parsed route pattern of the form "[METHOD ]/lit/{name}/{rest...}".
type pattern struct {
	str      string
	method   string
	segments []segment
}

type segment struct {
	lit   string
	param string
	multi bool
}

func parsePattern(s string) (*pattern, error) {
	if s == "" {
		return nil, errors.New("empty pattern")
	}

	pat := &pattern{str: s}

	path := s
	if method, rest, found := strings.Cut(s, " "); found {
		pat.method, path = method, strings.TrimLeft(rest, " ")
	}

	if !strings.HasPrefix(path, "/") {
		return nil, errors.Newf("path must start with '/': %q", s)
	}

	seen := map[string]bool{}
	for i, part := range splitPath(path) {
		if !strings.HasPrefix(part, "{") {
			pat.segments = append(pat.segments, segment{lit: part})
			continue
		}

		if !strings.HasSuffix(part, "}") {
			return nil, errors.Newf("bad wildcard segment %q", part)
		}

		name := part[1 : len(part)-1]
		seg := segment{param: strings.TrimSuffix(name, "...")}
		seg.multi = seg.param != name

		switch {
		case seg.param == "":
			return nil, errors.Newf("empty wildcard in %q", s)
		case seen[seg.param]:
			return nil, errors.Newf("duplicate wildcard name %q", seg.param)
		case seg.multi && i != strings.Count(path, "/")-1:
			return nil, errors.Newf("%q wildcard not at end", part)
		}

		seen[seg.param] = true
		pat.segments = append(pat.segments, seg)
	}

	return pat, nil
}

// splitPath splits "/a/b" into ["a" "b"]. The root path yields no segments.
func splitPath(path string) []string {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return nil
	}

	return strings.Split(path, "/")
}

// matchPath reports whether path matches the pattern's segments and returns the
// wildcard values.
func (p *pattern) matchPath(path string) (map[string]string, bool) {
	parts := splitPath(path)
	params := map[string]string{}

	for i, seg := range p.segments {
		if seg.multi {
			params[seg.param] = strings.Join(parts[min(i, len(parts)):], "/")
			return params, true
		}

		if i >= len(parts) {
			return nil, false
		}

		switch {
		case seg.param != "":
			if parts[i] == "" {
				return nil, false
			}
			params[seg.param] = parts[i]
		case seg.lit != parts[i]:
			return nil, false
		}
	}

	return params, len(parts) == len(p.segments)
}

func (p *pattern) matchMethod(method string) bool {
	return p.method == "" || p.method == method
}

// specificity ranks patterns so literal segments win over wildcards.
func (p *pattern) specificity() int {
	score := 0
	for _, seg := range p.segments {
		switch {
		case seg.multi:
		case seg.param != "":
			score++
		default:
			score += 2
		}
	}

	return score
}

// build substitutes the wildcards in order.
func (p *pattern) build(vals ...string) (string, error) {
	var parts []string
	for _, seg := range p.segments {
		if seg.param == "" {
			parts = append(parts, seg.lit)
			continue
		}

		if len(vals) < 1 {
			return "", errors.Newf("not enough values for pattern %q", p.str)
		}

		parts = append(parts, vals[0])
		vals = vals[1:]
	}

	if len(vals) > 0 {
		return "", errors.Newf("too many values for pattern %q", p.str)
	}

	return "/" + strings.Join(parts, "/"), nil
}
