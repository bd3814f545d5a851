package bframe

import (
	"bytes"

	"github.com/cockroachdb/errors"
)

// Message is one complete request or response: the header block including its
// terminator, followed by the body if there is one.
type Message []byte

func (m Message) String() string { return string(m) }

// Method returns the token before the first space of the start line.
func (m Message) Method() string {
	line := m.startLine()
	if idx := bytes.IndexByte(line, ' '); idx >= 0 {
		return string(line[:idx])
	}

	return string(line)
}

// Path returns the request path, see [GetPath].
func (m Message) Path() (string, error) { return GetPath(m) }

// Header returns the value of the first header field whose name matches exactly.
// Matching is case-sensitive and the value is trimmed of surrounding whitespace.
func (m Message) Header(name string) (string, bool) {
	lines := bytes.Split(m.header(), crlf)
	if len(lines) < 2 {
		return "", false
	}

	for _, line := range lines[1:] {
		colon := bytes.IndexByte(line, ':')
		if colon < 0 || string(line[:colon]) != name {
			continue
		}

		return string(bytes.TrimSpace(line[colon+1:])), true
	}

	return "", false
}

// Body returns the bytes after the header terminator. It is empty for messages
// without a body.
func (m Message) Body() []byte {
	idx := bytes.Index(m, headerTerminator)
	if idx < 0 {
		return nil
	}

	return m[idx+len(headerTerminator):]
}

// header returns the header block without its terminator.
func (m Message) header() []byte {
	if idx := bytes.Index(m, headerTerminator); idx >= 0 {
		return m[:idx]
	}

	return m
}

func (m Message) startLine() []byte {
	if idx := bytes.Index(m, crlf); idx >= 0 {
		return m[:idx]
	}

	return m
}

// GetPath returns the text between the first '/' in the message and the space that
// follows it. The path is returned verbatim: it is neither validated nor decoded.
func GetPath(msg []byte) (string, error) {
	start := bytes.IndexByte(msg, '/')
	if start < 0 {
		return "", errors.Wrap(ErrNotFound, "no path separator")
	}

	end := bytes.IndexByte(msg[start:], ' ')
	if end < 0 {
		return "", errors.Wrap(ErrNotFound, "no space after path")
	}

	return string(msg[start : start+end]), nil
}
