package bframe

import (
	"bytes"
	"strconv"
)

// DefaultContentType is used for responses that do not set one.
const DefaultContentType = "text/plain; charset=utf-8"

// Response buffers a response until it is serialized with [Response.Packet]. The
// buffer allows a handler's output to be replaced entirely, for example when it
// returns an error halfway.
type Response struct {
	code        Code
	reason      string
	contentType string
	body        bytes.Buffer
	limit       int
}

// NewResponse inits a response with status 200. A limit larger than zero caps the
// number of body bytes that can be written.
func NewResponse(limit int) *Response {
	return &Response{
		code:        CodeOK,
		contentType: DefaultContentType,
		limit:       limit,
	}
}

// WriteHeader sets the status code. The reason phrase is the standard one.
func (w *Response) WriteHeader(code Code) {
	w.code, w.reason = code, ""
}

// WriteStatus sets the status code with a custom reason phrase.
func (w *Response) WriteStatus(code Code, reason string) {
	w.code, w.reason = code, reason
}

// SetContentType sets the Content-Type of the response.
func (w *Response) SetContentType(ct string) { w.contentType = ct }

// Write appends to the body. A write that would exceed the limit writes nothing and
// returns [ErrBufferFull].
func (w *Response) Write(p []byte) (int, error) {
	if w.limit > 0 && w.body.Len()+len(p) > w.limit {
		return 0, ErrBufferFull
	}

	return w.body.Write(p)
}

// WriteString is like Write but for strings.
func (w *Response) WriteString(s string) (int, error) {
	if w.limit > 0 && w.body.Len()+len(s) > w.limit {
		return 0, ErrBufferFull
	}

	return w.body.WriteString(s)
}

// Reset clears the body and restores the default status and content type.
func (w *Response) Reset() {
	w.body.Reset()
	w.code, w.reason = CodeOK, ""
	w.contentType = DefaultContentType
}

// Code returns the status code that will be sent.
func (w *Response) Code() Code { return w.code }

// Len returns the number of buffered body bytes.
func (w *Response) Len() int { return w.body.Len() }

// Packet serializes the buffered response.
func (w *Response) Packet() Message {
	reason := w.reason
	if reason == "" {
		reason = w.code.Reason()
	}

	return CreateHTTPPacket(strconv.Itoa(int(w.code)), reason, w.contentType, w.body.Bytes())
}
