package bframe

import (
	"bytes"
	"strconv"
)

// CreateHTTPPacket serializes a response. The Content-Length field is always computed
// from the body, it cannot be supplied by the caller.
func CreateHTTPPacket(statusCode, reasonPhrase, contentType string, body []byte) Message {
	length := strconv.Itoa(len(body))

	var buf bytes.Buffer
	buf.Grow(64 + len(statusCode) + len(reasonPhrase) + len(contentType) + len(length) + len(body))

	buf.WriteString("HTTP/1.1 ")
	buf.WriteString(statusCode)
	buf.WriteByte(' ')
	buf.WriteString(reasonPhrase)
	buf.Write(crlf)
	buf.WriteString("Content-Type: ")
	buf.WriteString(contentType)
	buf.Write(crlf)
	buf.WriteString("Content-Length: ")
	buf.WriteString(length)
	buf.Write(crlf)
	buf.Write(crlf)
	buf.Write(body)

	return buf.Bytes()
}

// NewPacket serializes a response with the standard reason phrase of code.
func NewPacket(code Code, contentType string, body []byte) Message {
	return CreateHTTPPacket(strconv.Itoa(int(code)), code.Reason(), contentType, body)
}
