package bfsrv

import (
	"testing"

	"github.com/advdv/bframe"
	"github.com/stretchr/testify/assert"
)

func TestRejectCode(t *testing.T) {
	assert.Equal(t, bframe.CodeLengthRequired, rejectCode(bframe.StatusMissingContentLength))
	assert.Equal(t, bframe.CodeBadRequest, rejectCode(bframe.StatusMalformedContentLength))
	assert.Equal(t, bframe.CodeNotImplemented, rejectCode(bframe.StatusUnrecognizedMethod))
	assert.Equal(t, bframe.CodeRequestEntityTooLarge, rejectCode(bframe.StatusBufferFull))
	assert.Equal(t, bframe.CodeInternalServerError, rejectCode(bframe.Status(99)))
}

func TestStatusCode(t *testing.T) {
	code, ok := statusCode(bframe.NewPacket(bframe.CodeNotFound, "text/plain", nil))
	assert.True(t, ok)
	assert.Equal(t, 404, code)

	_, ok = statusCode(bframe.Message("HTTP/1.1"))
	assert.False(t, ok)

	_, ok = statusCode(bframe.Message("HTTP/1.1 abc OK\r\n\r\n"))
	assert.False(t, ok)
}
