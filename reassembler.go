package bframe

import (
	"bytes"
	"math"
)

var (
	headerTerminator = []byte("\r\n\r\n")
	contentLengthKey = []byte("Content-Length:")
	crlf             = []byte("\r\n")

	methodGet      = []byte("GET")
	methodPost     = []byte("POST")
	responsePrefix = []byte("HTTP/")
)

// Status discriminates the result of a single [Reassembler.Feed] call.
type Status int

const (
	// StatusIncompleteHeader means the header terminator has not been seen yet.
	StatusIncompleteHeader Status = iota
	// StatusIncompleteBody means the header is complete but fewer body bytes than
	// announced by Content-Length are buffered.
	StatusIncompleteBody
	// StatusComplete means a full message was extracted from the buffer.
	StatusComplete
	// StatusMissingContentLength means a POST header block carries no Content-Length
	// field. The framing of the stream is lost.
	StatusMissingContentLength
	// StatusMalformedContentLength means the Content-Length field holds no decimal digits
	// or a value that does not fit an int.
	StatusMalformedContentLength
	// StatusUnrecognizedMethod means the buffer does not start with a method the
	// reassembler knows how to frame.
	StatusUnrecognizedMethod
	// StatusBufferFull means the configured buffer limit was exceeded before a
	// message could be completed.
	StatusBufferFull
)

func (s Status) String() string {
	switch s {
	case StatusIncompleteHeader:
		return "incomplete header"
	case StatusIncompleteBody:
		return "incomplete body"
	case StatusComplete:
		return "complete"
	case StatusMissingContentLength:
		return "missing content length"
	case StatusMalformedContentLength:
		return "malformed content length"
	case StatusUnrecognizedMethod:
		return "unrecognized method"
	case StatusBufferFull:
		return "buffer full"
	default:
		return "unknown"
	}
}

// NeedMore reports whether the caller should read more bytes and feed them.
func (s Status) NeedMore() bool {
	return s == StatusIncompleteHeader || s == StatusIncompleteBody
}

// Fatal reports whether the stream can no longer be framed. Callers are expected
// to abort the connection (or at least [Reassembler.Reset] it).
func (s Status) Fatal() bool {
	switch s {
	case StatusMissingContentLength, StatusMalformedContentLength, StatusBufferFull:
		return true
	default:
		return false
	}
}

// Outcome is the result of one Feed call. Message is only set when Status is
// [StatusComplete].
type Outcome struct {
	Status  Status
	Message Message
}

// Err returns the sentinel error matching the outcome's status, or nil for
// [StatusComplete].
func (o Outcome) Err() error {
	switch o.Status {
	case StatusComplete:
		return nil
	case StatusIncompleteHeader:
		return ErrIncompleteHeader
	case StatusIncompleteBody:
		return ErrIncompleteBody
	case StatusMissingContentLength:
		return ErrMissingContentLength
	case StatusMalformedContentLength:
		return ErrMalformedContentLength
	case StatusUnrecognizedMethod:
		return ErrUnrecognizedMethod
	case StatusBufferFull:
		return ErrBufferFull
	default:
		return ErrUnknownStatus
	}
}

// Option configures a Reassembler.
type Option func(*Reassembler)

// WithMaxBuffered limits the number of bytes the reassembler holds while no complete
// message can be extracted. A limit of zero or less disables the check.
func WithMaxBuffered(n int) Option {
	return func(r *Reassembler) { r.maxBuffered = n }
}

// WithResponseFraming makes the reassembler also frame messages that start with a
// status line ("HTTP/..."), using their Content-Length the same way as for POST.
func WithResponseFraming() Option {
	return func(r *Reassembler) { r.frameResponses = true }
}

// Reassembler turns a stream of arbitrarily sized byte chunks into complete
// messages. It holds the unconsumed tail of the stream for a single connection
// and must not be used from more than one goroutine at a time.
//
// Every Feed searches the buffered bytes for the header terminator, so the cost of
// a call is linear in the buffer size. Once the terminator is known to be absent
// from a prefix that prefix is not searched again.
type Reassembler struct {
	buf            []byte
	scanned        int
	maxBuffered    int
	frameResponses bool
}

// NewReassembler inits an empty reassembler.
func NewReassembler(opts ...Option) *Reassembler {
	r := &Reassembler{buf: make([]byte, 0, 1024)}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Feed appends chunk to the buffer and tries to extract the next complete message.
// On [StatusComplete] the message is removed from the buffer and any bytes that
// follow it stay buffered; feed an empty chunk to extract a pipelined message that
// is already buffered. For all other statuses the buffer keeps every byte.
func (r *Reassembler) Feed(chunk []byte) Outcome {
	r.buf = append(r.buf, chunk...)

	out := r.frame()
	if out.Status.NeedMore() && r.maxBuffered > 0 && len(r.buf) > r.maxBuffered {
		return Outcome{Status: StatusBufferFull}
	}

	return out
}

func (r *Reassembler) frame() Outcome {
	term := r.findTerminator()
	if term < 0 {
		return Outcome{Status: StatusIncompleteHeader}
	}

	headerEnd := term + len(headerTerminator)

	switch {
	case bytes.HasPrefix(r.buf, methodGet):
		return r.consume(headerEnd)
	case bytes.HasPrefix(r.buf, methodPost),
		r.frameResponses && bytes.HasPrefix(r.buf, responsePrefix):
		length, status := contentLength(r.buf[:term])
		if status != StatusComplete {
			return Outcome{Status: status}
		}

		if length > math.MaxInt-headerEnd {
			return Outcome{Status: StatusMalformedContentLength}
		}

		total := headerEnd + length
		if len(r.buf) < total {
			return Outcome{Status: StatusIncompleteBody}
		}

		return r.consume(total)
	default:
		return Outcome{Status: StatusUnrecognizedMethod}
	}
}

// findTerminator returns the offset of the header terminator or -1. The offset up to
// which the terminator is known to be absent is remembered across calls.
func (r *Reassembler) findTerminator() int {
	idx := bytes.Index(r.buf[r.scanned:], headerTerminator)
	if idx < 0 {
		r.scanned = max(0, len(r.buf)-len(headerTerminator)+1)
		return -1
	}

	return r.scanned + idx
}

// consume moves the first n bytes out of the buffer into a new message.
func (r *Reassembler) consume(n int) Outcome {
	msg := make(Message, n)
	copy(msg, r.buf[:n])

	rest := copy(r.buf, r.buf[n:])
	r.buf = r.buf[:rest]
	r.scanned = 0

	return Outcome{Status: StatusComplete, Message: msg}
}

// Buffered returns the number of bytes that have not been consumed yet.
func (r *Reassembler) Buffered() int { return len(r.buf) }

// Pending returns a copy of the bytes that have not been consumed yet.
func (r *Reassembler) Pending() []byte {
	return bytes.Clone(r.buf)
}

// Reset drops all buffered bytes.
func (r *Reassembler) Reset() {
	r.buf = r.buf[:0]
	r.scanned = 0
}

// contentLength finds the Content-Length field in the header block and parses its
// value. Whitespace after the colon is skipped, then digits are read until the first
// non-digit, like atoi.
func contentLength(header []byte) (int, Status) {
	idx := bytes.Index(header, contentLengthKey)
	if idx < 0 {
		return 0, StatusMissingContentLength
	}

	value := header[idx+len(contentLengthKey):]
	if end := bytes.Index(value, crlf); end >= 0 {
		value = value[:end]
	}

	value = bytes.TrimLeft(value, " \t")

	n, digits, ok := parseDigits(value)
	if !ok || digits == 0 {
		return 0, StatusMalformedContentLength
	}

	return n, StatusComplete
}

// parseDigits reads the longest run of leading decimal digits. It reports the
// number of digits read and false when the value overflows an int.
func parseDigits(b []byte) (n, digits int, ok bool) {
	for _, c := range b {
		if c < '0' || c > '9' {
			break
		}

		d := int(c - '0')
		if n > (math.MaxInt-d)/10 {
			return 0, digits, false
		}

		n = n*10 + d
		digits++
	}

	return n, digits, true
}
