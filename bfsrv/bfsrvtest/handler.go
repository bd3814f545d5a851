package bfsrvtest

import (
	"context"
	"io"

	"github.com/advdv/bframe"
)

// CallHandler invokes a [bframe.HandlerFunc] with the request derived from msg and
// returns the buffered response. It panics when msg has no path or the handler
// returns an error. Path values are not available since no routing takes place.
func CallHandler(ctx context.Context, handler bframe.HandlerFunc, msg string) *bframe.Response {
	req, err := bframe.NewRequest(bframe.Message(msg))
	if err != nil {
		panic("bfsrvtest: invalid message: " + err.Error())
	}

	w := bframe.NewResponse(-1)
	if err := handler(ctx, w, req); err != nil {
		panic("bfsrvtest: handler returned error: " + err.Error())
	}

	return w
}

// Reader reads complete response packets from a connection.
type Reader struct {
	conn io.Reader
	r    *bframe.Reassembler
	buf  []byte
}

// NewReader creates a reader for responses sent over conn.
func NewReader(conn io.Reader) *Reader {
	return &Reader{
		conn: conn,
		r:    bframe.NewReassembler(bframe.WithResponseFraming()),
		buf:  make([]byte, 512),
	}
}

// Next returns the next complete response. Bytes that follow it stay buffered for the
// next call.
func (rd *Reader) Next() (bframe.Message, error) {
	var chunk []byte
	for {
		out := rd.r.Feed(chunk)
		if out.Status == bframe.StatusComplete {
			return out.Message, nil
		}

		if !out.Status.NeedMore() {
			return nil, out.Err()
		}

		n, err := rd.conn.Read(rd.buf)
		if err != nil {
			return nil, err
		}

		chunk = rd.buf[:n]
	}
}
