// Package bframe reassembles HTTP/1.1 requests from a raw byte stream and routes them
// to error-returning handlers.
//
// # Overview
//
// A network read rarely lines up with a message boundary. A single read can hold
// half a header block, or the tail of one request followed by the start of the
// next. bframe keeps the unconsumed bytes of one connection in a [Reassembler] and
// hands out complete messages as soon as they are available:
//
//	r := bframe.NewReassembler()
//	for {
//	    n, err := conn.Read(buf)
//	    if err != nil {
//	        return err
//	    }
//
//	    chunk := buf[:n]
//	    for {
//	        out := r.Feed(chunk)
//	        chunk = nil
//	        if out.Status != bframe.StatusComplete {
//	            break
//	        }
//	        handle(out.Message)
//	    }
//	}
//
// The package never reads from or writes to a connection, and it never logs. The
// caller owns the I/O loop and decides what to do with each [Status].
//
// # Framing
//
// A message is complete once the header terminator (CR LF CR LF) has been seen and,
// for POST, once as many body bytes as announced by the Content-Length field are
// buffered. GET requests never carry a body. Feed reports one of:
//
//   - [StatusComplete]: Outcome.Message holds the message, the buffer keeps whatever follows it
//   - [StatusIncompleteHeader], [StatusIncompleteBody]: read more and feed again
//   - [StatusMissingContentLength], [StatusMalformedContentLength]: the stream can no longer be framed
//   - [StatusUnrecognizedMethod]: the buffer does not start with GET or POST
//   - [StatusBufferFull]: the limit set with [WithMaxBuffered] was exceeded
//
// Method and field names are matched exactly and case-sensitively. Chunked
// transfer-encoding is not supported.
//
// # Reading messages
//
// A few helpers work on a single complete message:
//
//	path, err := bframe.GetPath(msg)               // "/path/file.html"
//	name, err := bframe.GetValue[string](msg, "name")
//	age, err := bframe.GetValue[int](msg, "age")
//	user, err := bframe.GetJSON(msg, "user.name")
//
// Field values are not percent-decoded. Numeric conversion stops at the first byte
// that does not fit, so "21abc" reads as 21, but a value without a single digit is
// reported as [ErrMalformedValue].
//
// # Writing responses
//
// [CreateHTTPPacket] serializes a response and always computes its Content-Length
// from the body:
//
//	pkt := bframe.CreateHTTPPacket("200", "OK", "text/html", body)
//
// # Routing
//
// [ServeMux] dispatches complete messages to handlers that write into a buffered
// [Response] and return an error:
//
//	mux := bframe.NewServeMux()
//	mux.HandleFunc("GET /items/{id}", func(ctx context.Context, w *bframe.Response, r *bframe.Request) error {
//	    item, err := db.GetItem(r.PathValue("id"))
//	    if err != nil {
//	        return bframe.NewError(bframe.CodeNotFound, err)
//	    }
//	    _, err = w.WriteString(item.Name)
//	    return err
//	}, "get-item")
//
//	resp := mux.ServeMessage(ctx, out.Message)
//
// When a handler returns an error its buffered output is discarded. An [*Error]
// renders with its [Code], any other error is passed to the [Logger] and renders as
// 500 Internal Server Error.
//
// Middleware wraps handlers, the first one registered with [ServeMux.Use] is the
// outermost. Named routes can be turned back into paths with [ServeMux.Reverse].
package bframe
