// Package bfsrv serves [bframe] handlers over plain TCP connections.
//
// # Overview
//
// bfsrv owns the I/O loop that the bframe core leaves to its caller: it accepts
// connections, reads them in fixed-size chunks, feeds every chunk to a per-connection
// [bframe.Reassembler] and writes back the response of every complete message. It
// also handles the boilerplate around it: environment parsing, structured logging,
// OpenTelemetry tracing and graceful shutdown. A complete application is created in
// a single call:
//
//	bfsrv.NewApp[Env](func(m *bfsrv.Mux, h *Handlers) {
//	    m.HandleFunc("GET /items/{id}", h.GetItem, "get-item")
//	    m.HandleFunc("POST /items", h.CreateItem)
//	},
//	    bfsrv.WithFx(fx.Provide(NewHandlers)),
//	).Run()
//
// # Environment Configuration
//
// Define your environment by embedding [BaseEnvironment]:
//
//	type Env struct {
//	    bfsrv.BaseEnvironment
//	    Greeting string `env:"GREETING" envDefault:"hello"`
//	}
//
// BaseEnvironment provides the following environment variables:
//
//	| Variable              | Required | Default | Description                                      |
//	|-----------------------|----------|---------|--------------------------------------------------|
//	| BF_PORT               | Yes      | -       | TCP port to listen on, 0 picks a free port       |
//	| BF_SERVICE_NAME       | No       | bframe  | Service name for logging and tracing             |
//	| BF_LOG_LEVEL          | No       | info    | Log level (debug, info, warn, error)             |
//	| BF_OTEL_EXPORTER      | No       | stdout  | Trace exporter: "stdout" or "none"               |
//	| BF_MAX_CONNECTIONS    | No       | 0       | Connections served at the same time, 0 is no cap |
//	| BF_MAX_BUFFERED_BYTES | No       | 1048576 | Bytes buffered per connection without a message  |
//	| BF_READ_CHUNK_SIZE    | No       | 4096    | Bytes read from a connection at once             |
//	| BF_IDLE_TIMEOUT       | No       | 60s     | Connection is closed after this long without data|
//	| BF_REQUEST_TIMEOUT    | No       | 30s     | Deadline of the context passed to handlers       |
//
// # Connection handling
//
// Messages that arrive on one connection are served in order, a pipelined message is
// only served after the response to the one before it was written. When the stream
// can no longer be framed the server answers once and closes the connection:
//
//   - POST without Content-Length: 411 Length Required
//   - Content-Length without a usable value: 400 Bad Request
//   - a method other than GET or POST: 501 Not Implemented
//   - more than BF_MAX_BUFFERED_BYTES without a complete message: 413 Request Entity Too Large
//
// # Runtime
//
// [Runtime] provides access to app-scoped dependencies and should be injected into
// handler constructors via fx:
//
//   - [Runtime.Env] returns the typed environment configuration
//   - [Runtime.Reverse] generates paths for named routes
//   - [Runtime.NewRequest] returns an outbound HTTP request builder with tracing
//
// # Context
//
// Handlers receive a context that carries request-scoped values:
//
//	func (h *Handlers) GetItem(ctx context.Context, w *bframe.Response, r *bframe.Request) error {
//	    bfsrv.Log(ctx).Info("fetching item")
//	    bfsrv.Span(ctx).AddEvent("fetching item")
//	    // ...
//	}
//
// Every message is served in its own span. A W3C traceparent header on the message
// makes that span a child of the caller's trace, and [Log] adds the trace and span id
// to every entry.
//
// # Testing
//
// The companion bfsrvtest package builds the identical dependency graph on top of
// [go.uber.org/fx/fxtest]:
//
//	bfsrvtest.SetBaseEnv(t)
//	app := bfsrvtest.New[Env](t, routing, bfsrv.WithFx(fx.Provide(NewHandlers)))
//	app.RequireStart()
//	t.Cleanup(app.RequireStop)
//
// Use [WithLogger] to call handlers that use [Log] directly.
package bfsrv
