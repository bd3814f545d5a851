package bfsrv

import (
	"bytes"
	"context"
	"io"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/advdv/bframe"
	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/net/netutil"
)

// ErrServerClosed is returned by [Server.Serve] after [Server.Shutdown] was called.
var ErrServerClosed = errors.New("bfsrv: server closed")

// ServerParams holds the dependencies for creating a server.
type ServerParams struct {
	fx.In

	Env        Environment
	Mux        *Mux
	Logger     *zap.Logger
	TracerProv trace.TracerProvider
	Propagator propagation.TextMapPropagator
}

// Server accepts TCP connections and serves the messages reassembled from each of
// them. Every connection is served by its own goroutine which exclusively owns the
// connection's [bframe.Reassembler].
type Server struct {
	addr        string
	mux         *Mux
	logs        *zap.Logger
	tracer      trace.Tracer
	prop        propagation.TextMapPropagator
	maxConns    int
	maxBuffered int
	chunkSize   int
	idleTimeout time.Duration

	baseCtx context.Context
	cancel  context.CancelFunc

	mu      sync.Mutex
	ln      net.Listener
	conns   map[net.Conn]struct{}
	closing bool
	wg      sync.WaitGroup
}

// NewServer creates a server with all middleware configured. Routes must be added to
// the mux after this.
func NewServer(params ServerParams) *Server {
	d := &requestDep{
		logger: params.Logger,
	}

	logs := params.Logger.Named("server")

	params.Mux.Use(withRecover(logs))
	params.Mux.Use(withRequestDep(d))
	params.Mux.Use(WithRequestTimeout(params.Env.requestTimeout()))

	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		addr:        net.JoinHostPort("", strconv.Itoa(params.Env.port())),
		mux:         params.Mux,
		logs:        logs,
		tracer:      params.TracerProv.Tracer("github.com/advdv/bframe/bfsrv"),
		prop:        params.Propagator,
		maxConns:    params.Env.maxConnections(),
		maxBuffered: params.Env.maxBufferedBytes(),
		chunkSize:   params.Env.readChunkSize(),
		idleTimeout: params.Env.idleTimeout(),
		baseCtx:     ctx,
		cancel:      cancel,
		conns:       map[net.Conn]struct{}{},
	}
}

// Listen binds the listening socket. With BF_PORT=0 the system picks a free port,
// use [Server.Addr] to find out which.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %q", s.addr)
	}

	if s.maxConns > 0 {
		ln = netutil.LimitListener(ln, s.maxConns)
	}

	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	return nil
}

// Addr returns the address the server listens on, or nil before [Server.Listen].
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ln == nil {
		return nil
	}

	return s.ln.Addr()
}

// Serve accepts connections until the listener is closed. It always returns a
// non-nil error, [ErrServerClosed] after a shutdown.
func (s *Server) Serve() error {
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()

	if ln == nil {
		return errors.New("bfsrv: Serve called before Listen")
	}

	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.isClosing() {
				return ErrServerClosed
			}

			var nerr net.Error
			if errors.As(err, &nerr) && nerr.Timeout() {
				continue
			}

			return errors.Wrap(err, "failed to accept")
		}

		if !s.track(conn) {
			conn.Close()
			return ErrServerClosed
		}

		go s.serveConn(conn)
	}
}

// Shutdown closes the listener and every open connection, then waits for the
// connection goroutines to return or for ctx to be done.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closing = true

	var lnErr error
	if s.ln != nil {
		lnErr = s.ln.Close()
	}

	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "failed to wait for connections")
	}

	if lnErr != nil && !errors.Is(lnErr, net.ErrClosed) {
		return errors.Wrap(lnErr, "failed to close listener")
	}

	return nil
}

func (s *Server) isClosing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closing
}

func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closing {
		return false
	}

	s.conns[conn] = struct{}{}
	s.wg.Add(1)

	return true
}

func (s *Server) forget(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

func (s *Server) serveConn(conn net.Conn) {
	defer s.wg.Done()
	defer s.forget(conn)
	defer conn.Close()

	logs := s.logs.With(zap.Stringer("remote_addr", conn.RemoteAddr()))
	logs.Debug("accepted connection")

	r := bframe.NewReassembler(bframe.WithMaxBuffered(s.maxBuffered))
	buf := make([]byte, s.chunkSize)

	for {
		if s.idleTimeout > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(s.idleTimeout)); err != nil {
				logs.Debug("failed to set read deadline", zap.Error(err))
				return
			}
		}

		n, err := conn.Read(buf)
		if n > 0 && !s.drain(conn, r, buf[:n], logs) {
			return
		}

		if err != nil {
			var nerr net.Error
			switch {
			case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
				logs.Debug("connection closed", zap.Int("buffered", r.Buffered()))
			case errors.As(err, &nerr) && nerr.Timeout():
				logs.Debug("connection idle timeout", zap.Duration("idle_timeout", s.idleTimeout))
			default:
				logs.Info("failed to read", zap.Error(err))
			}

			return
		}
	}
}

// drain feeds the chunk and serves every message that is complete afterwards. It
// reports false when the connection must be closed.
func (s *Server) drain(conn net.Conn, r *bframe.Reassembler, chunk []byte, logs *zap.Logger) bool {
	out := r.Feed(chunk)
	for out.Status == bframe.StatusComplete {
		if err := s.serveMessage(conn, out.Message); err != nil {
			logs.Info("failed to write response", zap.Error(err))
			return false
		}

		out = r.Feed(nil)
	}

	if out.Status.NeedMore() {
		return true
	}

	code := rejectCode(out.Status)
	logs.Info("rejecting stream",
		zap.Stringer("status", out.Status),
		zap.Int("code", int(code)),
		zap.Int("buffered", r.Buffered()))

	if _, err := conn.Write(bframe.NewPacket(code, bframe.DefaultContentType, []byte(code.Reason()))); err != nil {
		logs.Info("failed to write rejection", zap.Error(err))
	}

	return false
}

// rejectCode returns the status code a stream that cannot be framed is answered with.
func rejectCode(st bframe.Status) bframe.Code {
	switch st {
	case bframe.StatusMissingContentLength:
		return bframe.CodeLengthRequired
	case bframe.StatusMalformedContentLength:
		return bframe.CodeBadRequest
	case bframe.StatusUnrecognizedMethod:
		return bframe.CodeNotImplemented
	case bframe.StatusBufferFull:
		return bframe.CodeRequestEntityTooLarge
	default:
		return bframe.CodeInternalServerError
	}
}

func (s *Server) serveMessage(conn net.Conn, msg bframe.Message) error {
	ctx := s.prop.Extract(s.baseCtx, newHeaderCarrier(msg))

	method := msg.Method()
	path, _ := msg.Path()

	ctx, span := s.tracer.Start(ctx, method+" "+path,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			semconv.HTTPRequestMethodKey.String(method),
			semconv.URLPath(path),
			semconv.HTTPRequestBodySize(len(msg.Body())),
		))
	defer span.End()

	resp := s.mux.ServeMessage(ctx, msg)
	if code, ok := statusCode(resp); ok {
		span.SetAttributes(semconv.HTTPResponseStatusCode(code))
		if code >= 500 {
			span.SetStatus(codes.Error, bframe.Code(code).Reason())
		}
	}

	if _, err := conn.Write(resp); err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "write")
	}

	return nil
}

// statusCode reads the code from the status line of a serialized response.
func statusCode(pkt bframe.Message) (int, bool) {
	fields := bytes.SplitN(pkt, []byte(" "), 3)
	if len(fields) < 3 {
		return 0, false
	}

	code, err := strconv.Atoi(string(fields[1]))
	if err != nil {
		return 0, false
	}

	return code, true
}

// withRecover turns a panicking handler into a 500 response.
func withRecover(logs *zap.Logger) bframe.Middleware {
	return func(next bframe.Handler) bframe.Handler {
		return bframe.HandlerFunc(func(ctx context.Context, w *bframe.Response, r *bframe.Request) (err error) {
			defer func() {
				if v := recover(); v != nil {
					logs.Error("handler panicked", zap.Any("panic", v), zap.String("path", r.Path))
					err = bframe.NewError(bframe.CodeInternalServerError, errors.Newf("panic: %v", v))
				}
			}()

			return next.ServeFrame(ctx, w, r)
		})
	}
}

// startServerHook registers lifecycle hooks for the server.
func startServerHook(lc fx.Lifecycle, server *Server, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if err := server.Listen(); err != nil {
				return err
			}

			logger.Info("starting server", zap.Stringer("addr", server.Addr()))

			go func() {
				if err := server.Serve(); err != nil && !errors.Is(err, ErrServerClosed) {
					logger.Error("server error", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping server")
			return server.Shutdown(ctx)
		},
	})
}
