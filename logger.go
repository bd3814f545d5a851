package bframe

import (
	"log"
	"sync/atomic"
	"testing"
)

// Logger can be implemented to get informed about important states.
type Logger interface {
	LogUnhandledServeError(err error)
	LogMalformedRequest(err error)
}

type stdLogger struct{ *log.Logger }

func (l stdLogger) LogUnhandledServeError(err error) {
	l.Logger.Printf("bframe: unhandled serve error: %s", err)
}

func (l stdLogger) LogMalformedRequest(err error) {
	l.Logger.Printf("bframe: malformed request: %s", err)
}

// NewStdLogger adapts a standard library logger. A nil logger uses log.Default().
func NewStdLogger(l *log.Logger) Logger {
	if l == nil {
		l = log.Default()
	}

	return stdLogger{l}
}

// TestLogger logs to a testing.TB and counts the calls.
type TestLogger struct {
	tb testing.TB

	NumLogUnhandledServeError int64
	NumLogMalformedRequest    int64
}

func NewTestLogger(tb testing.TB) *TestLogger {
	return &TestLogger{tb: tb}
}

func (l *TestLogger) LogUnhandledServeError(err error) {
	atomic.AddInt64(&l.NumLogUnhandledServeError, 1)
	l.tb.Logf("bframe: unhandled serve error: %s", err)
}

func (l *TestLogger) LogMalformedRequest(err error) {
	atomic.AddInt64(&l.NumLogMalformedRequest, 1)
	l.tb.Logf("bframe: malformed request: %s", err)
}

var _ Logger = &TestLogger{}
