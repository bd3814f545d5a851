package bfsrvtest

import (
	"strconv"
	"testing"
	"time"
)

// Env provides a chainable builder for setting [bfsrv.BaseEnvironment] env vars
// via t.Setenv. Create one with [SetBaseEnv].
type Env struct {
	t testing.TB
}

// SetBaseEnv sets all [bfsrv.BaseEnvironment] env vars to test defaults.
//
// Defaults:
//   - BF_PORT: "0", so every app gets a free port
//   - BF_SERVICE_NAME: "test"
//   - BF_OTEL_EXPORTER: "none"
//   - BF_LOG_LEVEL: "error"
//
// Use the returned [Env] to override individual values:
//
//	bfsrvtest.SetBaseEnv(t).MaxBufferedBytes(64).IdleTimeout(100 * time.Millisecond)
func SetBaseEnv(t testing.TB) *Env {
	t.Helper()
	t.Setenv("BF_PORT", "0")
	t.Setenv("BF_SERVICE_NAME", "test")
	t.Setenv("BF_OTEL_EXPORTER", "none")
	t.Setenv("BF_LOG_LEVEL", "error")

	return &Env{t: t}
}

// ServiceName overrides BF_SERVICE_NAME.
func (e *Env) ServiceName(name string) *Env {
	e.t.Helper()
	e.t.Setenv("BF_SERVICE_NAME", name)

	return e
}

// MaxConnections overrides BF_MAX_CONNECTIONS.
func (e *Env) MaxConnections(n int) *Env {
	e.t.Helper()
	e.t.Setenv("BF_MAX_CONNECTIONS", strconv.Itoa(n))

	return e
}

// MaxBufferedBytes overrides BF_MAX_BUFFERED_BYTES.
func (e *Env) MaxBufferedBytes(n int) *Env {
	e.t.Helper()
	e.t.Setenv("BF_MAX_BUFFERED_BYTES", strconv.Itoa(n))

	return e
}

// ReadChunkSize overrides BF_READ_CHUNK_SIZE.
func (e *Env) ReadChunkSize(n int) *Env {
	e.t.Helper()
	e.t.Setenv("BF_READ_CHUNK_SIZE", strconv.Itoa(n))

	return e
}

// IdleTimeout overrides BF_IDLE_TIMEOUT.
func (e *Env) IdleTimeout(d time.Duration) *Env {
	e.t.Helper()
	e.t.Setenv("BF_IDLE_TIMEOUT", d.String())

	return e
}

// RequestTimeout overrides BF_REQUEST_TIMEOUT.
func (e *Env) RequestTimeout(d time.Duration) *Env {
	e.t.Helper()
	e.t.Setenv("BF_REQUEST_TIMEOUT", d.String())

	return e
}
