package bfsrv

import (
	"time"

	"go.uber.org/zap/zapcore"
)

type testEnv struct {
	level   zapcore.Level
	otelExp string
}

func (e testEnv) port() int                     { return 0 }
func (e testEnv) serviceName() string           { return "test" }
func (e testEnv) logLevel() zapcore.Level       { return e.level }
func (e testEnv) otelExporter() string          { return e.otelExp }
func (e testEnv) maxConnections() int           { return 0 }
func (e testEnv) maxBufferedBytes() int         { return 1024 }
func (e testEnv) readChunkSize() int            { return 16 }
func (e testEnv) idleTimeout() time.Duration    { return time.Second }
func (e testEnv) requestTimeout() time.Duration { return 0 }
