package bfsrv

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap/zapcore"
)

// Environment defines the interface that all environment configurations must implement.
// Embed BaseEnvironment in your struct to satisfy this interface.
type Environment interface {
	port() int
	serviceName() string
	logLevel() zapcore.Level
	otelExporter() string
	maxConnections() int
	maxBufferedBytes() int
	readChunkSize() int
	idleTimeout() time.Duration
	requestTimeout() time.Duration
}

// BaseEnvironment contains the environment variables every server reads.
// Embed this in your custom environment struct.
type BaseEnvironment struct {
	Port         int           `env:"BF_PORT,required"`
	ServiceName  string        `env:"BF_SERVICE_NAME" envDefault:"bframe"`
	LogLevel     zapcore.Level `env:"BF_LOG_LEVEL" envDefault:"info"`
	OtelExporter string        `env:"BF_OTEL_EXPORTER" envDefault:"stdout"`
	// MaxConnections caps the number of connections served at the same time. Zero
	// means no limit.
	MaxConnections int `env:"BF_MAX_CONNECTIONS" envDefault:"0"`
	// MaxBufferedBytes is the number of bytes a single connection may hold while
	// no complete message can be extracted.
	MaxBufferedBytes int           `env:"BF_MAX_BUFFERED_BYTES" envDefault:"1048576"`
	ReadChunkSize    int           `env:"BF_READ_CHUNK_SIZE" envDefault:"4096"`
	IdleTimeout      time.Duration `env:"BF_IDLE_TIMEOUT" envDefault:"60s"`
	RequestTimeout   time.Duration `env:"BF_REQUEST_TIMEOUT" envDefault:"30s"`
}

func (e BaseEnvironment) port() int {
	return e.Port
}

func (e BaseEnvironment) serviceName() string {
	return e.ServiceName
}

func (e BaseEnvironment) logLevel() zapcore.Level {
	return e.LogLevel
}

func (e BaseEnvironment) otelExporter() string {
	return e.OtelExporter
}

func (e BaseEnvironment) maxConnections() int {
	return e.MaxConnections
}

func (e BaseEnvironment) maxBufferedBytes() int {
	return e.MaxBufferedBytes
}

func (e BaseEnvironment) readChunkSize() int {
	return e.ReadChunkSize
}

func (e BaseEnvironment) idleTimeout() time.Duration {
	return e.IdleTimeout
}

func (e BaseEnvironment) requestTimeout() time.Duration {
	return e.RequestTimeout
}

var _ Environment = BaseEnvironment{}

// ParseEnv parses environment variables into the given Environment type.
func ParseEnv[E Environment]() func() (E, error) {
	return func() (e E, err error) {
		if err := env.Parse(&e); err != nil {
			return e, errors.Wrap(err, "failed to parse environment")
		}

		if err := validateEnv(e); err != nil {
			return e, errors.Wrap(err, "invalid environment")
		}

		return e, nil
	}
}

func validateEnv(e Environment) error {
	switch {
	case e.port() < 0 || e.port() > 65535:
		return errors.Newf("BF_PORT out of range: %d", e.port())
	case e.readChunkSize() <= 0:
		return errors.Newf("BF_READ_CHUNK_SIZE must be positive, got: %d", e.readChunkSize())
	case e.maxConnections() < 0:
		return errors.Newf("BF_MAX_CONNECTIONS must not be negative, got: %d", e.maxConnections())
	case e.maxBufferedBytes() < 0:
		return errors.Newf("BF_MAX_BUFFERED_BYTES must not be negative, got: %d", e.maxBufferedBytes())
	}

	return nil
}
