package bfsrv

import (
	"github.com/advdv/bframe"
	"go.uber.org/zap"
)

// MaxResponseBodyBytes limits how much a single handler can write.
const MaxResponseBodyBytes = 4 * 1024 * 1024

// Mux is an alias for bframe.ServeMux.
type Mux = bframe.ServeMux

// NewMux creates a new Mux that reports unhandled errors to the zap logger.
func NewMux(logs *zap.Logger) *Mux {
	return bframe.NewServeMuxWith(
		MaxResponseBodyBytes,
		newZapFrameLogger(logs),
		bframe.NewReverser(),
	)
}
