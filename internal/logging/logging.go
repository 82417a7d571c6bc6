// Package logging builds the console logger used by the turf commands.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// Options controls the console logger.
type Options struct {
	Debug bool
	Quiet bool
	// Color forces colored levels even when stderr is not a terminal.
	Color bool
}

// New returns a console logger writing to stderr. Debug enables debug
// level; Quiet drops everything below errors.
func New(opts Options) *zap.Logger {
	return NewWithSink(opts, zapcore.Lock(os.Stderr), opts.Color || term.IsTerminal(int(os.Stderr.Fd())))
}

// NewWithSink is New with an explicit destination.
func NewWithSink(opts Options, sink zapcore.WriteSyncer, color bool) *zap.Logger {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	ec.TimeKey = zapcore.OmitKey
	if color {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	level := zapcore.InfoLevel
	switch {
	case opts.Quiet:
		level = zapcore.ErrorLevel
	case opts.Debug:
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(ec), sink, zap.NewAtomicLevelAt(level))
	return zap.New(core).Named("turf")
}
