// Package logging provides the structured console logger used by every command.
package logging

import (
	"io"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog with the CLI's console formatting.
type Logger struct {
	zlog zerolog.Logger
}

// NewLogger creates a console logger writing to w at info level.
func NewLogger(w io.Writer) *Logger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
	}
	return &Logger{
		zlog: zerolog.New(output).With().Timestamp().Logger().Level(zerolog.InfoLevel),
	}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zlog: zerolog.Nop()}
}

// SetVerbose switches between debug and info level.
func (l *Logger) SetVerbose(verbose bool) {
	if verbose {
		l.zlog = l.zlog.Level(zerolog.DebugLevel)
	} else {
		l.zlog = l.zlog.Level(zerolog.InfoLevel)
	}
}

// Info returns an info level event.
func (l *Logger) Info() *zerolog.Event {
	return l.zlog.Info()
}

// Error returns an error level event.
func (l *Logger) Error() *zerolog.Event {
	return l.zlog.Error()
}

// Debug returns a debug level event.
func (l *Logger) Debug() *zerolog.Event {
	return l.zlog.Debug()
}

// Warn returns a warn level event.
func (l *Logger) Warn() *zerolog.Event {
	return l.zlog.Warn()
}
