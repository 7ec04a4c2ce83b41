// Package logging constructs the console logger shared by the CLI and the
// resolution pipeline.
package logging

import (
	"io"

	"github.com/rs/zerolog"
)

// New builds a console logger writing to out. Verbose enables debug
// events; quiet disables output entirely.
func New(out io.Writer, quiet, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	switch {
	case quiet:
		level = zerolog.Disabled
	case verbose:
		level = zerolog.DebugLevel
	}

	writer := zerolog.ConsoleWriter{Out: out}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}
