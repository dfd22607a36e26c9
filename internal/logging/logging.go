// Package logging provides the zerolog setup shared by a Partfile's
// lifecycle event emission. It exists only so Options has a sane, silent
// default; callers who want output set Options.Logger themselves.
package logging

import (
	"io"

	"github.com/rs/zerolog"
)

// Nop returns a logger that discards everything, matching the rest of the
// corpus's convention of giving embeddable components an opt-in logger
// rather than writing to stdout/stderr by default.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

// New builds a console-friendly logger writing to w, for callers that do
// want to see lifecycle events and warnings as they happen.
func New(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}
