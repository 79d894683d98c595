package xgettext

import (
	"errors"

	"github.com/rs/zerolog"
)

// Logger is the logger used by package xgettext. It discards everything until set.
var Logger = zerolog.Nop()

// logDiagnostic logs a rejected call. Syntax problems are warnings, non-literal
// arguments are expected in real code and only show up at debug level.
func logDiagnostic(err error) {
	var callErr *CallError
	if !errors.As(err, &callErr) {
		Logger.Warn().Err(err).Msg("Skipped call")
		return
	}

	event := Logger.Debug()
	if errors.Is(err, ErrSyntax) {
		event = Logger.Warn()
	}

	event.
		Str("file", callErr.File).
		Int("line", callErr.Line).
		Str("marker", callErr.Marker).
		Str("detail", callErr.Detail).
		Msg(callErr.Err.Error())
}
