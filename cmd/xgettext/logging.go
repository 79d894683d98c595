package main

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/wvell/xgettext"
)

// setupLogging routes all logs to stderr. Colors are only used on a terminal.
func setupLogging(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	log.Logger = log.Output(consoleWriter(os.Stderr))
	xgettext.Logger = log.With().Str("sys", "xgettext").Logger()
}

// consoleWriter returns a writer for zerolog that has NoColor:!isTerminal(f).
func consoleWriter(f *os.File) io.Writer {
	noColor := !isatty.IsTerminal(f.Fd())

	return zerolog.ConsoleWriter{Out: f, NoColor: noColor, TimeFormat: time.DateTime}
}
