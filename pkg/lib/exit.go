package lib

import (
	"os"

	"github.com/rs/zerolog"
)

var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true}).With().Timestamp().Logger()

// Exit logs err at fatal level and terminates the process with code 1. A
// zerolog Fatal call already calls os.Exit(1) after writing the event, so
// there is nothing left for this function to do once Msg returns.
func Exit(err error) {
	log.Fatal().Err(err).Msg("fatal error")
}
