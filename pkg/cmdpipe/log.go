package cmdpipe

import (
	"os"

	"github.com/rs/zerolog"
)

// Package-level logger, console-writer to stderr the way bgpipe.Bgpipe wires
// its own zerolog.Logger in core/bgpipe.go. cmdpipe is a library, not a
// daemon, so there is a single shared logger rather than one per Group — but
// the level is still driven by the same CMD_LIB_DEBUG flag the executor
// reads before every spawn.
var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true}).With().Timestamp().Logger()

func init() {
	log = log.Level(zerolog.InfoLevel)
}

// debugEnabled reports whether CMD_LIB_DEBUG is set to "1". Read fresh on
// every call, matching the original's per-invocation std::env::var check
// rather than caching the value at process start.
func debugEnabled() bool {
	return os.Getenv("CMD_LIB_DEBUG") == "1"
}

// pipefailEnabled reports whether CMD_LIB_PIPEFAIL is anything other than
// "0". Pipefail is on by default.
func pipefailEnabled() bool {
	return os.Getenv("CMD_LIB_PIPEFAIL") != "0"
}

// SetDebug is the programmatic equivalent of CMD_LIB_DEBUG=1|0, for hosts
// that prefer not to touch the process environment directly.
func SetDebug(enable bool) {
	if enable {
		os.Setenv("CMD_LIB_DEBUG", "1")
		log = log.Level(zerolog.DebugLevel)
	} else {
		os.Setenv("CMD_LIB_DEBUG", "0")
		log = log.Level(zerolog.InfoLevel)
	}
}

// SetPipefail is the programmatic equivalent of CMD_LIB_PIPEFAIL=1|0.
func SetPipefail(enable bool) {
	if enable {
		os.Setenv("CMD_LIB_PIPEFAIL", "1")
	} else {
		os.Setenv("CMD_LIB_PIPEFAIL", "0")
	}
}

// logStderrLines writes each line of buffered stderr output at info level,
// one event per line, matching the original's log_stderr_output.
func logStderrLines(debug string, data []byte) {
	if len(data) == 0 {
		return
	}
	for _, line := range splitLines(data) {
		log.Info().Str("stage", debug).Msg(line)
	}
}

// splitLines splits data on '\n', dropping a single trailing empty segment
// produced by a final newline (bufio.Scanner-equivalent behavior without
// pulling in a Reader for an already-fully-buffered slice).
func splitLines(data []byte) []string {
	s := string(data)
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
