package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Log is a no-op until Init is called, so packages can log from tests.
var Log = zerolog.Nop()

func Init(isDev bool) {
	InitWithWriter(isDev, os.Stdout)
}

func InitWithWriter(isDev bool, out io.Writer) {
	zerolog.TimeFieldFormat = time.RFC3339

	if isDev {
		Log = zerolog.New(zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: "15:04:05",
		}).With().Timestamp().Str("service", "ercot-rts").Logger()
	} else {
		Log = zerolog.New(out).With().Timestamp().Str("service", "ercot-rts").Logger()
	}
}

func IsDev() bool {
	env := os.Getenv("ENV")
	return env == "" || env == "dev" || env == "development"
}
