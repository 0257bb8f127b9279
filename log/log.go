package log

import (
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/xeptore/spotgram/config"
	"github.com/xeptore/spotgram/constant"
)

func FromConfig(conf config.Log) zerolog.Logger {
	level, err := zerolog.ParseLevel(conf.Level)
	if nil != err {
		panic("invalid logging level: " + conf.Level)
	}

	switch format := strings.ToLower(conf.Format); format {
	case "json":
		return newJSON().Level(level)
	case "pretty":
		return newPretty().Level(level)
	case "auto":
		if isatty.IsTerminal(os.Stderr.Fd()) {
			return newPretty().Level(level)
		}

		return newJSON().Level(level)
	default:
		panic("invalid logging format: " + conf.Format)
	}
}

func NewDefault() zerolog.Logger {
	return newPretty().Level(zerolog.InfoLevel)
}

func newJSON() zerolog.Logger {
	return zerolog.
		New(os.Stderr).
		Hook(&stackHook{}).
		With().
		Timestamp().
		Str("version", constant.Version).
		Str("compile_time", constant.CompileTime).
		Logger()
}

func newPretty() zerolog.Logger {
	return zerolog.
		New(zerolog.ConsoleWriter{ //nolint:exhaustruct
			Out:          os.Stderr,
			TimeFormat:   time.RFC3339,
			TimeLocation: time.UTC,
		}).
		Hook(&stackHook{}).
		With().
		Timestamp().
		Str("version", constant.Version).
		Str("compile_time", constant.CompileTime).
		Logger()
}
