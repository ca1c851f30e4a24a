package logger

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorPurple = "\033[35m"
	colorCyan   = "\033[36m"
)

var statusCodeRegex = regexp.MustCompile(`^[2-5]\d{2}$`)

// Init configures the global zerolog logger for the given environment.
// Development gets debug level, everything else info level.
func Init(env string) {
	useColor := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

	colorize := func(color, s string) string {
		if !useColor {
			return s
		}
		return color + s + colorReset
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "02.01.2006 15:04:05",
		NoColor:    !useColor,
		FormatLevel: func(i interface{}) string {
			level := strings.ToUpper(fmt.Sprintf("%s", i))
			switch level {
			case "INFO":
				return colorize(colorBlue, "●")
			case "WARN":
				return colorize(colorYellow, "●")
			case "ERROR":
				return colorize(colorRed, "●")
			default:
				return level
			}
		},
		FormatFieldName: func(i interface{}) string {
			return colorize(colorCyan, fmt.Sprintf("%s", i)) + "="
		},
		FormatFieldValue: func(i interface{}) string {
			val := fmt.Sprintf("%s", i)

			switch val {
			case "GET", "POST", "PUT", "DELETE", "PATCH":
				return colorize(colorPurple, val)
			}

			if statusCodeRegex.MatchString(val) {
				switch val[0] {
				case '2':
					return colorize(colorGreen, val)
				case '3':
					return colorize(colorYellow, val)
				case '4', '5':
					return colorize(colorRed, val)
				}
			}

			return val
		},
	}

	log.Logger = zerolog.New(output).
		With().
		Timestamp().
		Str("env", env).
		Logger()

	switch env {
	case "development":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
