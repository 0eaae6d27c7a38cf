package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger. It is usable before Init with logrus defaults.
var Log = logrus.New()

// Init configures the global logger from the environment.
// Call it once at startup from main.
func Init() {
	configure(Log, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"), os.Stdout)
}

func configure(l *logrus.Logger, levelName, format string, out io.Writer) {
	// LOG_LEVEL defaults to info; debug is useful for local work.
	level, err := logrus.ParseLevel(levelName)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	// json for collected logs, text for a terminal
	if strings.ToLower(format) == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
	l.SetOutput(out)
}

// Silence discards all output. Tests use it to keep runs quiet.
func Silence() {
	Log.SetOutput(io.Discard)
}
