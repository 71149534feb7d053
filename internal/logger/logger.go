package logger

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog with a fixed component tag so log lines can be traced
// back to the subsystem that emitted them.
type Logger struct {
	*zerolog.Logger
	component string
}

var levelNames = map[string]zerolog.Level{
	"debug": zerolog.DebugLevel,
	"info":  zerolog.InfoLevel,
	"warn":  zerolog.WarnLevel,
	"error": zerolog.ErrorLevel,
}

// New creates a logger for a component using the LOG_LEVEL env var.
func New(component string) *Logger {
	return NewWithLevel(component, os.Getenv("LOG_LEVEL"))
}

// NewWithLevel creates a logger for a component at an explicit level.
func NewWithLevel(component, level string) *Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "2006-01-02 15:04:05",
		FormatMessage: func(i interface{}) string {
			return fmt.Sprintf("[%s] %s", component, i)
		},
	}

	l := zerolog.New(output).
		Level(parseLevel(level)).
		With().
		Timestamp().
		Logger()

	return &Logger{Logger: &l, component: component}
}

func parseLevel(level string) zerolog.Level {
	if lvl, ok := levelNames[strings.ToLower(level)]; ok {
		return lvl
	}
	return zerolog.InfoLevel
}

// Component returns the tag this logger was created with.
func (l *Logger) Component() string { return l.component }

func (l *Logger) Infof(format string, v ...interface{})  { l.Info().Msgf(format, v...) }
func (l *Logger) Warnf(format string, v ...interface{})  { l.Warn().Msgf(format, v...) }
func (l *Logger) Debugf(format string, v ...interface{}) { l.Debug().Msgf(format, v...) }

func (l *Logger) Errorf(err error, format string, v ...interface{}) {
	l.Error().Err(err).Msgf(format, v...)
}
