// Package log provides the named, leveled loggers used throughout gscene.
package log

import (
	"io"
	"os"

	"github.com/op/go-logging"
)

// Level is the verbosity threshold of all loggers.
type Level logging.Level

// Levels accepted by SetLevel, from most to least verbose.
const (
	Debug Level = iota
	Info
	Notice
	Warning
	Error
)

// format is used when the sink is a terminal.
var format = logging.MustStringFormatter(
	`%{color}[%{time:15:04:05.000}] [%{module}] [%{level}]%{color:reset} %{message}`,
)

// plainFormat is used for sinks that are not terminals.
var plainFormat = logging.MustStringFormatter(
	`[%{module}] [%{level}] %{message}`,
)

// leveledBackend receives the records of every logger. SetSink replaces it.
var leveledBackend logging.LeveledBackend

// activeLevel is reapplied by SetSink.
var activeLevel = Notice

// Logger is implemented by all loggers returned by New.
type Logger interface {
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})

	Notice(v ...interface{})
	Noticef(format string, v ...interface{})

	Info(v ...interface{})
	Infof(format string, v ...interface{})

	Warning(v ...interface{})
	Warningf(format string, v ...interface{})

	Error(v ...interface{})
	Errorf(format string, v ...interface{})
}

// New creates a new named logger.
func New(name string) Logger {
	return logging.MustGetLogger(name)
}

// SetSink overrides the backend output sink. Sinks other than os.Stdout and
// os.Stderr receive uncolored output.
func SetSink(sink io.Writer) {
	f := plainFormat
	if sink == os.Stdout || sink == os.Stderr {
		f = format
	}
	backend := logging.NewLogBackend(sink, "", 0)
	backendWithFormatter := logging.NewBackendFormatter(backend, f)
	leveledBackend = logging.AddModuleLevel(backendWithFormatter)
	logging.SetBackend(leveledBackend)
	SetLevel(activeLevel)
}

// SetLevel sets logger verbosity.
func SetLevel(level Level) {
	var loggerLevel logging.Level

	switch level {
	case Debug:
		loggerLevel = logging.DEBUG
	case Info:
		loggerLevel = logging.INFO
	case Notice:
		loggerLevel = logging.NOTICE
	case Warning:
		loggerLevel = logging.WARNING
	case Error:
		loggerLevel = logging.ERROR
	}

	activeLevel = level
	leveledBackend.SetLevel(loggerLevel, "")
}

func init() {
	SetSink(os.Stderr)
	SetLevel(Notice)
}
