// Package log provides a pluggable logging abstraction for the image
// decoding pipeline. Core packages never call a concrete logging library
// directly; they write to the named loggers below, which are no-ops until
// a backend is attached.
package log

import (
	"io"
	stdlog "log"
	"os"
)

// Logger defines an interface for logging messages.
type Logger interface {

	// Printf logs a formatted string.
	Printf(format string, args ...interface{})

	// Println logs a line.
	Println(args ...interface{})
}

type logger struct {
	log Logger
}

// pdfimg's 4 defined loggers.
var (
	Debug = &logger{}
	Info  = &logger{}
	Parse = &logger{}
	Stats = &logger{}
)

// SetDebugLogger sets the debug logger.
func SetDebugLogger(log Logger) {
	Debug.log = log
}

// SetInfoLogger sets the info logger.
func SetInfoLogger(log Logger) {
	Info.log = log
}

// SetParseLogger sets the content-stream parse logger.
func SetParseLogger(log Logger) {
	Parse.log = log
}

// SetStatsLogger sets the stats logger.
func SetStatsLogger(log Logger) {
	Stats.log = log
}

// SetDefaultDebugLogger sets the default debug logger.
func SetDefaultDebugLogger() {
	SetDebugLogger(stdlog.New(os.Stderr, "DEBUG: ", stdlog.Ldate|stdlog.Ltime))
}

// SetDefaultInfoLogger sets the default info logger.
func SetDefaultInfoLogger() {
	SetInfoLogger(stdlog.New(os.Stderr, "INFO: ", stdlog.Ldate|stdlog.Ltime))
}

// SetDefaultParseLogger sets the default parse logger. Discarded by default
// since content-stream tokenization is by far the noisiest source.
func SetDefaultParseLogger() {
	SetParseLogger(stdlog.New(io.Discard, "PARSE: ", stdlog.Ldate|stdlog.Ltime))
}

// SetDefaultStatsLogger sets the default stats logger.
func SetDefaultStatsLogger() {
	SetStatsLogger(stdlog.New(os.Stderr, "STATS: ", stdlog.Ldate|stdlog.Ltime))
}

// SetDefaultLoggers sets all loggers to their default logger.
func SetDefaultLoggers() {
	SetDefaultDebugLogger()
	SetDefaultInfoLogger()
	SetDefaultParseLogger()
	SetDefaultStatsLogger()
}

// DisableLoggers turns off all logging.
func DisableLoggers() {
	SetDebugLogger(nil)
	SetInfoLogger(nil)
	SetParseLogger(nil)
	SetStatsLogger(nil)
}

// ParseEnabled reports whether the parse logger has a backend attached.
// Callers guard expensive Sprintf-style calls with this before logging.
func ParseEnabled() bool {
	return Parse.log != nil
}

// Printf writes a formatted message to the log.
func (l *logger) Printf(format string, args ...interface{}) {

	if l.log == nil {
		return
	}

	l.log.Printf(format, args...)
}

// Println writes a line to the log.
func (l *logger) Println(args ...interface{}) {

	if l.log == nil {
		return
	}

	l.log.Println(args...)
}
