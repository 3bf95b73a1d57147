package nvelope

import (
	"fmt"
	"log/slog"
	"sort"
)

// BasicLogger is just the start of what a logger might
// support.  More capable loggers are discovered with type
// assertions (see InfoLogger) so that BasicLogger remains
// acceptable to the APIs.
type BasicLogger interface {
	Debug(msg string, fields ...map[string]interface{})
	Error(msg string, fields ...map[string]interface{})
	Warn(msg string, fields ...map[string]interface{})
}

// InfoLogger is implemented by loggers that have an Info level.
type InfoLogger interface {
	Info(msg string, fields ...map[string]interface{})
}

// Info logs at info level if log supports it and at debug
// level otherwise.
func Info(log BasicLogger, msg string, fields ...map[string]interface{}) {
	if il, ok := log.(InfoLogger); ok {
		il.Info(msg, fields...)
		return
	}
	log.Debug(msg, fields...)
}

// StdLogger is implmented by the base library log.Logger
type StdLogger interface {
	Print(v ...interface{})
}

type wrappedStdLogger struct {
	log StdLogger
}

// LoggerFromStd creates a BasicLogger from a log.Logger
func LoggerFromStd(log StdLogger) func() BasicLogger {
	return func() BasicLogger {
		return wrappedStdLogger{log: log}
	}
}

func (std wrappedStdLogger) Error(msg string, fields ...map[string]interface{}) {
	if len(fields) == 0 {
		std.log.Print(msg)
		return
	}
	vals := make([]interface{}, 1, len(fields)*4+1)
	vals[0] = msg
	for _, m := range fields {
		for _, k := range sortedKeys(m) {
			vals = append(vals, " "+k+"="+fmt.Sprint(m[k]))
		}
	}
	std.log.Print(vals...)
}

func (std wrappedStdLogger) Warn(msg string, fields ...map[string]interface{}) {
	std.Error(msg, fields...)
}
func (std wrappedStdLogger) Debug(msg string, fields ...map[string]interface{}) {
	std.Error(msg, fields...)
}

type wrappedSlog struct {
	log *slog.Logger
}

var _ InfoLogger = wrappedSlog{}

// LoggerFromSlog creates a BasicLogger (that is also an InfoLogger)
// from a *slog.Logger.  Fields become slog attributes.
func LoggerFromSlog(log *slog.Logger) BasicLogger {
	return wrappedSlog{log: log}
}

func (s wrappedSlog) Debug(msg string, fields ...map[string]interface{}) {
	s.log.Debug(msg, slogArgs(fields)...)
}
func (s wrappedSlog) Info(msg string, fields ...map[string]interface{}) {
	s.log.Info(msg, slogArgs(fields)...)
}
func (s wrappedSlog) Warn(msg string, fields ...map[string]interface{}) {
	s.log.Warn(msg, slogArgs(fields)...)
}
func (s wrappedSlog) Error(msg string, fields ...map[string]interface{}) {
	s.log.Error(msg, slogArgs(fields)...)
}

func slogArgs(fields []map[string]interface{}) []interface{} {
	var args []interface{}
	for _, m := range fields {
		for _, k := range sortedKeys(m) {
			args = append(args, slog.Any(k, m[k]))
		}
	}
	return args
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NoLogger returns a BasicLogger that discards all inputs
func NoLogger() BasicLogger {
	return nilLogger{}
}

type nilLogger struct{}

var _ BasicLogger = nilLogger{}

func (_ nilLogger) Error(msg string, fields ...map[string]interface{}) {}
func (_ nilLogger) Warn(msg string, fields ...map[string]interface{})  {}
func (_ nilLogger) Debug(msg string, fields ...map[string]interface{}) {}
