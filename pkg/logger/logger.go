package logger

import (
	"os"
	"sync/atomic"
)

// LoggerInstance is a logging backend. Fatal is expected to exit.
type LoggerInstance interface {
	Log(message string, keyvals ...any)
	Debug(message string, keyvals ...any)
	Info(message string, keyvals ...any)
	Warn(message string, keyvals ...any)
	Error(message string, keyvals ...any)
	Fatal(message string, keyvals ...any)
}

// Logger fans every call out to its backends.
type Logger struct {
	instances []LoggerInstance
}

var current atomic.Pointer[Logger]

// Init installs the process-wide backends, replacing earlier ones. Before
// the first call every logging function is a no-op.
//
// Example:
//
//	logger.Init(console.NewConsoleLogger(console.ConsoleLoggerParams{Debug: true}))
//	logger.Info("[Server] Listening", "addr", ":8000")
func Init(instances ...LoggerInstance) {
	current.Store(&Logger{instances: instances})
}

func each(fn func(LoggerInstance)) {
	l := current.Load()
	if l == nil {
		return
	}
	for _, instance := range l.instances {
		fn(instance)
	}
}

func Log(message string, keyvals ...any) {
	each(func(i LoggerInstance) { i.Log(message, keyvals...) })
}

func Debug(message string, keyvals ...any) {
	each(func(i LoggerInstance) { i.Debug(message, keyvals...) })
}

func Info(message string, keyvals ...any) {
	each(func(i LoggerInstance) { i.Info(message, keyvals...) })
}

func Warn(message string, keyvals ...any) {
	each(func(i LoggerInstance) { i.Warn(message, keyvals...) })
}

func Error(message string, keyvals ...any) {
	each(func(i LoggerInstance) { i.Error(message, keyvals...) })
}

// Fatal logs at FATAL level and exits with status 1, also when no backend
// is installed.
func Fatal(message string, keyvals ...any) {
	each(func(i LoggerInstance) { i.Fatal(message, keyvals...) })
	os.Exit(1)
}
