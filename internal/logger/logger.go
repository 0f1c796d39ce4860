package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// LogLevel represents different logging levels
type LogLevel int

const (
	// DEBUG level for request/response tracing
	DEBUG LogLevel = iota
	// INFO level for general operational information
	INFO
	// WARN level for recoverable problems; the default for the CLI
	WARN
	// ERROR level for failed operations
	ERROR
	// FATAL level for errors that end the process
	FATAL
)

var levelNames = map[LogLevel]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
	FATAL: "FATAL",
}

// String returns the upper-case level name.
func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLevel maps a level name to a LogLevel. Unknown names yield WARN.
func ParseLevel(name string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return DEBUG
	case "info":
		return INFO
	case "error":
		return ERROR
	case "fatal":
		return FATAL
	default:
		return WARN
	}
}

// sink is shared by a logger and every logger derived from it, so SetLevel
// and SetOutput on the root affect all components.
type sink struct {
	mu     sync.Mutex
	level  LogLevel
	logger *log.Logger
}

// Logger is a leveled logger tagged with a component name
type Logger struct {
	sink      *sink
	component string
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// InitLogger initializes the default logger. Output goes to stderr so that
// stdout carries only rendered results.
func InitLogger(level LogLevel, component string) {
	once.Do(func() {
		defaultLogger = New(os.Stderr, level, component)
	})
}

// New creates a standalone logger writing to w.
func New(w io.Writer, level LogLevel, component string) *Logger {
	return &Logger{
		sink: &sink{
			level:  level,
			logger: log.New(w, "", log.LstdFlags|log.Lmicroseconds),
		},
		component: component,
	}
}

// GetLogger returns the default logger instance
func GetLogger() *Logger {
	if defaultLogger == nil {
		InitLogger(WARN, "gpto")
	}
	if defaultLogger == nil {
		// InitLogger already ran once and the default was reset
		defaultLogger = New(os.Stderr, WARN, "gpto")
	}
	return defaultLogger
}

// WithComponent returns a logger sharing this logger's sink under another component name
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{sink: l.sink, component: component}
}

// WithError returns a logger whose component tag carries err
func (l *Logger) WithError(err error) *Logger {
	return &Logger{sink: l.sink, component: fmt.Sprintf("%s: %v", l.component, err)}
}

// SetLevel sets the logging level
func (l *Logger) SetLevel(level LogLevel) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.level = level
}

// Level reports the current logging level
func (l *Logger) Level() LogLevel {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return l.sink.level
}

// SetOutput redirects log output
func (l *Logger) SetOutput(w io.Writer) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.logger.SetOutput(w)
}

func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	if level < l.sink.level {
		return
	}

	msg := fmt.Sprintf(format, args...)
	l.sink.logger.Printf("[%s][%s] %s", level, l.component, msg)

	if level == FATAL {
		os.Exit(1)
	}
}

// Debug logs debug level messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(DEBUG, format, args...)
}

// Info logs info level messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(INFO, format, args...)
}

// Warn logs warning level messages
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(WARN, format, args...)
}

// Error logs error level messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(ERROR, format, args...)
}

// Fatal logs fatal level messages and exits
func (l *Logger) Fatal(format string, args ...interface{}) {
	l.log(FATAL, format, args...)
}
