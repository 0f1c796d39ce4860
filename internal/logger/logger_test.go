package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, WARN, "test")

	tests := []struct {
		name     string
		level    LogLevel
		logFunc  func(format string, args ...interface{})
		message  string
		wantLog  bool
		contains string
	}{
		{
			name:     "Debug message below WARN level",
			level:    WARN,
			logFunc:  l.Debug,
			message:  "debug message",
			wantLog:  false,
			contains: "[DEBUG]",
		},
		{
			name:     "Info message below WARN level",
			level:    WARN,
			logFunc:  l.Info,
			message:  "info message",
			wantLog:  false,
			contains: "[INFO]",
		},
		{
			name:     "Warning message at WARN level",
			level:    WARN,
			logFunc:  l.Warn,
			message:  "warning message",
			wantLog:  true,
			contains: "[WARN]",
		},
		{
			name:     "Debug message at DEBUG level",
			level:    DEBUG,
			logFunc:  l.Debug,
			message:  "request body",
			wantLog:  true,
			contains: "[DEBUG]",
		},
		{
			name:     "Error message above WARN level",
			level:    WARN,
			logFunc:  l.Error,
			message:  "error message",
			wantLog:  true,
			contains: "[ERROR]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			l.SetLevel(tt.level)
			tt.logFunc(tt.message)

			output := buf.String()
			if tt.wantLog {
				assert.True(t, strings.Contains(output, tt.contains), "log should contain level marker")
				assert.True(t, strings.Contains(output, tt.message), "log should contain message")
				assert.True(t, strings.Contains(output, "[test]"), "log should contain component")
			} else {
				assert.Empty(t, output, "log should be empty")
			}
		})
	}
}

func TestLoggerWithComponentSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	root := New(&buf, WARN, "root")
	child := root.WithComponent("executor")

	child.Debug("hidden")
	assert.Empty(t, buf.String())

	root.SetLevel(DEBUG)
	child.Debug("visible %d", 1)
	assert.Contains(t, buf.String(), "[executor] visible 1")
	assert.Equal(t, DEBUG, child.Level())
}

func TestLoggerWithError(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, INFO, "session").WithError(assert.AnError)
	l.Error("turn failed")
	assert.Contains(t, buf.String(), assert.AnError.Error())
	assert.Contains(t, buf.String(), "turn failed")
}

func TestLoggerSetOutput(t *testing.T) {
	var first, second bytes.Buffer
	l := New(&first, INFO, "test")
	l.SetOutput(&second)
	l.Info("moved")
	assert.Empty(t, first.String())
	assert.Contains(t, second.String(), "moved")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, INFO, ParseLevel(" INFO "))
	assert.Equal(t, ERROR, ParseLevel("error"))
	assert.Equal(t, FATAL, ParseLevel("fatal"))
	assert.Equal(t, WARN, ParseLevel("warn"))
	assert.Equal(t, WARN, ParseLevel("nonsense"))
}

func TestLogLevelNames(t *testing.T) {
	assert.Equal(t, "DEBUG", DEBUG.String())
	assert.Equal(t, "INFO", INFO.String())
	assert.Equal(t, "WARN", WARN.String())
	assert.Equal(t, "ERROR", ERROR.String())
	assert.Equal(t, "FATAL", FATAL.String())
	assert.Equal(t, "LEVEL(42)", LogLevel(42).String())
}

func TestInitLoggerSingleton(t *testing.T) {
	defaultLogger = nil

	for i := 0; i < 3; i++ {
		InitLogger(DEBUG, "test")
	}

	logger1 := GetLogger()
	logger2 := GetLogger()
	assert.Same(t, logger1, logger2, "GetLogger should return the same instance")
}
