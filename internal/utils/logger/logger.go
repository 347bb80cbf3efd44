package logger

import (
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/fatih/color"
)

// Logger is a small component-scoped console logger.
type Logger struct {
	serviceName string
}

func New(serviceName string) *Logger {
	return &Logger{
		serviceName: serviceName,
	}
}

func (l *Logger) formatMessage(level, msg string) string {
	_, file, line, _ := runtime.Caller(2)
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fileName := filepath.Base(file)

	return fmt.Sprintf("%s | %s | %s:%d | %s | %s",
		timestamp,
		level,
		fileName,
		line,
		l.serviceName,
		msg,
	)
}

func (l *Logger) Info(msg string, args ...interface{}) {
	color.Cyan(l.formatMessage("INFO", fmt.Sprintf(msg, args...)))
}

func (l *Logger) Success(msg string, args ...interface{}) {
	color.Green(l.formatMessage("SUCCESS", fmt.Sprintf(msg, args...)))
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	color.Yellow(l.formatMessage("WARN", fmt.Sprintf(msg, args...)))
}

// Error logs and returns the wrapped error so call sites can do
// `return log.Error("...", err)`. Format args apply to the message in
// both the printed line and the returned error.
func (l *Logger) Error(msg string, err error, args ...interface{}) error {
	formatted := fmt.Sprintf(msg, args...)
	color.Red(l.formatMessage("ERROR", fmt.Sprintf("%s: %v", formatted, err)))
	return fmt.Errorf("%s: %w", formatted, err)
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	color.Magenta(l.formatMessage("DEBUG", fmt.Sprintf(msg, args...)))
}
