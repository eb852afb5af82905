// Package logging provides a simple leveled logger for the decoder server and CLI.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents log severity levels
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

// Logger provides leveled logging
type Logger struct {
	level  Level
	json   bool
	mu     sync.RWMutex
	logger *log.Logger
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// New returns a logger writing to w at LevelInfo.
func New(w io.Writer) *Logger {
	return &Logger{
		level:  LevelInfo,
		logger: log.New(w, "", log.LstdFlags|log.LUTC),
	}
}

// Default returns the default logger instance
func Default() *Logger {
	once.Do(func() {
		defaultLogger = New(os.Stderr)
	})
	return defaultLogger
}

// SetLevel sets the minimum log level
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetLevelFromString sets the log level from a string
func (l *Logger) SetLevelFromString(levelStr string) {
	switch strings.ToLower(levelStr) {
	case "debug":
		l.SetLevel(LevelDebug)
	case "info":
		l.SetLevel(LevelInfo)
	case "warn", "warning":
		l.SetLevel(LevelWarn)
	case "error":
		l.SetLevel(LevelError)
	default:
		l.SetLevel(LevelInfo)
	}
}

// SetFormat switches between "text" and "json" output.
// JSON lines carry their own timestamp, so the log flags are cleared.
func (l *Logger) SetFormat(format string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.json = strings.EqualFold(format, "json")
	if l.json {
		l.logger.SetFlags(0)
	} else {
		l.logger.SetFlags(log.LstdFlags | log.LUTC)
	}
}

// SetOutput redirects log output
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.SetOutput(w)
}

// GetLevel returns the current log level
func (l *Logger) GetLevel() Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

// GetLevelString returns the current log level as a string
func (l *Logger) GetLevelString() string {
	return levelNames[l.GetLevel()]
}

// GetLevelString returns the default logger's level as a string
func GetLevelString() string {
	return Default().GetLevelString()
}

type jsonLine struct {
	Time  string `json:"time"`
	Level string `json:"level"`
	Msg   string `json:"msg"`
}

func (l *Logger) log(level Level, format string, args ...interface{}) {
	l.mu.RLock()
	currentLevel := l.level
	asJSON := l.json
	l.mu.RUnlock()

	if level < currentLevel {
		return
	}

	prefix := levelNames[level]
	msg := fmt.Sprintf(format, args...)

	if asJSON {
		line, err := json.Marshal(jsonLine{
			Time:  time.Now().UTC().Format(time.RFC3339Nano),
			Level: strings.ToLower(prefix),
			Msg:   msg,
		})
		if err == nil {
			l.logger.Print(string(line))
			return
		}
	}

	l.logger.Printf("[%s] %s", prefix, msg)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(LevelDebug, format, args...)
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(LevelInfo, format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(LevelWarn, format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(LevelError, format, args...)
}

// Package-level convenience functions

// SetLevel sets the default logger's level
func SetLevel(level Level) {
	Default().SetLevel(level)
}

// SetLevelFromString sets the default logger's level from a string
func SetLevelFromString(levelStr string) {
	Default().SetLevelFromString(levelStr)
}

// SetFormat sets the default logger's output format
func SetFormat(format string) {
	Default().SetFormat(format)
}

// SetOutput redirects the default logger's output
func SetOutput(w io.Writer) {
	Default().SetOutput(w)
}

// Debug logs a debug message to the default logger
func Debug(format string, args ...interface{}) {
	Default().Debug(format, args...)
}

// Info logs an info message to the default logger
func Info(format string, args ...interface{}) {
	Default().Info(format, args...)
}

// Warn logs a warning message to the default logger
func Warn(format string, args ...interface{}) {
	Default().Warn(format, args...)
}

// Error logs an error message to the default logger
func Error(format string, args ...interface{}) {
	Default().Error(format, args...)
}
