package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Logger provides leveled logging for tabbridge components.
// File-backed loggers write to ~/.tabbridge/logs/<run-id>-tabbridge.log.
//
// Infof, Warnf and Errorf always write. Debugf writes only while debug
// output is enabled, which is the default.
type Logger struct {
	runID     string
	component string
	file      *os.File
	logger    *log.Logger
	mu        sync.Mutex
	logPath   string
	debug     atomic.Bool
	closeOnce sync.Once
}

var (
	// Global run ID shared by every logger in this process
	runID     string
	runIDOnce sync.Once

	// logDir is the directory where log files are stored
	logDir string

	initOnce sync.Once
	initErr  error
)

func getRunID() string {
	runIDOnce.Do(func() {
		runID = uuid.New().String()
	})
	return runID
}

// initLogDirectory ensures the log directory exists
func initLogDirectory() error {
	initOnce.Do(func() {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			initErr = fmt.Errorf("failed to get home directory: %w", err)
			return
		}

		logDir = filepath.Join(homeDir, ".tabbridge", "logs")
		if err := os.MkdirAll(logDir, 0750); err != nil {
			initErr = fmt.Errorf("failed to create log directory: %w", err)
			return
		}
	})
	return initErr
}

// NewLogger creates a file-backed logger for a component.
//
// If the log directory cannot be created or the file cannot be opened, it
// returns a logger writing to stderr together with the error, so callers can
// keep going and report the fallback.
func NewLogger(component string) (*Logger, error) {
	if err := initLogDirectory(); err != nil {
		return newFallbackLogger(component, err), err
	}

	id := getRunID()
	logPath := filepath.Join(logDir, fmt.Sprintf("%s-tabbridge.log", id))

	// Append mode: every component of a run shares one file
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return newFallbackLogger(component, fmt.Errorf("failed to open log file: %w", err)), err
	}

	l := &Logger{
		runID:     id,
		component: component,
		file:      file,
		logger:    log.New(file, "", 0),
		logPath:   logPath,
	}
	l.debug.Store(true)
	return l, nil
}

// NewWriterLogger creates a logger that writes to w instead of a file.
func NewWriterLogger(component string, w io.Writer) *Logger {
	l := &Logger{
		runID:     getRunID(),
		component: component,
		logger:    log.New(w, "", 0),
	}
	l.debug.Store(true)
	return l
}

// Discard returns a logger that drops everything.
func Discard(component string) *Logger {
	return NewWriterLogger(component, io.Discard)
}

func newFallbackLogger(component string, err error) *Logger {
	l := &Logger{
		runID:     getRunID(),
		component: component,
		logger:    log.New(os.Stderr, "", 0),
	}
	l.debug.Store(true)
	l.Warnf("failed to initialize file logging, using stderr: %v", err)
	return l
}

// formatLogEntry creates a log line with timestamp, component and level
func (l *Logger) formatLogEntry(level, message string) string {
	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	return fmt.Sprintf("[%s] [%s] [%s] %s", timestamp, l.component, level, message)
}

func (l *Logger) write(level, format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logger.Println(l.formatLogEntry(level, fmt.Sprintf(format, v...)))
}

// SetDebug enables or disables Debugf output.
func (l *Logger) SetDebug(enabled bool) {
	l.debug.Store(enabled)
}

// DebugEnabled reports whether Debugf output is enabled.
func (l *Logger) DebugEnabled() bool {
	return l.debug.Load()
}

// Debugf logs a debug-level message
func (l *Logger) Debugf(format string, v ...interface{}) {
	if !l.debug.Load() {
		return
	}
	l.write("DEBUG", format, v...)
}

// Infof logs an info-level message
func (l *Logger) Infof(format string, v ...interface{}) {
	l.write("INFO", format, v...)
}

// Warnf logs a warning-level message
func (l *Logger) Warnf(format string, v ...interface{}) {
	l.write("WARN", format, v...)
}

// Errorf logs an error-level message
func (l *Logger) Errorf(format string, v ...interface{}) {
	l.write("ERROR", format, v...)
}

// With returns a logger for a sub-component sharing the same output.
func (l *Logger) With(component string) *Logger {
	child := &Logger{
		runID:     l.runID,
		component: l.component + "." + component,
		logger:    l.logger,
		logPath:   l.logPath,
	}
	child.debug.Store(l.debug.Load())
	return child
}

// RunID returns the run ID this logger belongs to
func (l *Logger) RunID() string {
	return l.runID
}

// LogPath returns the path to the log file, empty for writer loggers
func (l *Logger) LogPath() string {
	return l.logPath
}

// Close closes the log file. Safe to call multiple times.
func (l *Logger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		if l.file != nil {
			err = l.file.Close()
		}
	})
	return err
}

// GetRunID returns the current global run ID
func GetRunID() string {
	return getRunID()
}

// GetLogDirectory returns the directory where logs are stored
func GetLogDirectory() (string, error) {
	if err := initLogDirectory(); err != nil {
		return "", err
	}
	return logDir, nil
}
