package utility

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel maps a config value ("debug", "info", ...) to a LogLevel.
// Unknown values fall back to INFO.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

// Log modes
const (
	ModeFile    = "file"
	ModeCLI     = "cli"
	ModeJournal = "journal"
)

const archivedLogs = 8

// Logger provides leveled logging to a rotated file, a colored terminal or the journal
type Logger struct {
	*sink
	component string
}

// sink is shared by a logger and every logger derived from it with With
type sink struct {
	level      LogLevel
	logDir     string
	currentLog *os.File
	out        io.Writer
	mu         sync.Mutex
	mode       string
}

var (
	instance   *Logger
	instanceMu sync.Mutex
)

var levelColors = map[LogLevel]*color.Color{
	DEBUG: color.New(color.FgBlue),
	INFO:  color.New(color.FgGreen),
	WARN:  color.New(color.FgYellow, color.Bold),
	ERROR: color.New(color.FgRed),
}

// GetLogger returns the process-wide logger, writing to the journal until
// SetDefault replaces it.
func GetLogger() *Logger {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	if instance == nil {
		instance = NewLogger(ModeJournal, INFO)
	}
	return instance
}

// SetDefault installs l as the process-wide logger. Safe to call while other
// goroutines use GetLogger.
func SetDefault(l *Logger) {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	instance = l
}

// NewLogger creates a new logger with the specified mode
func NewLogger(mode string, level LogLevel) *Logger {
	return NewLoggerInDir(mode, level, "log")
}

// NewLoggerInDir creates a logger whose file mode writes under logDir
func NewLoggerInDir(mode string, level LogLevel, logDir string) *Logger {
	logger := &Logger{sink: &sink{
		level:  level,
		logDir: logDir,
		mode:   mode,
		out:    os.Stdout,
	}}
	if mode == ModeFile {
		logger.init()
	}
	return logger
}

// NewWriterLogger creates a journal-style logger writing to w.
func NewWriterLogger(w io.Writer, level LogLevel) *Logger {
	return &Logger{sink: &sink{
		level: level,
		mode:  ModeJournal,
		out:   w,
	}}
}

// With returns a logger sharing this logger's output and level that prefixes
// every message with the component name.
func (l *Logger) With(component string) *Logger {
	return &Logger{sink: l.sink, component: component}
}

// init creates the log directory, rotates old logs and opens current.log
func (l *Logger) init() {
	if err := os.MkdirAll(l.logDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create log directory: %v\n", err)
		return
	}

	l.rotateLogs()

	currentLogPath := filepath.Join(l.logDir, "current.log")
	file, err := os.OpenFile(currentLogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		return
	}

	l.currentLog = file
}

// rotateLogs shifts archive/monitorspaces-N.log up by one and archives current.log
func (l *Logger) rotateLogs() {
	archiveDir := filepath.Join(l.logDir, "archive")
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return
	}

	currentLogPath := filepath.Join(l.logDir, "current.log")
	if _, err := os.Stat(currentLogPath); err != nil {
		return
	}

	os.Remove(filepath.Join(archiveDir, archiveName(archivedLogs)))
	for i := archivedLogs - 1; i >= 1; i-- {
		oldPath := filepath.Join(archiveDir, archiveName(i))
		if _, err := os.Stat(oldPath); err == nil {
			os.Rename(oldPath, filepath.Join(archiveDir, archiveName(i+1)))
		}
	}

	os.Rename(currentLogPath, filepath.Join(archiveDir, archiveName(1)))
}

func archiveName(i int) string {
	return fmt.Sprintf("monitorspaces-%d.log", i)
}

// log writes a log message
func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	timestamp := time.Now().Format("15:04:05.000")
	message := fmt.Sprintf(format, args...)
	if l.component != "" {
		message = fmt.Sprintf("[%s] %s", l.component, message)
	}
	logLine := fmt.Sprintf("[%s] [%s] %s\n", timestamp, level.String(), message)

	switch l.mode {
	case ModeFile:
		if l.currentLog != nil {
			l.currentLog.WriteString(logLine)
		} else {
			fmt.Fprint(os.Stderr, logLine)
		}
	case ModeCLI:
		c, ok := levelColors[level]
		if !ok {
			c = color.New(color.Reset)
		}
		fmt.Fprintf(l.out, "%s %s\n", c.Sprintf("[%s] [%s]", timestamp, level.String()), message)
	default:
		fmt.Fprint(l.out, logLine)
	}
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(DEBUG, format, args...)
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(INFO, format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(WARN, format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(ERROR, format, args...)
}

// SetLevel sets the minimum log level
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// Level returns the minimum log level
func (l *Logger) Level() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// Close closes the log file
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentLog != nil {
		err := l.currentLog.Close()
		l.currentLog = nil
		return err
	}
	return nil
}

// ListLogFiles returns current.log followed by the archived logs
func (l *Logger) ListLogFiles() []string {
	files := []string{}

	currentLogPath := filepath.Join(l.logDir, "current.log")
	if _, err := os.Stat(currentLogPath); err == nil {
		files = append(files, currentLogPath)
	}

	archiveDir := filepath.Join(l.logDir, "archive")
	if entries, err := os.ReadDir(archiveDir); err == nil {
		for _, entry := range entries {
			if !entry.IsDir() {
				files = append(files, filepath.Join(archiveDir, entry.Name()))
			}
		}
	}

	return files
}
