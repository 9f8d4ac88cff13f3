package utils

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

type LogLevel int

const (
	TRACE LogLevel = iota
	DEBUG
	INFO
	WARN
	ERROR
	CRITICAL
)

func (l LogLevel) String() string {
	switch l {
	case TRACE:
		return "TRACE"
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case CRITICAL:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a flag value to a level, defaulting to INFO.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(s) {
	case "trace":
		return TRACE
	case "debug":
		return DEBUG
	case "info":
		return INFO
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	case "critical":
		return CRITICAL
	default:
		return INFO
	}
}

// sink is shared by a logger and all of its named children
type sink struct {
	mu         sync.Mutex
	out        io.WriteCloser
	alsoStdout bool
}

type Logger struct {
	sink     *sink
	mu       sync.Mutex
	minLevel LogLevel
	name     string
}

func NewFileLogger(filePath string, minLevel LogLevel, alsoStdout bool) (*Logger, error) {
	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return NewLogger(f, minLevel, alsoStdout), nil
}

// NewLogger writes to w; w is closed by Close.
func NewLogger(w io.WriteCloser, minLevel LogLevel, alsoStdout bool) *Logger {
	return &Logger{
		sink:     &sink{out: w, alsoStdout: alsoStdout},
		minLevel: minLevel,
	}
}

// Named returns a child logger that tags each line with the subsystem name.
func (l *Logger) Named(name string) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.name != "" {
		name = l.name + "." + name
	}
	return &Logger{sink: l.sink, minLevel: l.minLevel, name: name}
}

func (l *Logger) Close() error {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	if l.sink.out != nil {
		err := l.sink.out.Close()
		l.sink.out = nil
		return err
	}
	return nil
}

func (l *Logger) SetMinLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.minLevel = level
}

func (l *Logger) Enabled(level LogLevel) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return level >= l.minLevel
}

func (l *Logger) log(level LogLevel, msg string, args ...any) {
	if !l.Enabled(level) {
		return
	}

	ts := time.Now().Format(time.RFC3339Nano)
	var line string
	if l.name != "" {
		line = fmt.Sprintf("%s [%s] %s: %s\n", ts, level.String(), l.name, fmt.Sprintf(msg, args...))
	} else {
		line = fmt.Sprintf("%s [%s] %s\n", ts, level.String(), fmt.Sprintf(msg, args...))
	}

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	if l.sink.out != nil {
		_, _ = io.WriteString(l.sink.out, line)
		if f, ok := l.sink.out.(*os.File); ok {
			_ = f.Sync()
		}
	}
	if l.sink.alsoStdout {
		_, _ = os.Stdout.WriteString(line)
	}
}

func (l *Logger) Trace(msg string, args ...any)    { l.log(TRACE, msg, args...) }
func (l *Logger) Debug(msg string, args ...any)    { l.log(DEBUG, msg, args...) }
func (l *Logger) Info(msg string, args ...any)     { l.log(INFO, msg, args...) }
func (l *Logger) Warn(msg string, args ...any)     { l.log(WARN, msg, args...) }
func (l *Logger) Error(msg string, args ...any)    { l.log(ERROR, msg, args...) }
func (l *Logger) Critical(msg string, args ...any) { l.log(CRITICAL, msg, args...) }
