// Package logsink implements the asynchronous queued logger shared by the
// service. Producers enqueue formatted entries without blocking on I/O; a
// single background goroutine drains the queue and appends to a file or, when
// no file is configured, emits through a console logger.
package logsink

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Level classifies a log entry.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// ParseLevel maps a config token to a Level. Unknown tokens fall back to
// Info.
func ParseLevel(token string) Level {
	switch strings.ToLower(token) {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// pollInterval is the drain loop's idle wait between queue sweeps.
const pollInterval = 100 * time.Millisecond

type entry struct {
	ts      time.Time
	level   Level
	message string
}

func (e entry) line() string {
	return fmt.Sprintf("[%s] [%s] %s", e.ts.Format("2006-01-02 15:04:05"), e.level, e.message)
}

// Logger is the async log sink. Log calls format synchronously, enqueue, and
// return; the background loop owns all I/O. Close drains the queue before
// returning, so nothing enqueued before shutdown is lost.
type Logger struct {
	mu       sync.Mutex
	queue    []entry
	closed   bool
	minLevel Level

	file    *os.File    // nil means console fallback
	console *zap.Logger // used when file is nil

	stop chan struct{}
	done chan struct{}
}

// New creates a memory-only sink that drains to the console.
func New() *Logger {
	console, err := zap.NewDevelopment()
	if err != nil {
		console = zap.NewNop()
	}
	l := &Logger{
		console: console,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go l.drainLoop()
	return l
}

// NewFile creates a file-backed sink. The parent directory is created if
// missing and the file is truncated at startup.
func NewFile(path string) (*Logger, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	l := &Logger{
		file: f,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go l.drainLoop()
	return l, nil
}

// Debugf enqueues a debug entry.
func (l *Logger) Debugf(format string, args ...any) { l.enqueue(LevelDebug, format, args...) }

// Infof enqueues an info entry.
func (l *Logger) Infof(format string, args ...any) { l.enqueue(LevelInfo, format, args...) }

// Warnf enqueues a warning entry.
func (l *Logger) Warnf(format string, args ...any) { l.enqueue(LevelWarn, format, args...) }

// Errorf enqueues an error entry.
func (l *Logger) Errorf(format string, args ...any) { l.enqueue(LevelError, format, args...) }

// SetMinLevel drops entries below the given level at enqueue time. The
// default keeps everything.
func (l *Logger) SetMinLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.minLevel = level
}

// enqueue formats at the call site so a bad format string shows up in the
// rendered message immediately, not later in the writer.
func (l *Logger) enqueue(level Level, format string, args ...any) {
	e := entry{ts: time.Now(), level: level, message: fmt.Sprintf(format, args...)}

	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.minLevel {
		return
	}
	if l.closed {
		// Entries after shutdown began are dropped per contract.
		return
	}
	l.queue = append(l.queue, e)
}

// drainLoop is the single consumer. Each wake-up it takes the whole queue
// and writes it out in FIFO order.
func (l *Logger) drainLoop() {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.flush()
		case <-l.stop:
			l.flush()
			if l.file != nil {
				l.file.Close()
			} else if l.console != nil {
				l.console.Sync()
			}
			close(l.done)
			return
		}
	}
}

func (l *Logger) flush() {
	l.mu.Lock()
	batch := l.queue
	l.queue = nil
	l.mu.Unlock()

	for _, e := range batch {
		l.write(e)
	}
}

// write is best-effort: the sink never turns a log line into a failure.
func (l *Logger) write(e entry) {
	if l.file != nil {
		l.file.WriteString(e.line() + "\n")
		return
	}
	switch e.level {
	case LevelDebug:
		l.console.Debug(e.message)
	case LevelWarn:
		l.console.Warn(e.message)
	case LevelError:
		l.console.Error(e.message)
	default:
		l.console.Info(e.message)
	}
}

// Close signals the drain loop to stop and blocks until every entry enqueued
// before the call has been written. Safe to call once; Log calls racing with
// Close may be dropped.
func (l *Logger) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		<-l.done
		return
	}
	l.closed = true
	l.mu.Unlock()

	close(l.stop)
	<-l.done
}
