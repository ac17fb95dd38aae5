// Package logger sets up the viewer's structured logger. Records go to a log
// file on disk and to an in-memory tail that the on-screen console draws.
package logger

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LogFilePath is the default log file, relative to the working directory.
const LogFilePath = "logs/oasismap.log"

// DefaultMaxLines is how many lines the in-memory tail keeps.
const DefaultMaxLines = 200

// Logger stores the most recent lines in memory and appends every line to a
// file. It is an io.Writer so a slog handler can write through it.
type Logger struct {
	mu      sync.Mutex
	lines   []string
	max     int
	partial []byte
	file    io.WriteCloser
	now     func() time.Time
}

// New returns a logger appending to path, creating its directory. An empty
// path keeps lines in memory only.
func New(path string, maxLines int) (*Logger, error) {
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}
	l := &Logger{max: maxLines, now: time.Now}
	if path == "" {
		return l, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	l.file = f
	return l, nil
}

// Write implements io.Writer. Complete lines are kept and written to the
// file; a trailing partial line waits for its newline.
func (l *Logger) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.partial = append(l.partial, p...)
	for {
		i := bytes.IndexByte(l.partial, '\n')
		if i < 0 {
			break
		}
		l.appendLocked(string(l.partial[:i]))
		l.partial = l.partial[i+1:]
	}
	return len(p), nil
}

// Log appends a line prefixed with the local time, as typed console input is.
func (l *Logger) Log(line string) {
	stamped := "[" + l.now().Format("2006-01-02 15:04:05") + "] " + line
	l.mu.Lock()
	defer l.mu.Unlock()
	l.appendLocked(stamped)
}

func (l *Logger) appendLocked(line string) {
	line = strings.TrimRight(line, "\r")
	l.lines = append(l.lines, line)
	if over := len(l.lines) - l.max; over > 0 {
		l.lines = append(l.lines[:0:0], l.lines[over:]...)
	}
	if l.file != nil {
		_, _ = io.WriteString(l.file, line+"\n")
	}
}

// Lines returns a copy of the stored lines, oldest first.
func (l *Logger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

// Close closes the log file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// Slog returns a text-format slog logger writing through l, and through
// extra writers such as stderr. Pass a *slog.LevelVar to change the level
// at run time.
func (l *Logger) Slog(level slog.Leveler, extra ...io.Writer) *slog.Logger {
	var w io.Writer = l
	if len(extra) > 0 {
		w = io.MultiWriter(append([]io.Writer{l}, extra...)...)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// ParseLevel maps debug, info, warn and error to a slog level. Anything else
// is info.
func ParseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
