// internal/logbook/logbook.go
//
// Activity journal for the client. Every session event and lifecycle
// action lands here so users can reconstruct what happened after the TUI
// closes. Entries go to a text file and to a small in-memory ring that
// feeds the dashboard log panel without touching disk on every frame.

package logbook

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level is the severity of a journal entry.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

const ringSize = 64

// Logbook appends timestamped entries to a file and keeps the most recent
// ones in memory. All methods are safe for concurrent use and never fail
// the caller: a journal that cannot write simply drops the file copy.
type Logbook struct {
	path string

	mu   sync.Mutex
	ring []string
}

// New creates a logbook writing to path, creating parent directories as
// needed.
func New(path string) (*Logbook, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("logbook: ensure dir: %w", err)
	}
	return &Logbook{path: path}, nil
}

// Path returns the file backing this logbook.
func (l *Logbook) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Info records an informational entry.
func (l *Logbook) Info(format string, args ...any) { l.append(LevelInfo, format, args...) }

// Warn records a warning entry.
func (l *Logbook) Warn(format string, args ...any) { l.append(LevelWarn, format, args...) }

// Error records an error entry.
func (l *Logbook) Error(format string, args ...any) { l.append(LevelError, format, args...) }

func (l *Logbook) append(level Level, format string, args ...any) {
	if l == nil {
		return
	}
	message := strings.TrimSpace(fmt.Sprintf(format, args...))
	line := fmt.Sprintf("%s %-5s %s",
		time.Now().UTC().Format(time.RFC3339), string(level), message)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.ring = append(l.ring, line)
	if len(l.ring) > ringSize {
		l.ring = l.ring[len(l.ring)-ringSize:]
	}
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return
	}
	defer file.Close()
	_, _ = file.WriteString(line + "\n")
}

// Tail returns up to maxLines of the most recent entries, oldest first.
func (l *Logbook) Tail(maxLines int) []string {
	if l == nil || maxLines <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.ring) == 0 {
		return nil
	}
	start := 0
	if len(l.ring) > maxLines {
		start = len(l.ring) - maxLines
	}
	out := make([]string, len(l.ring)-start)
	copy(out, l.ring[start:])
	return out
}
