// Package progress keeps the append-only milestone log of a pipeline run.
package progress

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bankcap/banketl/internal/model"
)

// TimestampFormat renders timestamps as YYYY-Mon-DD-HH:MM:SS.
const TimestampFormat = "2006-Jan-02-15:04:05"

// Entry is one line of the progress log.
type Entry struct {
	Timestamp time.Time
	Message   string
}

// String formats the entry as "<timestamp>:<message>".
func (e Entry) String() string {
	return e.Timestamp.Format(TimestampFormat) + ":" + e.Message
}

// ParseEntry parses a line written by Logger. The pipeline never reads the log
// back; this is for tests and external tooling. Timestamps carry no zone and are
// read back in local time.
func ParseEntry(line string) (Entry, error) {
	line = strings.TrimRight(line, "\n")
	if len(line) <= len(TimestampFormat) || line[len(TimestampFormat)] != ':' {
		return Entry{}, fmt.Errorf("malformed progress line %q", line)
	}
	ts, err := time.ParseInLocation(TimestampFormat, line[:len(TimestampFormat)], time.Local)
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp in %q: %w", line, err)
	}
	return Entry{Timestamp: ts, Message: line[len(TimestampFormat)+1:]}, nil
}

// Logger appends milestone messages to a file. The file is never truncated.
type Logger struct {
	path string
	now  func() time.Time
}

// New returns a Logger writing to path.
func New(path string) *Logger {
	return &Logger{path: path, now: time.Now}
}

// WithClock returns a copy of l that timestamps entries with now.
func (l *Logger) WithClock(now func() time.Time) *Logger {
	return &Logger{path: l.path, now: now}
}

// Log appends one entry stamped with the current time.
func (l *Logger) Log(message string) error {
	e := Entry{Timestamp: l.now(), Message: message}
	slog.Info(message, "progress_log", l.path)
	return Append(l.path, e)
}

// Append writes entries to path, creating the file and its directory if
// needed. Each entry is a single write so concurrent appenders never
// interleave within a line.
func Append(path string, entries ...Entry) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating log dir: %w: %w", model.ErrIO, err)
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening progress log: %w: %w", model.ErrIO, err)
	}
	defer f.Close()

	for i, e := range entries {
		if _, err := f.WriteString(e.String() + "\n"); err != nil {
			return fmt.Errorf("writing entry %d: %w: %w", i, model.ErrIO, err)
		}
	}
	return nil
}
