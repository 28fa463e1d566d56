package logging

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	headerWidth = 30
	headerChar  = '-'
)

// HistoryConfig configures the power history log.
type HistoryConfig struct {
	// File is the log path. Empty disables file output.
	File string

	// MaxSizeMB is the size at which the file is rotated.
	MaxSizeMB int

	// MaxBackups is the number of rotated files kept.
	MaxBackups int
}

// History is the human-readable power history log: timestamped lines and
// dash-padded section headers. Writes are buffered until Flush.
type History struct {
	mu    sync.Mutex
	w     *bufio.Writer
	file  io.Closer
	now   func() time.Time
	debug *Logger
}

// NewHistory opens the history log described by cfg. Lines are mirrored at
// debug level to mirror, when it is non-nil.
func NewHistory(cfg HistoryConfig, mirror *Logger) *History {
	var out io.Writer = io.Discard
	var closer io.Closer
	if cfg.File != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		}
		out, closer = lj, lj
	}
	return newHistory(out, closer, time.Now, mirror)
}

// NewHistoryWriter writes the history to w. Used by tests and the CLI.
func NewHistoryWriter(w io.Writer, now func() time.Time) *History {
	if now == nil {
		now = time.Now
	}
	return newHistory(w, nil, now, nil)
}

func newHistory(w io.Writer, closer io.Closer, now func() time.Time, mirror *Logger) *History {
	return &History{
		w:     bufio.NewWriter(w),
		file:  closer,
		now:   now,
		debug: mirror,
	}
}

// Log writes a raw line.
func (h *History) Log(message string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.debug != nil {
		h.debug.Debug().Str("stage", "history").Msg(message)
	}
	h.w.WriteString(message)
	h.w.WriteByte('\n')
}

// TimeLog writes message prefixed with the wall clock time.
func (h *History) TimeLog(message string) {
	t := h.now()
	h.Log(fmt.Sprintf("[%02d:%02d:%02d] %s", t.Hour(), t.Minute(), t.Second(), message))
}

// TimeLogf is TimeLog with printf-style formatting.
func (h *History) TimeLogf(format string, args ...interface{}) {
	h.TimeLog(fmt.Sprintf(format, args...))
}

// Header writes a section header such as "-----POWER EVENT RECEIVED-----".
func (h *History) Header(title string) {
	h.Log(FormatHeader(title))
}

// Flush writes buffered lines to the underlying file.
func (h *History) Flush() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.w.Flush()
}

// Close flushes and closes the log file.
func (h *History) Close() error {
	if err := h.Flush(); err != nil {
		return err
	}
	if h.file != nil {
		return h.file.Close()
	}
	return nil
}

// FormatHeader centres title in a run of dashes headerWidth wide. Titles
// wider than the header are returned unchanged.
func FormatHeader(title string) string {
	if len(title) >= headerWidth {
		return title
	}
	pad := (headerWidth - len(title)) / 2
	dash := string(headerChar)
	return strings.Repeat(dash, pad) + title + strings.Repeat(dash, headerWidth-len(title)-pad)
}
