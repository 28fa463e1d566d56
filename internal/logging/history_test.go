package logging

import (
	"bytes"
	"testing"
	"time"
)

func TestFormatHeader(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"INITIALIZING", "---------INITIALIZING---------"},
		{"POWER EVENT RECEIVED", "-----POWER EVENT RECEIVED-----"},
		{"POWER PLAN CHANGED", "------POWER PLAN CHANGED------"},
		{"ODD", "-------------ODD--------------"},
		{"THIS TITLE IS LONGER THAN THIRTY", "THIS TITLE IS LONGER THAN THIRTY"},
	}

	for _, tt := range tests {
		got := FormatHeader(tt.title)
		if got != tt.want {
			t.Errorf("FormatHeader(%q) = %q, want %q", tt.title, got, tt.want)
		}
		if len(tt.title) < headerWidth && len(got) != headerWidth {
			t.Errorf("FormatHeader(%q) has width %d, want %d", tt.title, len(got), headerWidth)
		}
	}
}

func TestHistory_TimeLogAndFlush(t *testing.T) {
	var buf bytes.Buffer
	clock := func() time.Time { return time.Date(2024, 3, 9, 7, 5, 3, 0, time.Local) }
	h := NewHistoryWriter(&buf, clock)

	h.Header("INITIALIZING")
	h.TimeLogf("Battery remaining changed to %d%%", 42)

	if buf.Len() != 0 {
		t.Fatalf("expected buffered output before Flush, got %q", buf.String())
	}
	if err := h.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	want := "---------INITIALIZING---------\n[07:05:03] Battery remaining changed to 42%\n"
	if buf.String() != want {
		t.Errorf("history = %q, want %q", buf.String(), want)
	}
}

func TestHistory_CloseWithoutFile(t *testing.T) {
	h := NewHistory(HistoryConfig{}, nil)
	h.TimeLog("discarded")
	if err := h.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
