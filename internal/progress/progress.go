// Package progress shows a spinner while the CLI waits for services to
// reach a state.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

const spinInterval = 100 * time.Millisecond

// Reporter reports progress of a wait with no known total.
type Reporter interface {
	Start(description string)
	SetDescription(desc string)
	Finish()
	Error(err error)
}

// New returns a spinner on w when it is a terminal, and a line printer
// otherwise.
func New(w io.Writer) Reporter {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return NewCLIProgress(w)
	}
	return &LineProgress{w: w}
}

// CLIProgress animates a spinner with progressbar.
type CLIProgress struct {
	w    io.Writer
	bar  *progressbar.ProgressBar
	stop chan struct{}
	wg   sync.WaitGroup
}

// NewCLIProgress creates a spinner writing to w.
func NewCLIProgress(w io.Writer) *CLIProgress {
	return &CLIProgress{w: w}
}

// Start shows the spinner with description.
func (p *CLIProgress) Start(description string) {
	p.bar = progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionClearOnFinish(),
	)
	p.stop = make(chan struct{})
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		t := time.NewTicker(spinInterval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				_ = p.bar.Add(1)
			case <-p.stop:
				return
			}
		}
	}()
}

// SetDescription updates the spinner text.
func (p *CLIProgress) SetDescription(desc string) {
	if p.bar != nil {
		p.bar.Describe(desc)
	}
}

// Finish stops and clears the spinner.
func (p *CLIProgress) Finish() {
	if p.bar == nil {
		return
	}
	close(p.stop)
	p.wg.Wait()
	_ = p.bar.Finish()
	p.bar = nil
}

// Error stops the spinner and prints err.
func (p *CLIProgress) Error(err error) {
	p.Finish()
	if err != nil {
		fmt.Fprintf(p.w, "Error: %v\n", err)
	}
}

// LineProgress prints one line per description; used when output is not a
// terminal.
type LineProgress struct {
	w    io.Writer
	last string
}

func (p *LineProgress) Start(description string) { p.SetDescription(description) }

func (p *LineProgress) SetDescription(desc string) {
	if desc != p.last {
		fmt.Fprintln(p.w, desc)
		p.last = desc
	}
}

func (p *LineProgress) Finish() {}

func (p *LineProgress) Error(err error) {
	if err != nil {
		fmt.Fprintf(p.w, "Error: %v\n", err)
	}
}
