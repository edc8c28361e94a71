// Package feedback adapts kopilock.WaitObserver lifecycle events to a
// user-visible progress renderer. The renderer itself
// (ProgressIndicator) is the external collaborator boundary spec.md §1
// names as out of scope ("progress-indicator rendering backends (only
// the interface the core consumes)"); the three implementations here
// (Interactive, LineBased, Silent) are the reference implementation of
// that boundary, since no progress-rendering library appears anywhere in
// the retrieval pack.
package feedback

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressIndicator is the minimal capability a renderer must provide.
// Start begins a new, possibly-updated line; Update replaces its
// content; Finish writes the terminal state of the line and ends it.
type ProgressIndicator interface {
	Start(message string)
	Update(message string)
	Finish(message string)
}

// Interactive renders to a TTY using carriage-return updates, so the
// wait message updates in place rather than scrolling.
type Interactive struct {
	mu  sync.Mutex
	out io.Writer
	len int
}

// NewInteractive builds a TTY-flavoured indicator writing to out.
func NewInteractive(out io.Writer) *Interactive { return &Interactive{out: out} }

func (p *Interactive) Start(message string) { p.Update(message) }

func (p *Interactive) Update(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pad := p.len - len(message)
	if pad < 0 {
		pad = 0
	}
	fmt.Fprintf(p.out, "\r%s%s", message, spaces(pad))
	p.len = len(message)
}

func (p *Interactive) Finish(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pad := p.len - len(message)
	if pad < 0 {
		pad = 0
	}
	fmt.Fprintf(p.out, "\r%s%s\n", message, spaces(pad))
	p.len = 0
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

// LineBased renders to a non-TTY stream (e.g. a pipe, a log file) with
// append-only lines, rate-limited to at most one line per cadence tick
// regardless of how often Update is called (§4.8: ≤0.2Hz, i.e. one line
// per ≥5s).
type LineBased struct {
	mu     sync.Mutex
	out    io.Writer
	cadence time.Duration
	last   time.Time
}

// NewLineBased builds a non-TTY indicator writing to out, emitting at
// most one update line per cadence (defaulting to 5s, per §4.8).
func NewLineBased(out io.Writer, cadence time.Duration) *LineBased {
	if cadence <= 0 {
		cadence = 5 * time.Second
	}
	return &LineBased{out: out, cadence: cadence}
}

func (p *LineBased) Start(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, message)
	p.last = time.Now()
}

func (p *LineBased) Update(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if time.Since(p.last) < p.cadence {
		return
	}
	fmt.Fprintln(p.out, message)
	p.last = time.Now()
}

func (p *LineBased) Finish(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, message)
}

// Silent emits no user-visible output at all; the Bridge still logs the
// same lifecycle information at DEBUG (via klog) regardless of which
// ProgressIndicator is in use.
type Silent struct{}

func (Silent) Start(string)  {}
func (Silent) Update(string) {}
func (Silent) Finish(string) {}

var (
	_ ProgressIndicator = (*Interactive)(nil)
	_ ProgressIndicator = (*LineBased)(nil)
	_ ProgressIndicator = Silent{}
)
