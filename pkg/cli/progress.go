package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Progress renders a single-line bar for batch runs. Increment is safe
// to call from pool workers.
type Progress struct {
	mu      sync.Mutex
	writer  io.Writer
	total   int
	done    int
	started time.Time
}

// NewProgress creates a bar expecting total items. A nil writer defaults
// to os.Stderr so the bar never mixes into piped stdout output.
func NewProgress(w io.Writer, total int) *Progress {
	if w == nil {
		w = os.Stderr
	}
	p := &Progress{
		writer:  w,
		total:   total,
		started: time.Now(),
	}
	p.render()
	return p
}

// Increment advances the bar by one processed item.
func (p *Progress) Increment() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++
	p.render()
}

// Finish fills the bar and terminates the line.
func (p *Progress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done = p.total
	p.render()
	if p.total > 0 {
		fmt.Fprintln(p.writer)
	}
}

const progressWidth = 30

func (p *Progress) render() {
	if p.total <= 0 {
		return
	}

	done := p.done
	if done > p.total {
		done = p.total
	}
	filled := progressWidth * done / p.total

	var bar string
	switch {
	case filled >= progressWidth:
		bar = strings.Repeat("=", progressWidth)
	default:
		bar = strings.Repeat("=", filled) + ">" + strings.Repeat(" ", progressWidth-filled-1)
	}

	rate := float64(done) / time.Since(p.started).Seconds()
	fmt.Fprintf(p.writer, "\r[%s] %d/%d %.1f items/s", bar, done, p.total, rate)
}
