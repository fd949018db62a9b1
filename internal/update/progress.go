package update

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
)

// ProgressSink receives download progress. Begin is called once with the
// declared total (-1 when unknown) before any Advance.
type ProgressSink interface {
	Begin(total int64)
	Advance(n int)
}

// NopProgress discards progress.
type NopProgress struct{}

func (NopProgress) Begin(int64) {}
func (NopProgress) Advance(int) {}

// Counter records progress and may be read from other goroutines while a
// download is running.
type Counter struct {
	total   atomic.Int64
	done    atomic.Int64
	started atomic.Bool
	chunks  atomic.Int64
}

// NewCounter returns a counter with an unknown total.
func NewCounter() *Counter {
	c := &Counter{}
	c.total.Store(-1)
	return c
}

func (c *Counter) Begin(total int64) {
	c.total.Store(total)
	c.started.Store(true)
}

func (c *Counter) Advance(n int) {
	c.done.Add(int64(n))
	c.chunks.Add(1)
}

// Total returns the declared total, or -1 when unknown.
func (c *Counter) Total() int64 { return c.total.Load() }

// Done returns the cumulative byte count.
func (c *Counter) Done() int64 { return c.done.Load() }

// Chunks returns how many times Advance was called.
func (c *Counter) Chunks() int64 { return c.chunks.Load() }

// Started reports whether Begin has been called.
func (c *Counter) Started() bool { return c.started.Load() }

// TextProgress renders a single progress line to a writer, e.g.
//
//	downloaded 1.2 MB / 3.4 MB (35%)
//
// Lines are redrawn with a carriage return no more often than Interval.
type TextProgress struct {
	w        io.Writer
	Interval time.Duration

	mu      sync.Mutex
	counter *Counter
	last    time.Time
	now     func() time.Time
}

// NewTextProgress creates a renderer writing to w.
func NewTextProgress(w io.Writer) *TextProgress {
	return &TextProgress{
		w:        w,
		Interval: 100 * time.Millisecond,
		counter:  NewCounter(),
		now:      time.Now,
	}
}

func (p *TextProgress) Begin(total int64) {
	p.counter.Begin(total)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.render()
}

func (p *TextProgress) Advance(n int) {
	p.counter.Advance(n)
	p.mu.Lock()
	defer p.mu.Unlock()

	total := p.counter.Total()
	if total >= 0 && p.counter.Done() >= total {
		p.render()
		return
	}
	if p.now().Sub(p.last) < p.Interval {
		return
	}
	p.render()
}

// Finish draws the final state and ends the line.
func (p *TextProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.render()
	_, _ = fmt.Fprintln(p.w)
}

// Line returns the current progress text.
func (p *TextProgress) Line() string {
	return FormatProgress(p.counter.Done(), p.counter.Total())
}

func (p *TextProgress) render() {
	p.last = p.now()
	_, _ = fmt.Fprintf(p.w, "\r%s", p.Line())
}

// FormatProgress formats done bytes against total; a negative total renders
// the indeterminate form.
func FormatProgress(done, total int64) string {
	if total < 0 {
		return fmt.Sprintf("downloaded %s", humanize.Bytes(uint64(done)))
	}
	pct := 100
	if total > 0 {
		pct = min(int(done*100/total), 100)
	}
	return fmt.Sprintf("downloaded %s / %s (%d%%)", humanize.Bytes(uint64(done)), humanize.Bytes(uint64(total)), pct)
}

// MultiProgress fans progress out to several sinks.
type MultiProgress []ProgressSink

func (m MultiProgress) Begin(total int64) {
	for _, s := range m {
		s.Begin(total)
	}
}

func (m MultiProgress) Advance(n int) {
	for _, s := range m {
		s.Advance(n)
	}
}
