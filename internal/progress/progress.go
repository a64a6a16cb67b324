// Package progress carries (done, total) updates from a worker goroutine to a
// terminal progress bar without ever blocking the worker.
package progress

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Func receives monotonically increasing progress within one stage.
type Func func(done, total uint64)

// Report calls f if it is set.
func (f Func) Report(done, total uint64) {
	if f != nil {
		f(done, total)
	}
}

// Snapshot is one consistent progress reading.
type Snapshot struct {
	Stage string
	Done  uint64
	Total uint64
}

// Tracker is a single-writer, single-reader progress cell.
type Tracker struct {
	cur atomic.Pointer[Snapshot]
}

// Stage returns a Func that records updates under the given stage name. A
// nil Tracker yields a nil Func.
func (t *Tracker) Stage(name string) Func {
	if t == nil {
		return nil
	}
	return func(done, total uint64) {
		t.cur.Store(&Snapshot{Stage: name, Done: done, Total: total})
	}
}

// Load returns the latest snapshot.
func (t *Tracker) Load() Snapshot {
	if s := t.cur.Load(); s != nil {
		return *s
	}
	return Snapshot{}
}

// Options configure Run.
type Options struct {
	Enabled  bool
	Writer   io.Writer
	Interval time.Duration
}

const defaultInterval = 65 * time.Millisecond

// Run executes work on its own goroutine while the calling goroutine polls
// the tracker and renders it. With Enabled unset, work runs inline.
func Run(ctx context.Context, o Options, work func(ctx context.Context, t *Tracker) error) error {
	t := &Tracker{}
	if !o.Enabled || o.Writer == nil {
		return work(ctx, t)
	}
	if o.Interval <= 0 {
		o.Interval = defaultInterval
	}

	errc := make(chan error, 1)
	go func() { errc <- work(ctx, t) }()

	bar := newBar(o.Writer)
	var stage string
	render := func() {
		s := t.Load()
		if s.Total == 0 {
			return
		}
		if s.Stage != stage {
			stage = s.Stage
			bar.Reset()
			bar.Describe(stage)
		}
		bar.ChangeMax64(int64(s.Total))
		_ = bar.Set64(int64(s.Done))
	}

	ticker := time.NewTicker(o.Interval)
	defer ticker.Stop()
	for {
		select {
		case err := <-errc:
			render()
			if err == nil {
				_ = bar.Finish()
			} else {
				_ = bar.Clear()
				fmt.Fprintln(o.Writer)
			}
			return err
		case <-ticker.C:
			render()
		}
	}
}

func newBar(w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions64(
		-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetWidth(15),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// Reader reports bytes read from R against Total.
type Reader struct {
	R     io.Reader
	Total uint64
	Func  Func

	n uint64
}

func (r *Reader) Read(p []byte) (int, error) {
	n, err := r.R.Read(p)
	r.n += uint64(n)
	r.Func.Report(r.n, r.Total)
	return n, err
}

// Writer reports bytes written to W against Total.
type Writer struct {
	W     io.Writer
	Total uint64
	Func  Func

	n uint64
}

func (w *Writer) Write(p []byte) (int, error) {
	n, err := w.W.Write(p)
	w.n += uint64(n)
	w.Func.Report(w.n, w.Total)
	return n, err
}
