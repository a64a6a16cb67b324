package progress

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestTracker(t *testing.T) {
	var nilTracker *Tracker
	if f := nilTracker.Stage("reading"); f != nil {
		t.Errorf("nil Tracker Stage() = non-nil Func")
	}

	tr := &Tracker{}
	if got := tr.Load(); got != (Snapshot{}) {
		t.Errorf("Load() before any update = %+v, want zero", got)
	}
	f := tr.Stage("embedding")
	f.Report(3, 10)
	f.Report(7, 10)
	want := Snapshot{Stage: "embedding", Done: 7, Total: 10}
	if got := tr.Load(); got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}

	var nilFunc Func
	nilFunc.Report(1, 2) // must not panic
}

func TestRunDisabled(t *testing.T) {
	var buf bytes.Buffer
	called := false
	err := Run(context.Background(), Options{Writer: &buf}, func(ctx context.Context, tr *Tracker) error {
		called = true
		tr.Stage("work")(1, 1)
		return nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !called {
		t.Errorf("Run() did not call work")
	}
	if buf.Len() != 0 {
		t.Errorf("Run() with Enabled unset wrote %q", buf.String())
	}
}

func TestRunEnabled(t *testing.T) {
	var buf bytes.Buffer
	opts := Options{Enabled: true, Writer: &buf, Interval: time.Millisecond}
	err := Run(context.Background(), opts, func(ctx context.Context, tr *Tracker) error {
		f := tr.Stage("writing")
		for i := uint64(0); i <= 20; i++ {
			f.Report(i, 20)
			time.Sleep(time.Millisecond)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(buf.String(), "writing") {
		t.Errorf("Run() output %q does not mention the stage", buf.String())
	}
}

func TestRunPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	var buf bytes.Buffer
	opts := Options{Enabled: true, Writer: &buf, Interval: time.Millisecond}
	err := Run(context.Background(), opts, func(ctx context.Context, tr *Tracker) error {
		tr.Stage("reading")(1, 2)
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("Run() error = %v, want %v", err, boom)
	}
}

func TestReaderWriterCount(t *testing.T) {
	var last [2]uint64
	f := Func(func(done, total uint64) { last = [2]uint64{done, total} })

	r := &Reader{R: strings.NewReader("hello world"), Total: 11, Func: f}
	if _, err := io.Copy(io.Discard, r); err != nil {
		t.Fatalf("Copy() error = %v", err)
	}
	if last != [2]uint64{11, 11} {
		t.Errorf("Reader reported %v, want [11 11]", last)
	}

	var buf bytes.Buffer
	w := &Writer{W: &buf, Total: 8, Func: f}
	w.Write([]byte("abc"))
	w.Write([]byte("defgh"))
	if last != [2]uint64{8, 8} {
		t.Errorf("Writer reported %v, want [8 8]", last)
	}
	if buf.String() != "abcdefgh" {
		t.Errorf("Writer wrote %q", buf.String())
	}

	// A nil Func only counts.
	r = &Reader{R: strings.NewReader("x")}
	if _, err := io.ReadAll(r); err != nil {
		t.Errorf("ReadAll() error = %v", err)
	}
}
