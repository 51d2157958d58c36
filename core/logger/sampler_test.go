package logger

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestRatioSamplerPattern(t *testing.T) {
	s := newRatioSampler(2, 5)
	want := []bool{true, true, false, false, false, true, true, false}
	for i, w := range want {
		if got := s.Allow(); got != w {
			t.Fatalf("event %d: got %v, want %v", i, got, w)
		}
	}

	s.Set(0, 0)
	for i := 0; i < 3; i++ {
		if !s.Allow() {
			t.Fatal("disabled sampler must pass every event")
		}
	}

	s.Set(9, 3)
	for i := 0; i < 4; i++ {
		if !s.Allow() {
			t.Fatal("numerator above denominator must pass every event")
		}
	}
}

func TestParseRatioSpec(t *testing.T) {
	cases := map[string][2]int{
		"1/50":  {1, 50},
		" 3/4 ": {3, 4},
		"10":    {1, 10},
		"0":     {0, 0},
		"-2":    {0, 0},
		"a/b":   {0, 0},
		"":      {0, 0},
		"off":   {0, 0},
	}
	for spec, want := range cases {
		n, d := parseRatioSpec(spec)
		if n != want[0] || d != want[1] {
			t.Fatalf("parseRatioSpec(%q) = %d/%d, want %d/%d", spec, n, d, want[0], want[1])
		}
	}
}

func TestAsyncWriterFlushCoversQueuedLines(t *testing.T) {
	a, b := &bytes.Buffer{}, &bytes.Buffer{}
	w := newAsyncWriter([]io.Writer{a, nil, b}, 16)
	for _, line := range []string{"one\n", "two\n", "three\n"} {
		if err := w.Write([]byte(line)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if a.String() != "one\ntwo\nthree\n" || b.String() != a.String() {
		t.Fatalf("unexpected sink content: %q / %q", a.String(), b.String())
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := w.Write([]byte("late\n")); !errors.Is(err, errWriterClosed) {
		t.Fatalf("write after close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestAsyncWriterKeepsFirstError(t *testing.T) {
	w := newAsyncWriter([]io.Writer{failingWriter{}}, 1)
	_ = w.Write([]byte("x\n"))
	if err := w.Close(); err == nil {
		t.Fatal("expected sink error on close")
	}
	if err := w.Write([]byte("y\n")); err == nil {
		t.Fatal("expected sticky error")
	}
}
