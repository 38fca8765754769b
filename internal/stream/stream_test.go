package stream

import (
	"errors"
	"io"
	"testing"
)

func TestFromSlice(t *testing.T) {
	s := FromSlice("a", "b", "c")
	got, err := Collect(s)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if got != "abc" {
		t.Errorf("Collect() = %q, want %q", got, "abc")
	}
}

func TestFromSliceWithError(t *testing.T) {
	boom := errors.New("boom")
	got, err := Collect(FromSliceWithError(boom, "partial "))
	if !errors.Is(err, boom) {
		t.Fatalf("Collect() error = %v, want %v", err, boom)
	}
	if got != "partial " {
		t.Errorf("Collect() = %q, want text delivered before the failure", got)
	}
}

func TestFromSeq(t *testing.T) {
	stopped := false
	seq := func(yield func(string, error) bool) {
		defer func() { stopped = true }()
		for _, c := range []string{"one ", "two"} {
			if !yield(c, nil) {
				return
			}
		}
	}

	s := FromSeq(seq)
	first, err := s.Recv()
	if err != nil || first != "one " {
		t.Fatalf("Recv() = %q, %v", first, err)
	}
	second, err := s.Recv()
	if err != nil || second != "two" {
		t.Fatalf("Recv() = %q, %v", second, err)
	}
	if _, err := s.Recv(); !errors.Is(err, io.EOF) {
		t.Fatalf("Recv() after end = %v, want io.EOF", err)
	}
	if _, err := s.Recv(); !errors.Is(err, io.EOF) {
		t.Fatalf("Recv() is not forward-only: %v", err)
	}
	if !stopped {
		t.Error("iterator was not released")
	}
}

func TestFromSeq_Error(t *testing.T) {
	boom := errors.New("remote failed")
	seq := func(yield func(string, error) bool) {
		if !yield("x", nil) {
			return
		}
		yield("", boom)
	}

	got, err := Collect(FromSeq(seq))
	if !errors.Is(err, boom) {
		t.Fatalf("Collect() error = %v, want %v", err, boom)
	}
	if got != "x" {
		t.Errorf("Collect() = %q, want %q", got, "x")
	}
}

func TestFromSeq_CloseEarly(t *testing.T) {
	stopped := false
	seq := func(yield func(string, error) bool) {
		defer func() { stopped = true }()
		for {
			if !yield("loop", nil) {
				return
			}
		}
	}

	s := FromSeq(seq)
	if _, err := s.Recv(); err != nil {
		t.Fatal(err)
	}
	s.Close()
	s.Close()
	if !stopped {
		t.Error("Close did not stop the iterator")
	}
}
