package stream

import (
	"errors"
	"io"
	"iter"
	"strings"
	"sync"
)

// ChunkStream is a finite, forward-only sequence of text chunks. Recv
// returns io.EOF once the remote side has finished. A stream cannot be
// restarted; callers issue a new request instead.
type ChunkStream interface {
	Recv() (string, error)
	Close() error
}

type seqStream struct {
	next func() (string, error, bool)
	stop func()
	once sync.Once
	done bool
}

// FromSeq adapts an iterator of chunks to a ChunkStream. The first error
// yielded by the iterator ends the stream.
func FromSeq(seq iter.Seq2[string, error]) ChunkStream {
	next, stop := iter.Pull2(seq)
	return &seqStream{next: next, stop: stop}
}

func (s *seqStream) Recv() (string, error) {
	if s.done {
		return "", io.EOF
	}
	text, err, ok := s.next()
	if !ok {
		s.done = true
		s.Close()
		return "", io.EOF
	}
	if err != nil {
		s.done = true
		s.Close()
		return "", err
	}
	return text, nil
}

func (s *seqStream) Close() error {
	s.once.Do(s.stop)
	return nil
}

type sliceStream struct {
	chunks []string
	err    error
	pos    int
}

// FromSlice returns a stream yielding chunks in order.
func FromSlice(chunks ...string) ChunkStream {
	return &sliceStream{chunks: chunks}
}

// FromSliceWithError yields chunks and then fails with err instead of io.EOF.
func FromSliceWithError(err error, chunks ...string) ChunkStream {
	return &sliceStream{chunks: chunks, err: err}
}

func (s *sliceStream) Recv() (string, error) {
	if s.pos >= len(s.chunks) {
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}
	chunk := s.chunks[s.pos]
	s.pos++
	return chunk, nil
}

func (s *sliceStream) Close() error { return nil }

// Collect drains the stream and returns the concatenated text. Text
// received before a failure is returned along with the error.
func Collect(s ChunkStream) (string, error) {
	defer s.Close()

	var sb strings.Builder
	for {
		chunk, err := s.Recv()
		if errors.Is(err, io.EOF) {
			return sb.String(), nil
		}
		if err != nil {
			return sb.String(), err
		}
		sb.WriteString(chunk)
	}
}
