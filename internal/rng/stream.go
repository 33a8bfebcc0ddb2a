package rng

import (
	"context"
	"fmt"
)

// streamBatch is how many raw values a stream fetches per source call.
const streamBatch = 64

// Stream consumes raw values from a Source in fixed order, buffering in
// batches. A round owns exactly one stream; later draws depend on the
// logical position established by earlier ones, so a stream must never
// be shared or reordered.
type Stream struct {
	src Source
	buf []uint64
	pos int
}

// NewStream creates a stream over src.
func NewStream(src Source) *Stream {
	return &Stream{src: src}
}

// next returns the next raw value, refilling the buffer as needed.
func (s *Stream) next(ctx context.Context) (uint64, error) {
	if s.pos >= len(s.buf) {
		seeds, err := s.src.Seeds(ctx, streamBatch)
		if err != nil {
			return 0, err
		}
		s.buf = seeds
		s.pos = 0
	}
	v := s.buf[s.pos]
	s.pos++
	return v, nil
}

// Intn maps the next raw value into [0, n) by modulo reduction.
func (s *Stream) Intn(ctx context.Context, n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("bound must be positive, got %d", n)
	}
	v, err := s.next(ctx)
	if err != nil {
		return 0, err
	}
	return int(v % uint64(n)), nil
}

// Pick selects an index from a weight table. Weights must be
// non-negative with a positive total.
func (s *Stream) Pick(ctx context.Context, weights []int) (int, error) {
	total := 0
	for _, w := range weights {
		if w < 0 {
			return 0, fmt.Errorf("weights cannot be negative")
		}
		total += w
	}
	if total <= 0 {
		return 0, fmt.Errorf("total weight must be positive")
	}

	n, err := s.Intn(ctx, total)
	if err != nil {
		return 0, err
	}
	for i, w := range weights {
		if n < w {
			return i, nil
		}
		n -= w
	}
	return len(weights) - 1, nil
}
