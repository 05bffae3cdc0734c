package decoder

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Source yields frames in capture order. Next returns io.EOF once the stream
// is exhausted.
type Source interface {
	Next() (Frame, error)
}

// Sink receives events in the order they are decoded.
type Sink func(Event) error

// SliceSource serves frames from memory.
type SliceSource struct {
	frames []Frame
	pos    int
}

// NewSliceSource wraps frames as a Source.
func NewSliceSource(frames []Frame) *SliceSource {
	return &SliceSource{frames: frames}
}

// Next implements Source.
func (s *SliceSource) Next() (Frame, error) {
	if s.pos >= len(s.frames) {
		return Frame{}, io.EOF
	}
	f := s.frames[s.pos]
	s.pos++
	return f, nil
}

// Run drains src through the decoder, handing each event to sink. The context
// is consulted between frames; a frame is always processed to completion. Run
// returns the number of frames consumed.
func (d *Decoder) Run(ctx context.Context, src Source, sink Sink) (int, error) {
	n := 0
	for {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		f, err := src.Next()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("decoder: reading frame %d: %w", n, err)
		}

		ev, ok, err := d.Step(f)
		if err != nil {
			return n, fmt.Errorf("decoder: frame %d: %w", n, err)
		}
		n++
		if !ok || sink == nil {
			continue
		}
		if err := sink(ev); err != nil {
			return n, err
		}
	}
}

// Decode runs a fresh decoder over frames and collects the events.
func Decode(frames []Frame, opts ...Option) ([]Event, error) {
	d, err := New(opts...)
	if err != nil {
		return nil, err
	}
	var events []Event
	_, err = d.Run(context.Background(), NewSliceSource(frames), func(ev Event) error {
		events = append(events, ev)
		return nil
	})
	return events, err
}
