package llm

import (
	"context"
	"io"
)

type channelStream struct {
	ctx    context.Context
	cancel context.CancelFunc
	events <-chan Event
}

// newEventStream runs the producer in a goroutine and exposes the
// resulting events as a Stream. A non-nil error from run is converted
// into a terminal EventError so consumers see exactly one terminal
// event per stream.
func newEventStream(ctx context.Context, run func(context.Context, chan<- Event) error) Stream {
	streamCtx, cancel := context.WithCancel(ctx)
	ch := make(chan Event, 16)
	go func() {
		defer close(ch)
		if err := run(streamCtx, ch); err != nil {
			ch <- Event{Type: EventError, Err: err}
		}
	}()
	return &channelStream{ctx: streamCtx, cancel: cancel, events: ch}
}

func (s *channelStream) Recv() (Event, error) {
	// Drain any buffered event before checking ctx.Done() so a
	// terminal event already in flight is not dropped on cancel.
	select {
	case event, ok := <-s.events:
		if !ok {
			return Event{}, io.EOF
		}
		return event, nil
	default:
	}

	select {
	case <-s.ctx.Done():
		return Event{}, s.ctx.Err()
	case event, ok := <-s.events:
		if !ok {
			return Event{}, io.EOF
		}
		return event, nil
	}
}

func (s *channelStream) Close() error {
	s.cancel()
	return nil
}

// Collect drains a stream and returns the concatenated text. The
// stream is closed before returning.
func Collect(stream Stream) (string, error) {
	defer stream.Close()
	var text string
	for {
		event, err := stream.Recv()
		if err == io.EOF {
			return text, nil
		}
		if err != nil {
			return text, err
		}
		switch event.Type {
		case EventTextDelta:
			text += event.Text
		case EventDone:
			return text, nil
		case EventError:
			return text, event.Err
		}
	}
}
