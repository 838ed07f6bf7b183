package llm

import "context"

// EventType identifies the kind of a stream event.
type EventType int

const (
	// EventTextDelta carries one fragment of generated text.
	EventTextDelta EventType = iota
	// EventDone marks successful end of stream. No events follow it.
	EventDone
	// EventError marks failed end of stream. No events follow it.
	EventError
)

// Event is one unit of a generation stream: a text fragment or a
// terminal marker. Every stream ends with exactly one EventDone or
// EventError.
type Event struct {
	Type EventType
	Text string
	Err  error
}

// Stream delivers events in generation order. Recv blocks until the
// next event is available, returns io.EOF after the terminal event,
// and the context error if the stream was cancelled. Close releases
// the stream and unblocks the producer.
type Stream interface {
	Recv() (Event, error)
	Close() error
}

// Request describes a single generation call.
type Request struct {
	Prompt string
	Model  string // concrete backend model ID; empty means provider default
}

// Provider is a generation backend. Implementations must be safe for
// concurrent use: one provider instance is shared by all in-flight
// relay requests.
type Provider interface {
	Name() string
	// Stream starts a streaming generation.
	Stream(ctx context.Context, req Request) (Stream, error)
	// Generate runs a blocking generation and returns the full text.
	Generate(ctx context.Context, req Request) (string, error)
}
