package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/markvz/proefgesprek/internal/llm"
)

// State tracks one in-flight stream on the consumer side. There are no
// transitions out of a terminal state.
type State int

const (
	StateIdle State = iota
	StateAwaitingFirstByte
	StateStreaming
	StateCompleted
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingFirstByte:
		return "awaiting-first-byte"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ErrUnexpectedEOF reports a byte source that ended without a terminal
// done or error frame.
var ErrUnexpectedEOF = errors.New("stream ended without terminal frame")

// framePayload mirrors the relay's wire frames.
type framePayload struct {
	Token   string `json:"token"`
	Done    bool   `json:"done"`
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

// Consumer reassembles stream events from an SSE byte source. Frames
// may arrive split across any number of physical chunks; a trailing
// partial record is buffered until its newline arrives. Records
// without the data prefix are keep-alive noise and are ignored;
// records that fail to parse are dropped without aborting the stream.
//
// Consumer implements llm.Stream. It is restartable only by opening a
// new byte source.
type Consumer struct {
	ctx    context.Context
	cancel context.CancelFunc
	body   io.ReadCloser
	events chan llm.Event

	mu    sync.Mutex
	state State
	text  strings.Builder
	err   error
}

// NewConsumer starts consuming the byte source. Cancelling ctx (or
// calling Close) stops reading, releases the source and lands the
// consumer in StateCancelled within bounded time.
func NewConsumer(ctx context.Context, body io.ReadCloser) *Consumer {
	ctx, cancel := context.WithCancel(ctx)
	c := &Consumer{
		ctx:    ctx,
		cancel: cancel,
		body:   body,
		events: make(chan llm.Event, 16),
		state:  StateIdle,
	}
	go c.readLoop()
	return c
}

func (c *Consumer) readLoop() {
	defer close(c.events)
	defer c.body.Close()

	// Unblock a pending body.Read when the context is cancelled.
	stop := context.AfterFunc(c.ctx, func() { c.body.Close() })
	defer stop()

	c.setState(StateAwaitingFirstByte)

	buf := make([]byte, 4096)
	var pending string
	for {
		n, err := c.body.Read(buf)
		if n > 0 {
			pending += string(buf[:n])
			for {
				idx := strings.Index(pending, "\n")
				if idx < 0 {
					break
				}
				line := pending[:idx]
				pending = pending[idx+1:]
				if c.handleLine(line) {
					return
				}
			}
		}
		if err != nil {
			if c.ctx.Err() != nil {
				c.finish(StateCancelled, nil)
				return
			}
			if err == io.EOF {
				err = ErrUnexpectedEOF
			}
			c.finish(StateFailed, err)
			c.emit(llm.Event{Type: llm.EventError, Err: err})
			return
		}
	}
}

// handleLine decodes one complete record. It reports whether the
// record was terminal.
func (c *Consumer) handleLine(line string) bool {
	line = strings.TrimRight(line, "\r")
	if !strings.HasPrefix(line, "data:") {
		return false // comment or keep-alive
	}
	raw := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
	if raw == "" {
		return false
	}

	var frame framePayload
	if err := json.Unmarshal([]byte(raw), &frame); err != nil {
		// A malformed single frame must not take down the stream.
		log.Printf("relay client: dropping malformed frame: %v", err)
		return false
	}

	switch {
	case frame.Error:
		message := frame.Message
		if message == "" {
			message = "Streaming error"
		}
		err := errors.New(message)
		c.finish(StateFailed, err)
		c.emit(llm.Event{Type: llm.EventError, Err: err})
		return true
	case frame.Done:
		c.finish(StateCompleted, nil)
		c.emit(llm.Event{Type: llm.EventDone})
		return true
	case frame.Token != "":
		c.mu.Lock()
		c.text.WriteString(frame.Token)
		c.mu.Unlock()
		c.setState(StateStreaming)
		c.emit(llm.Event{Type: llm.EventTextDelta, Text: frame.Token})
		return false
	default:
		return false
	}
}

func (c *Consumer) emit(event llm.Event) {
	select {
	case c.events <- event:
	case <-c.ctx.Done():
	}
}

func (c *Consumer) setState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state >= StateCompleted {
		return // terminal states are final
	}
	c.state = s
}

func (c *Consumer) finish(s State, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state >= StateCompleted {
		return
	}
	c.state = s
	c.err = err
}

// Recv returns the next decoded event. It returns io.EOF after the
// terminal event and the context error after cancellation.
func (c *Consumer) Recv() (llm.Event, error) {
	select {
	case event, ok := <-c.events:
		if !ok {
			return llm.Event{}, io.EOF
		}
		return event, nil
	default:
	}

	select {
	case <-c.ctx.Done():
		return llm.Event{}, c.ctx.Err()
	case event, ok := <-c.events:
		if !ok {
			return llm.Event{}, io.EOF
		}
		return event, nil
	}
}

// Close cancels the stream and releases the byte source.
func (c *Consumer) Close() error {
	c.cancel()
	return nil
}

// State returns the current stream state.
func (c *Consumer) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Text returns the accumulated full text so far.
func (c *Consumer) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text.String()
}

// Err returns the terminal error, if any.
func (c *Consumer) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}
