package llm

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockTurn represents a single scripted response from the mock provider.
type MockTurn struct {
	Fragments []string      // Fragments to emit, in order
	Text      string        // Convenience: text to chunk when Fragments is empty
	Delay     time.Duration // Optional delay before responding
	Error     error         // Return this error instead of responding
}

// MockProvider is a configurable provider for testing.
// It returns scripted responses and records all requests for verification.
type MockProvider struct {
	name      string
	turns     []MockTurn
	turnIndex int
	Requests  []Request // Recorded requests for verification
	mu        sync.Mutex
}

// NewMockProvider creates a new mock provider with the given name.
func NewMockProvider(name string) *MockProvider {
	return &MockProvider{name: name}
}

// Name returns the provider name.
func (m *MockProvider) Name() string {
	return m.name
}

// AddTurn adds a response turn and returns the provider for chaining.
func (m *MockProvider) AddTurn(t MockTurn) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = append(m.turns, t)
	return m
}

// AddTextResponse is a convenience method to add a simple text response.
func (m *MockProvider) AddTextResponse(text string) *MockProvider {
	return m.AddTurn(MockTurn{Text: text})
}

// AddFragments adds a turn that streams exactly the given fragments.
func (m *MockProvider) AddFragments(fragments ...string) *MockProvider {
	return m.AddTurn(MockTurn{Fragments: fragments})
}

// AddError adds a turn that fails with the given error.
func (m *MockProvider) AddError(err error) *MockProvider {
	return m.AddTurn(MockTurn{Error: err})
}

// Reset clears recorded requests and resets the turn index.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turnIndex = 0
	m.Requests = nil
}

func (m *MockProvider) nextTurn(req Request) (MockTurn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests = append(m.Requests, req)
	if m.turnIndex >= len(m.turns) {
		return MockTurn{}, fmt.Errorf("mock provider: no more turns configured (expected turn %d, have %d)", m.turnIndex, len(m.turns))
	}
	turn := m.turns[m.turnIndex]
	m.turnIndex++
	return turn, nil
}

// Stream implements the Provider interface.
func (m *MockProvider) Stream(ctx context.Context, req Request) (Stream, error) {
	turn, err := m.nextTurn(req)
	if err != nil {
		return nil, err
	}

	return newEventStream(ctx, func(ctx context.Context, ch chan<- Event) error {
		if turn.Delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(turn.Delay):
			}
		}

		if turn.Error != nil {
			return turn.Error
		}

		fragments := turn.Fragments
		if len(fragments) == 0 && turn.Text != "" {
			fragments = chunkText(turn.Text, 10)
		}
		for _, fragment := range fragments {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case ch <- Event{Type: EventTextDelta, Text: fragment}:
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case ch <- Event{Type: EventDone}:
		}
		return nil
	}), nil
}

// Generate implements the Provider interface.
func (m *MockProvider) Generate(ctx context.Context, req Request) (string, error) {
	turn, err := m.nextTurn(req)
	if err != nil {
		return "", err
	}
	if turn.Delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(turn.Delay):
		}
	}
	if turn.Error != nil {
		return "", turn.Error
	}
	if len(turn.Fragments) > 0 {
		var text string
		for _, f := range turn.Fragments {
			text += f
		}
		return text, nil
	}
	return turn.Text, nil
}

// chunkText splits text into chunks of approximately the given size.
// It tries to break at word boundaries when possible.
func chunkText(text string, chunkSize int) []string {
	if len(text) == 0 {
		return nil
	}
	if len(text) <= chunkSize {
		return []string{text}
	}

	var chunks []string
	for len(text) > 0 {
		if len(text) <= chunkSize {
			chunks = append(chunks, text)
			break
		}

		breakPoint := chunkSize
		for i := chunkSize; i > chunkSize/2; i-- {
			if text[i] == ' ' {
				breakPoint = i + 1 // include the space in current chunk
				break
			}
		}

		chunks = append(chunks, text[:breakPoint])
		text = text[breakPoint:]
	}
	return chunks
}
