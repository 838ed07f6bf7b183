package interview

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/markvz/proefgesprek/internal/llm"
)

// FallbackText is appended to the transcript when a generation fails,
// so the interview can continue. Raw backend errors never reach the
// transcript.
const FallbackText = "Sorry, er ging iets mis. Laten we het gesprek voortzetten. Kun je me vertellen wat je motivatie is voor deze functie?"

// DefaultFeedbackDelay is how long the orchestrator waits after the
// final candidate turn before switching to the feedback phase.
const DefaultFeedbackDelay = 2 * time.Second

var (
	ErrMissingJobTitle = errors.New("job title is required")
	ErrWrongPhase      = errors.New("operation not allowed in current phase")
	ErrFeedbackExists  = errors.New("feedback already generated")
	ErrBusy            = errors.New("a generation is already in flight")
)

// Generator is the narrow generation capability the orchestrator
// depends on. The relay client implements it; tests script it.
type Generator interface {
	GenerateStream(ctx context.Context, prompt string) (llm.Stream, error)
	Generate(ctx context.Context, prompt string) (string, error)
}

// Orchestrator owns the interview state: phase, transcript and question
// counter. All mutation happens on the single logical turn flow; at
// most one generation is ever in flight, enforced here rather than in
// any UI layer.
type Orchestrator struct {
	gen           Generator
	feedbackDelay time.Duration
	onToken       func(full string)

	mu         sync.Mutex
	phase      Phase
	session    Session
	transcript []Message
	questions  int
	inFlight   bool
	cancel     context.CancelFunc
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithFeedbackDelay overrides the settle delay before the feedback
// phase. Zero makes the transition immediate (used in tests).
func WithFeedbackDelay(d time.Duration) Option {
	return func(o *Orchestrator) { o.feedbackDelay = d }
}

// WithTokenCallback registers a hook that receives the accumulated
// interviewer text after every fragment, for incremental rendering.
func WithTokenCallback(fn func(full string)) Option {
	return func(o *Orchestrator) { o.onToken = fn }
}

func New(gen Generator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		gen:           gen,
		feedbackDelay: DefaultFeedbackDelay,
		phase:         PhaseSetup,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Phase returns the current interview phase.
func (o *Orchestrator) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

// Session returns the active session profile.
func (o *Orchestrator) Session() Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session
}

// Questions returns the completed interviewer turn count.
func (o *Orchestrator) Questions() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.questions
}

// Generating reports whether a generation is in flight.
func (o *Orchestrator) Generating() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inFlight
}

// Transcript returns a copy of the ordered message sequence.
func (o *Orchestrator) Transcript() []Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Message, len(o.transcript))
	copy(out, o.transcript)
	return out
}

// Start validates the session, resets transcript and counter, moves
// Setup->Interview and runs the opening generation. On validation
// failure no state changes.
func (o *Orchestrator) Start(ctx context.Context, session Session) error {
	o.mu.Lock()
	if o.phase != PhaseSetup {
		o.mu.Unlock()
		return ErrWrongPhase
	}
	if strings.TrimSpace(session.JobTitle) == "" {
		o.mu.Unlock()
		return ErrMissingJobTitle
	}
	o.session = session
	o.transcript = nil
	o.questions = 0
	o.phase = PhaseInterview
	o.mu.Unlock()

	return o.generate(ctx, OpeningPrompt(session))
}

// Submit processes one candidate turn. Empty text or an in-flight
// generation makes it a no-op (not queued). Once the question limit is
// reached the phase switches to feedback after the settle delay and no
// further generation is issued; otherwise the next question is
// generated from the session profile and the trailing transcript
// window.
func (o *Orchestrator) Submit(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)

	o.mu.Lock()
	if o.phase != PhaseInterview {
		o.mu.Unlock()
		return ErrWrongPhase
	}
	if text == "" || o.inFlight {
		o.mu.Unlock()
		return nil
	}
	o.transcript = append(o.transcript, newMessage(RoleCandidate, text))

	if o.questions >= QuestionLimit {
		delay := o.feedbackDelay
		if delay <= 0 {
			o.phase = PhaseFeedback
			o.mu.Unlock()
			return nil
		}
		o.mu.Unlock()
		time.AfterFunc(delay, func() {
			o.mu.Lock()
			if o.phase == PhaseInterview {
				o.phase = PhaseFeedback
			}
			o.mu.Unlock()
		})
		return nil
	}

	window := o.transcript
	if len(window) > HistoryWindow {
		window = window[len(window)-HistoryWindow:]
	}
	prompt := FollowUpPrompt(o.session, window, o.questions)
	o.mu.Unlock()

	return o.generate(ctx, prompt)
}

// generate runs one streaming generation to completion. A completed
// stream appends an interviewer message and bumps the counter; a
// failed one appends the fallback message; a cancelled one appends
// nothing. The transient stream state is always cleared.
func (o *Orchestrator) generate(ctx context.Context, prompt string) error {
	o.mu.Lock()
	if o.inFlight {
		o.mu.Unlock()
		return ErrBusy
	}
	genCtx, cancel := context.WithCancel(ctx)
	o.inFlight = true
	o.cancel = cancel
	o.mu.Unlock()

	defer func() {
		cancel()
		o.mu.Lock()
		o.inFlight = false
		o.cancel = nil
		o.mu.Unlock()
	}()

	stream, err := o.gen.GenerateStream(genCtx, prompt)
	if err != nil {
		if genCtx.Err() != nil || errors.Is(err, context.Canceled) {
			return nil // cancelled before the stream opened, append nothing
		}
		o.appendFallback()
		return nil
	}
	defer stream.Close()

	var full strings.Builder
	for {
		event, err := stream.Recv()
		if err != nil {
			if genCtx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil // cancelled: deliberate, append nothing
			}
			if err == io.EOF {
				// Stream ended without a terminal event.
				o.appendFallback()
				return nil
			}
			o.appendFallback()
			return nil
		}

		switch event.Type {
		case llm.EventTextDelta:
			full.WriteString(event.Text)
			if o.onToken != nil {
				o.onToken(full.String())
			}
		case llm.EventDone:
			o.mu.Lock()
			o.transcript = append(o.transcript, newMessage(RoleInterviewer, full.String()))
			o.questions++
			o.mu.Unlock()
			return nil
		case llm.EventError:
			if errors.Is(event.Err, context.Canceled) {
				return nil
			}
			// Partial text is discarded; the fallback replaces it.
			o.appendFallback()
			return nil
		}
	}
}

func (o *Orchestrator) appendFallback() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.transcript = append(o.transcript, newMessage(RoleInterviewer, FallbackText))
}

// GenerateFeedback runs the full-transcript summarization and appends
// the result as the final interviewer message. It is guarded hard:
// once feedback exists (last entry is an interviewer turn) a second
// call returns ErrFeedbackExists.
func (o *Orchestrator) GenerateFeedback(ctx context.Context) error {
	o.mu.Lock()
	if o.phase != PhaseFeedback {
		o.mu.Unlock()
		return ErrWrongPhase
	}
	if o.inFlight {
		o.mu.Unlock()
		return ErrBusy
	}
	if n := len(o.transcript); n > 0 && o.transcript[n-1].Role == RoleInterviewer {
		o.mu.Unlock()
		return ErrFeedbackExists
	}
	prompt := FeedbackPrompt(o.session, o.transcript)
	o.inFlight = true
	o.mu.Unlock()

	text, err := o.gen.Generate(ctx, prompt)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.inFlight = false
	if err != nil {
		return err // surfaced to the caller; nothing is appended, retry is possible
	}
	o.transcript = append(o.transcript, newMessage(RoleInterviewer, text))
	return nil
}

// Cancel aborts the in-flight generation, if any.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	cancel := o.cancel
	o.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Reset cancels any in-flight generation, clears the session,
// transcript and counter, and unconditionally lands in Setup.
func (o *Orchestrator) Reset() {
	o.Cancel()
	o.mu.Lock()
	defer o.mu.Unlock()
	o.phase = PhaseSetup
	o.session = Session{}
	o.transcript = nil
	o.questions = 0
}

// Restart repeats the interview with the same settings: the transcript
// and counter are cleared and a fresh opening question is generated.
// Only valid from the feedback phase.
func (o *Orchestrator) Restart(ctx context.Context) error {
	o.mu.Lock()
	if o.phase != PhaseFeedback {
		o.mu.Unlock()
		return ErrWrongPhase
	}
	o.transcript = nil
	o.questions = 0
	o.phase = PhaseInterview
	session := o.session
	o.mu.Unlock()

	return o.generate(ctx, OpeningPrompt(session))
}
