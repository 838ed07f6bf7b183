package relay

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/markvz/proefgesprek/internal/llm"
)

// MaxPromptLen is the request-validation cap on prompt size. Oversized
// input is rejected before the backend is touched.
const MaxPromptLen = 100000

// ProviderFactory builds the shared generation backend. It is invoked
// lazily on the first request that needs it; the resulting provider is
// reused by all subsequent requests.
type ProviderFactory func(ctx context.Context) (llm.Provider, error)

// Server bridges backend token streams onto newline-framed SSE
// responses. One Server handles any number of concurrent requests; the
// only shared mutable state is the lazily-built provider.
type Server struct {
	factory ProviderFactory
	models  map[string]string // aiModel selector -> backend model ID

	mu       sync.Mutex
	provider llm.Provider
}

func NewServer(factory ProviderFactory, models map[string]string) *Server {
	return &Server{factory: factory, models: models}
}

// Handler returns the http.Handler for the relay endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat-stream", s.cors(s.handleChatStream))
	mux.HandleFunc("/api/chat", s.cors(s.handleChat))
	return mux
}

// chatRequest is the shared request shape of both endpoints.
type chatRequest struct {
	Message string `json:"message"`
	AIModel string `json:"aiModel"`
}

// getProvider builds the backend on first use. Failures are not
// cached: a key added to the environment takes effect on the next
// request, matching the per-request check of the original deployment.
func (s *Server) getProvider(ctx context.Context) (llm.Provider, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.provider != nil {
		return s.provider, nil
	}
	provider, err := s.factory(ctx)
	if err != nil {
		return nil, err
	}
	s.provider = provider
	return provider, nil
}

// resolveModel maps the model selector onto a backend model ID.
// Unknown selectors fall through to the "internet" model, like the
// original mapping did.
func (s *Server) resolveModel(aiModel string) string {
	if model, ok := s.models[aiModel]; ok {
		return model
	}
	return s.models["internet"]
}

// validate runs the pre-flight contract checks shared by both
// endpoints. It writes the failure response itself and reports whether
// the request may proceed.
func (s *Server) validate(w http.ResponseWriter, r *http.Request) (chatRequest, bool) {
	var req chatRequest
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "Methode niet toegestaan")
		return req, false
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Ongeldig verzoek")
		return req, false
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "Bericht is vereist")
		return req, false
	}
	if len(req.Message) > MaxPromptLen {
		writeError(w, http.StatusBadRequest, "Bericht moet een string zijn van maximaal 100.000 karakters")
		return req, false
	}
	return req, true
}

// writeBackendError reports a failure to reach or build the backend.
// This happens before any stream is opened, so a plain status response
// is still possible.
func writeBackendError(w http.ResponseWriter, err error) {
	if errors.Is(err, llm.ErrNoCredentials) {
		writeError(w, http.StatusInternalServerError, "API configuratie ontbreekt. Check Environment Variables.")
		return
	}
	writeError(w, http.StatusInternalServerError, llm.UserMessage(err))
}

func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	req, ok := s.validate(w, r)
	if !ok {
		return
	}

	provider, err := s.getProvider(r.Context())
	if err != nil {
		writeBackendError(w, err)
		return
	}

	stream, err := provider.Stream(r.Context(), llm.Request{
		Prompt: req.Message,
		Model:  s.resolveModel(req.AIModel),
	})
	if err != nil {
		writeBackendError(w, err)
		return
	}
	defer stream.Close()

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming niet ondersteund")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for {
		event, err := stream.Recv()
		if err == io.EOF {
			// Producer closed without a terminal event. Treat the
			// generation as truncated rather than presenting it as
			// complete.
			_ = writeFrame(w, errorFrame(llm.UserMessage(err)))
			flusher.Flush()
			return
		}
		if err != nil {
			// Recv only fails when the request context is cancelled:
			// the peer is gone, stop emitting silently.
			return
		}

		switch event.Type {
		case llm.EventTextDelta:
			// One frame per upstream fragment, never merged or split.
			if writeFrame(w, tokenFrame(event.Text)) != nil {
				return
			}
			flusher.Flush()
		case llm.EventDone:
			_ = writeFrame(w, doneFrame())
			flusher.Flush()
			return
		case llm.EventError:
			_ = writeFrame(w, errorFrame(llm.UserMessage(event.Err)))
			flusher.Flush()
			return
		}
	}
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	req, ok := s.validate(w, r)
	if !ok {
		return
	}

	provider, err := s.getProvider(r.Context())
	if err != nil {
		writeBackendError(w, err)
		return
	}

	text, err := provider.Generate(r.Context(), llm.Request{
		Prompt: req.Message,
		Model:  s.resolveModel(req.AIModel),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, llm.UserMessage(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"response": text,
		"success":  true,
	})
}

// cors applies the permissive CORS policy of the original deployment
// and answers preflight requests.
func (s *Server) cors(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next(w, r)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
