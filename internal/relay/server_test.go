package relay

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/markvz/proefgesprek/internal/llm"
)

func newTestServer(t *testing.T, mock *llm.MockProvider) *httptest.Server {
	t.Helper()
	factory := func(ctx context.Context) (llm.Provider, error) {
		return mock, nil
	}
	server := NewServer(factory, map[string]string{
		"pro":      "model-pro",
		"smart":    "model-smart",
		"internet": "model-internet",
	})
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	return resp
}

// readFrames parses every data record from a streaming response body.
func readFrames(t *testing.T, body io.Reader) []framePayload {
	t.Helper()
	var frames []framePayload
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var frame framePayload
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &frame); err != nil {
			t.Fatalf("malformed frame %q: %v", line, err)
		}
		frames = append(frames, frame)
	}
	return frames
}

func TestStreamFrameSequence(t *testing.T) {
	mock := llm.NewMockProvider("test").AddFragments("Hallo", " en", " welkom.")
	ts := newTestServer(t, mock)

	resp := postJSON(t, ts.URL+"/api/chat-stream", `{"message":"Stel een vraag.","aiModel":"smart"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content-type = %q", ct)
	}

	frames := readFrames(t, resp.Body)
	if len(frames) != 4 {
		t.Fatalf("expected 4 frames, got %d: %+v", len(frames), frames)
	}
	wantTokens := []string{"Hallo", " en", " welkom."}
	for i, want := range wantTokens {
		if frames[i].Token != want {
			t.Fatalf("frame %d token = %q, want %q", i, frames[i].Token, want)
		}
		if frames[i].Done || frames[i].Error {
			t.Fatalf("frame %d unexpectedly terminal: %+v", i, frames[i])
		}
	}
	last := frames[3]
	if !last.Done || last.Error || last.Token != "" {
		t.Fatalf("final frame = %+v, want done", last)
	}
}

func TestStreamValidation(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
	}{
		{"empty message", `{"message":"","aiModel":"smart"}`, http.StatusBadRequest, "Bericht is vereist"},
		{"missing message", `{"aiModel":"smart"}`, http.StatusBadRequest, "Bericht is vereist"},
		{"malformed json", `{"message":`, http.StatusBadRequest, "Ongeldig verzoek"},
		{
			"oversized message",
			`{"message":"` + strings.Repeat("a", MaxPromptLen+1) + `"}`,
			http.StatusBadRequest,
			"Bericht moet een string zijn van maximaal 100.000 karakters",
		},
	}

	for _, endpoint := range []string{"/api/chat-stream", "/api/chat"} {
		for _, tt := range tests {
			t.Run(endpoint+" "+tt.name, func(t *testing.T) {
				mock := llm.NewMockProvider("test")
				ts := newTestServer(t, mock)

				resp := postJSON(t, ts.URL+endpoint, tt.body)
				defer resp.Body.Close()

				if resp.StatusCode != tt.wantStatus {
					t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
				}
				var body map[string]string
				if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if body["error"] != tt.wantError {
					t.Fatalf("error = %q, want %q", body["error"], tt.wantError)
				}
				if len(mock.Requests) != 0 {
					t.Fatalf("backend must not be called on validation failure")
				}
			})
		}
	}
}

func TestStreamMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, llm.NewMockProvider("test"))

	resp, err := http.Get(ts.URL + "/api/chat-stream")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", resp.StatusCode)
	}
}

func TestMissingCredentials(t *testing.T) {
	factory := func(ctx context.Context) (llm.Provider, error) {
		return nil, llm.ErrNoCredentials
	}
	server := NewServer(factory, map[string]string{"internet": "model-internet"})
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/api/chat-stream", `{"message":"hoi"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := "API configuratie ontbreekt. Check Environment Variables."
	if body["error"] != want {
		t.Fatalf("error = %q, want %q", body["error"], want)
	}
}

func TestStreamBackendError(t *testing.T) {
	mock := llm.NewMockProvider("test").AddError(errors.New("invalid api key"))
	ts := newTestServer(t, mock)

	resp := postJSON(t, ts.URL+"/api/chat-stream", `{"message":"hoi"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d; backend failures after stream start must not change the status", resp.StatusCode)
	}

	frames := readFrames(t, resp.Body)
	if len(frames) != 1 {
		t.Fatalf("expected a single error frame, got %+v", frames)
	}
	if !frames[0].Error || frames[0].Done {
		t.Fatalf("frame = %+v, want error", frames[0])
	}
	if frames[0].Message != "Ongeldige API-sleutel. Controleer je configuratie." {
		t.Fatalf("message = %q", frames[0].Message)
	}
}

// truncatedStream closes without ever producing a terminal event.
type truncatedStream struct{}

func (truncatedStream) Recv() (llm.Event, error) { return llm.Event{}, io.EOF }
func (truncatedStream) Close() error             { return nil }

type truncatedProvider struct{}

func (truncatedProvider) Name() string { return "truncated" }

func (truncatedProvider) Stream(ctx context.Context, req llm.Request) (llm.Stream, error) {
	return truncatedStream{}, nil
}

func (truncatedProvider) Generate(ctx context.Context, req llm.Request) (string, error) {
	return "", io.ErrUnexpectedEOF
}

func TestStreamTruncatedBackend(t *testing.T) {
	factory := func(ctx context.Context) (llm.Provider, error) {
		return truncatedProvider{}, nil
	}
	server := NewServer(factory, map[string]string{"internet": "model-internet"})
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/api/chat-stream", `{"message":"hoi"}`)
	defer resp.Body.Close()

	frames := readFrames(t, resp.Body)
	if len(frames) != 1 {
		t.Fatalf("expected a single terminal frame, got %+v", frames)
	}
	if !frames[0].Error || frames[0].Done {
		t.Fatalf("a backend stream that ends without a terminal event must not read as done, got %+v", frames[0])
	}
	if frames[0].Message == "" {
		t.Fatalf("error frame without message: %+v", frames[0])
	}
}

func TestModelResolution(t *testing.T) {
	tests := []struct {
		selector string
		want     string
	}{
		{"pro", "model-pro"},
		{"smart", "model-smart"},
		{"internet", "model-internet"},
		{"", "model-internet"},
		{"bogus", "model-internet"},
	}
	for _, tt := range tests {
		t.Run("selector "+tt.selector, func(t *testing.T) {
			mock := llm.NewMockProvider("test").AddFragments("ok")
			ts := newTestServer(t, mock)

			payload, _ := json.Marshal(map[string]string{"message": "hoi", "aiModel": tt.selector})
			resp := postJSON(t, ts.URL+"/api/chat-stream", string(payload))
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()

			if len(mock.Requests) != 1 {
				t.Fatalf("expected 1 request, got %d", len(mock.Requests))
			}
			if got := mock.Requests[0].Model; got != tt.want {
				t.Fatalf("model = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestChatEndpoint(t *testing.T) {
	mock := llm.NewMockProvider("test").AddTextResponse("Hier is je feedback.")
	ts := newTestServer(t, mock)

	resp := postJSON(t, ts.URL+"/api/chat", `{"message":"Analyseer dit gesprek.","aiModel":"pro"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body struct {
		Response string `json:"response"`
		Success  bool   `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.Response != "Hier is je feedback." {
		t.Fatalf("body = %+v", body)
	}
}

func TestWriteFrameFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := writeFrame(&buf, tokenFrame("Hallo")); err != nil {
		t.Fatalf("writeFrame: %v", err)
	}
	if got := buf.String(); got != "data: {\"token\":\"Hallo\"}\n\n" {
		t.Fatalf("frame = %q", got)
	}

	buf.Reset()
	if err := writeFrame(&buf, doneFrame()); err != nil {
		t.Fatalf("writeFrame: %v", err)
	}
	if got := buf.String(); got != "data: {\"done\":true}\n\n" {
		t.Fatalf("frame = %q", got)
	}
}
