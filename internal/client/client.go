package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/markvz/proefgesprek/internal/llm"
)

// Client talks to the relay endpoints. It implements the orchestrator's
// Generator interface: streaming generations go through /api/chat-stream
// and blocking ones through /api/chat.
type Client struct {
	baseURL    string
	model      string // aiModel selector sent with every request
	httpClient *http.Client
}

func New(baseURL, model string) *Client {
	return &Client{
		baseURL:    baseURL,
		model:      model,
		httpClient: http.DefaultClient,
	}
}

type chatRequest struct {
	Message string `json:"message"`
	AIModel string `json:"aiModel"`
}

type chatResponse struct {
	Response string `json:"response"`
	Success  bool   `json:"success"`
	Error    string `json:"error"`
}

func (c *Client) post(ctx context.Context, path, prompt string) (*http.Response, error) {
	payload, err := json.Marshal(chatRequest{Message: prompt, AIModel: c.model})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.httpClient.Do(req)
}

// decodeError extracts the structured error message from a non-200
// response body, falling back to the HTTP status.
func decodeError(resp *http.Response) error {
	defer resp.Body.Close()
	var body chatResponse
	if json.NewDecoder(resp.Body).Decode(&body) == nil && body.Error != "" {
		return errors.New(body.Error)
	}
	return fmt.Errorf("relay returned %s", resp.Status)
}

// GenerateStream opens a streaming generation and returns the consumer
// for its byte stream. Validation failures surface as plain errors
// before any stream is opened.
func (c *Client) GenerateStream(ctx context.Context, prompt string) (llm.Stream, error) {
	resp, err := c.post(ctx, "/api/chat-stream", prompt)
	if err != nil {
		return nil, fmt.Errorf("relay request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}
	return NewConsumer(ctx, resp.Body), nil
}

// Generate runs a blocking generation via the non-streaming endpoint.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.post(ctx, "/api/chat", prompt)
	if err != nil {
		return "", fmt.Errorf("relay request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", decodeError(resp)
	}
	defer resp.Body.Close()
	var body chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decoding relay response: %w", err)
	}
	return body.Response, nil
}
