package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiProvider implements Provider using the Google Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider builds a provider backed by a shared genai client.
// The client is safe for concurrent use by multiple in-flight requests.
func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &GeminiProvider{client: client, model: model}, nil
}

func (p *GeminiProvider) Name() string {
	return fmt.Sprintf("Gemini (%s)", p.model)
}

func (p *GeminiProvider) Stream(ctx context.Context, req Request) (Stream, error) {
	model := chooseModel(req.Model, p.model)
	contents := genai.Text(req.Prompt)
	return newEventStream(ctx, func(ctx context.Context, events chan<- Event) error {
		for chunk, err := range p.client.Models.GenerateContentStream(ctx, model, contents, nil) {
			if err != nil {
				return fmt.Errorf("gemini streaming error: %w", err)
			}
			text := candidateText(chunk)
			if text == "" {
				continue
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case events <- Event{Type: EventTextDelta, Text: text}:
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case events <- Event{Type: EventDone}:
		}
		return nil
	}), nil
}

func (p *GeminiProvider) Generate(ctx context.Context, req Request) (string, error) {
	model := chooseModel(req.Model, p.model)
	resp, err := p.client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}
	text := candidateText(resp)
	if text == "" {
		return "", fmt.Errorf("gemini returned no candidates")
	}
	return text, nil
}

// candidateText concatenates the text parts of the first candidate.
func candidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}
