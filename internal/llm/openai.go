package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
)

// OpenAIProvider implements Provider using the OpenAI responses API.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIProvider{client: &client, model: model}
}

func (p *OpenAIProvider) Name() string {
	return fmt.Sprintf("OpenAI (%s)", p.model)
}

func (p *OpenAIProvider) params(req Request) responses.ResponseNewParams {
	return responses.ResponseNewParams{
		Model: shared.ResponsesModel(chooseModel(req.Model, p.model)),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: openai.String(req.Prompt),
		},
	}
}

func (p *OpenAIProvider) Stream(ctx context.Context, req Request) (Stream, error) {
	return newEventStream(ctx, func(ctx context.Context, events chan<- Event) error {
		stream := p.client.Responses.NewStreaming(ctx, p.params(req))
		for stream.Next() {
			event := stream.Current()
			if event.Type == "response.output_text.delta" && event.Text != "" {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case events <- Event{Type: EventTextDelta, Text: event.Text}:
				}
			}
		}
		if err := stream.Err(); err != nil {
			return fmt.Errorf("openai streaming error: %w", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case events <- Event{Type: EventDone}:
		}
		return nil
	}), nil
}

func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (string, error) {
	resp, err := p.client.Responses.New(ctx, p.params(req))
	if err != nil {
		return "", fmt.Errorf("openai API error: %w", err)
	}
	return resp.OutputText(), nil
}
