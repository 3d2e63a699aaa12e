package chat

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const DefaultOpenAIModel = openai.CompletionNewParamsModelGPT3_5TurboInstruct

type openAICompleter struct {
	client openai.Client
	model  openai.CompletionNewParamsModel
}

// OpenAIDialer targets the legacy text completions endpoint.
func OpenAIDialer(model string, opts ...option.RequestOption) Dialer {
	m := openai.CompletionNewParamsModel(model)
	if model == "" {
		m = DefaultOpenAIModel
	}

	return func(_ context.Context, apiKey string) (Completer, error) {
		reqOpts := append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}, opts...)
		return &openAICompleter{
			client: openai.NewClient(reqOpts...),
			model:  m,
		}, nil
	}
}

func (c *openAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Completions.New(ctx, openai.CompletionNewParams{
		Model:       c.model,
		Prompt:      openai.CompletionNewParamsPromptUnion{OfString: openai.String(prompt)},
		MaxTokens:   openai.Int(MaxTokens),
		N:           openai.Int(1),
		Temperature: openai.Float(Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Text, nil
}
