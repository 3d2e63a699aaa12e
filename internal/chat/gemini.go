package chat

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.5-flash"

type geminiCompleter struct {
	client *genai.Client
	model  string
}

func GeminiDialer(model string) Dialer {
	return geminiDialer(model, genai.HTTPOptions{})
}

func geminiDialer(model string, httpOpts genai.HTTPOptions) Dialer {
	if model == "" {
		model = DefaultGeminiModel
	}

	return func(ctx context.Context, apiKey string) (Completer, error) {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:      apiKey,
			Backend:     genai.BackendGeminiAPI,
			HTTPOptions: httpOpts,
		})
		if err != nil {
			return nil, fmt.Errorf("genai client: %w", err)
		}
		return &geminiCompleter{client: client, model: model}, nil
	}
}

func (c *geminiCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](Temperature),
		MaxOutputTokens: MaxTokens,
		CandidateCount:  1,
		// Thinking tokens count against MaxOutputTokens and can leave no text at all.
		ThinkingConfig: &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](0)},
	})
	if err != nil {
		return "", fmt.Errorf("calling generative model: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Text(), nil
}
