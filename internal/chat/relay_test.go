package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

const testKeyEnv = "HEALTH_ASSISTANT_TEST_KEY"

type stubCompleter struct {
	text    string
	err     error
	prompts []string
}

func (s *stubCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

func stubDialer(c *stubCompleter, keys *[]string) Dialer {
	return func(_ context.Context, apiKey string) (Completer, error) {
		if keys != nil {
			*keys = append(*keys, apiKey)
		}
		return c, nil
	}
}

func TestAskReturnsTrimmedFirstCompletion(t *testing.T) {
	t.Setenv(testKeyEnv, "sk-test")
	c := &stubCompleter{text: "\n\n  Drink plenty of fluids and rest.  \n"}
	relay := NewRelay(stubDialer(c, nil), testKeyEnv)

	answer := relay.Ask(context.Background(), "  How do I treat a cold?  ")

	assert.Equal(t, "Drink plenty of fluids and rest.", answer)
	require.Len(t, c.prompts, 1)
	assert.Equal(t, Prompt("How do I treat a cold?"), c.prompts[0])
	assert.Contains(t, c.prompts[0], "I can only answer medical-related questions.")
}

func TestAskFallsBackOnTransportFailure(t *testing.T) {
	t.Setenv(testKeyEnv, "sk-test")
	c := &stubCompleter{err: errors.New("dial tcp: connection refused")}
	relay := NewRelay(stubDialer(c, nil), testKeyEnv)

	var answer string
	require.NotPanics(t, func() {
		answer = relay.Ask(context.Background(), "What is hypertension?")
	})

	assert.Equal(t, "Sorry, I am unable to answer that question at the moment. (dial tcp: connection refused)", answer)
}

func TestAskFallsBackOnDialFailure(t *testing.T) {
	t.Setenv(testKeyEnv, "sk-test")
	relay := NewRelay(func(context.Context, string) (Completer, error) {
		return nil, errors.New("bad client config")
	}, testKeyEnv)

	assert.Contains(t, relay.Ask(context.Background(), "question"), "bad client config")
}

func TestAskWithoutCredential(t *testing.T) {
	t.Setenv(testKeyEnv, "")
	c := &stubCompleter{text: "unused"}
	relay := NewRelay(stubDialer(c, nil), testKeyEnv)

	answer := relay.Ask(context.Background(), "What is insulin?")

	assert.Contains(t, answer, "Sorry, I am unable to answer")
	assert.Contains(t, answer, testKeyEnv+" is not set")
	assert.Empty(t, c.prompts)
}

func TestAskRereadsCredentialEachCall(t *testing.T) {
	var keys []string
	relay := NewRelay(stubDialer(&stubCompleter{text: "ok"}, &keys), testKeyEnv)

	t.Setenv(testKeyEnv, "first")
	relay.Ask(context.Background(), "one")
	t.Setenv(testKeyEnv, "second")
	relay.Ask(context.Background(), "two")

	assert.Equal(t, []string{"first", "second"}, keys)
}

func TestAskEmptyQuestionSkipsRemote(t *testing.T) {
	t.Setenv(testKeyEnv, "sk-test")
	c := &stubCompleter{text: "unused"}
	relay := NewRelay(stubDialer(c, nil), testKeyEnv)

	assert.Equal(t, "", relay.Ask(context.Background(), "   "))
	assert.Empty(t, c.prompts)
}

func TestAskBlankCompletionBecomesFallback(t *testing.T) {
	t.Setenv(testKeyEnv, "sk-test")
	relay := NewRelay(stubDialer(&stubCompleter{text: " \n\n "}, nil), testKeyEnv)

	assert.Equal(t, Fallback(ErrEmptyCompletion), relay.Ask(context.Background(), "What is asthma?"))
}

func TestAskTimeout(t *testing.T) {
	t.Setenv(testKeyEnv, "sk-test")
	slow := func(ctx context.Context, _ string) (Completer, error) {
		return completerFunc(func(ctx context.Context, _ string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		}), nil
	}
	relay := NewRelay(slow, testKeyEnv, WithTimeout(10*time.Millisecond))

	assert.Contains(t, relay.Ask(context.Background(), "still there?"), context.DeadlineExceeded.Error())
}

type completerFunc func(ctx context.Context, prompt string) (string, error)

func (f completerFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func TestOpenAICompleterSendsFixedParameters(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "cmpl-1",
			"object": "text_completion",
			"created": 1700000000,
			"model": "gpt-3.5-turbo-instruct",
			"choices": [
				{"text": "\n\nSee a doctor.", "index": 0, "logprobs": null, "finish_reason": "stop"},
				{"text": "ignored", "index": 1, "logprobs": null, "finish_reason": "stop"}
			]
		}`))
	}))
	defer server.Close()

	t.Setenv(testKeyEnv, "sk-test")
	relay := NewRelay(OpenAIDialer("", option.WithBaseURL(server.URL+"/")), testKeyEnv)

	answer := relay.Ask(context.Background(), "Is a fever dangerous?")

	assert.Equal(t, "See a doctor.", answer)
	assert.Equal(t, string(DefaultOpenAIModel), body["model"])
	assert.Equal(t, Prompt("Is a fever dangerous?"), body["prompt"])
	assert.EqualValues(t, MaxTokens, body["max_tokens"])
	assert.EqualValues(t, 1, body["n"])
	assert.InDelta(t, Temperature, body["temperature"], 1e-9)
}

func TestOpenAICompleterFailureBecomesFallback(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "You exceeded your current quota", "type": "insufficient_quota"}}`))
	}))
	defer server.Close()

	t.Setenv(testKeyEnv, "sk-test")
	relay := NewRelay(OpenAIDialer("gpt-3.5-turbo-instruct", option.WithBaseURL(server.URL+"/")), testKeyEnv)

	answer := relay.Ask(context.Background(), "Is a fever dangerous?")

	assert.Contains(t, answer, "Sorry, I am unable to answer that question at the moment.")
	assert.Contains(t, answer, "429")
	assert.Equal(t, 1, calls, "no retries")
}

func TestGeminiDialerDefaultsModel(t *testing.T) {
	c, err := GeminiDialer("")(context.Background(), "test-key")
	require.NoError(t, err)
	assert.Equal(t, DefaultGeminiModel, c.(*geminiCompleter).model)
}

func geminiServer(t *testing.T, reply string, body *map[string]any) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, DefaultGeminiModel+":generateContent")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestGeminiCompleterDisablesThinking(t *testing.T) {
	var body map[string]any
	server := geminiServer(t, `{
		"candidates": [
			{"content": {"role": "model", "parts": [{"text": "\n Drink water. \n"}]}, "finishReason": "STOP"}
		]
	}`, &body)

	t.Setenv(testKeyEnv, "test-key")
	relay := NewRelay(geminiDialer("", genai.HTTPOptions{BaseURL: server.URL + "/"}), testKeyEnv)

	answer := relay.Ask(context.Background(), "How do I avoid dehydration?")

	assert.Equal(t, "Drink water.", answer)
	gen, ok := body["generationConfig"].(map[string]any)
	require.True(t, ok, "generationConfig missing from %v", body)
	assert.EqualValues(t, MaxTokens, gen["maxOutputTokens"])
	assert.EqualValues(t, 1, gen["candidateCount"])
	thinking, ok := gen["thinkingConfig"].(map[string]any)
	require.True(t, ok, "thinkingConfig missing from %v", gen)
	assert.EqualValues(t, 0, thinking["thinkingBudget"])
}

func TestGeminiCompleterWithoutTextBecomesFallback(t *testing.T) {
	var body map[string]any
	server := geminiServer(t, `{"candidates":[{"content":{"role":"model"},"finishReason":"MAX_TOKENS"}]}`, &body)

	t.Setenv(testKeyEnv, "test-key")
	relay := NewRelay(geminiDialer("", genai.HTTPOptions{BaseURL: server.URL + "/"}), testKeyEnv)

	assert.Equal(t, Fallback(ErrEmptyCompletion), relay.Ask(context.Background(), "What causes migraines?"))
}
