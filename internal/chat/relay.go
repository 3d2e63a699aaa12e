// Package chat relays one medical question to a hosted completion endpoint.
package chat

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	MaxTokens   = 150
	Temperature = 0.7
)

var (
	ErrMissingCredential = errors.New("missing API key")
	ErrEmptyCompletion   = errors.New("no completion returned")
)

// Completer sends a prompt and returns the text of the first completion.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Dialer builds a Completer for an API key. The key is re-read on every question.
type Dialer func(ctx context.Context, apiKey string) (Completer, error)

type Relay struct {
	dial    Dialer
	keyEnv  string
	timeout time.Duration
	logger  *zap.Logger
}

type Option func(*Relay)

// WithTimeout bounds each remote call. Zero leaves only the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(r *Relay) {
		r.timeout = d
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Relay) {
		r.logger = l
	}
}

func NewRelay(dial Dialer, keyEnv string, options ...Option) *Relay {
	r := &Relay{
		dial:   dial,
		keyEnv: keyEnv,
		logger: zap.NewNop(),
	}
	for _, o := range options {
		o(r)
	}
	return r
}

// Ask returns the trimmed answer or a fallback sentence carrying the failure text.
// It never returns an error. An empty question yields an empty answer without a remote call.
func (r *Relay) Ask(ctx context.Context, question string) string {
	question = strings.TrimSpace(question)
	if question == "" {
		return ""
	}

	answer, err := r.complete(ctx, question)
	if err != nil {
		r.logger.Warn("chat completion failed", zap.String("credential", r.keyEnv), zap.Error(err))
		return Fallback(err)
	}
	return answer
}

func (r *Relay) complete(ctx context.Context, question string) (string, error) {
	apiKey := os.Getenv(r.keyEnv)
	if apiKey == "" {
		return "", fmt.Errorf("%w: %s is not set", ErrMissingCredential, r.keyEnv)
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	client, err := r.dial(ctx, apiKey)
	if err != nil {
		return "", err
	}

	text, err := client.Complete(ctx, Prompt(question))
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

// Fallback is shown in place of an answer when the remote call fails.
func Fallback(err error) string {
	return fmt.Sprintf("Sorry, I am unable to answer that question at the moment. (%s)", err)
}
