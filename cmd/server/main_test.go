package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/Skufu/healthassistant/internal/config"
)

func TestNewRelayReadsProviderCredential(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	relay := newRelay(&config.Config{ChatProvider: config.ProviderGemini, ChatTimeout: time.Second}, zap.NewNop())

	answer := relay.Ask(context.Background(), "What is anemia?")
	assert.Contains(t, answer, "Sorry, I am unable to answer that question at the moment.")
	assert.Contains(t, answer, "GEMINI_API_KEY is not set")

	t.Setenv("OPENAI_API_KEY", "")
	relay = newRelay(&config.Config{ChatProvider: config.ProviderOpenAI}, zap.NewNop())
	assert.Contains(t, relay.Ask(context.Background(), "What is anemia?"), "OPENAI_API_KEY is not set")
}

func TestWriteTimeout(t *testing.T) {
	assert.Equal(t, time.Duration(0), writeTimeout(0))
	assert.Equal(t, 45*time.Second, writeTimeout(30*time.Second))
}
