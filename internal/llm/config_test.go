package llm

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ProviderGemini, config.Provider)
	assert.Equal(t, TransportREST, config.Transport)
	assert.Equal(t, DefaultBaseURL, config.BaseURL)
	assert.Equal(t, 120*time.Second, config.Timeout)
}

func TestWithTransport(t *testing.T) {
	config := DefaultConfig()
	newConfig := config.WithTransport(TransportSDK)

	// Original should be unchanged
	assert.Equal(t, TransportREST, config.Transport)
	assert.Equal(t, TransportSDK, newConfig.Transport)
	assert.Equal(t, config.BaseURL, newConfig.BaseURL)
}

func TestWithBaseURL(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "http://localhost:9999", config.WithBaseURL("http://localhost:9999").BaseURL)
	assert.Equal(t, DefaultBaseURL, config.WithBaseURL("").BaseURL)
}

func TestModelNames(t *testing.T) {
	names := ModelNames()
	require.Len(t, names, len(Models))
	assert.Equal(t, "gemini-3-pro-image-preview", names[0])
	assert.Contains(t, names, "gemini-2.5-flash-image")
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(context.Background(), DefaultConfig(), "", zerolog.Nop())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestNewClient_SelectsTransport(t *testing.T) {
	client, err := NewClient(context.Background(), nil, "key", zerolog.Nop())
	require.NoError(t, err)
	_, ok := client.(*RESTClient)
	assert.True(t, ok)

	_, err = NewClient(context.Background(), DefaultConfig().WithTransport("carrier-pigeon"), "key", zerolog.Nop())
	assert.Error(t, err)
}

func TestCandidateRefused(t *testing.T) {
	assert.False(t, Candidate{}.Refused())
	assert.False(t, Candidate{FinishReason: FinishReasonStop}.Refused())
	assert.False(t, Candidate{FinishReason: FinishReasonMaxTokens}.Refused())
	assert.True(t, Candidate{FinishReason: "SAFETY"}.Refused())
	assert.True(t, Candidate{FinishReason: "IMAGE_SAFETY"}.Refused())
}
