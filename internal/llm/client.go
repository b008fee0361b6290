package llm

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Client is an abstraction over image generation providers
type Client interface {
	// Generate sends one request and returns every candidate the service produced
	Generate(ctx context.Context, req *Request) (*Response, error)
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a client for the configured transport
func NewClient(ctx context.Context, config *Config, apiKey string, logger zerolog.Logger) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	switch config.Transport {
	case TransportSDK:
		return NewGeminiClient(ctx, config, apiKey)
	case TransportREST, "":
		return NewRESTClient(config, apiKey, nil, logger), nil
	default:
		return nil, fmt.Errorf("unknown transport %q", config.Transport)
	}
}
