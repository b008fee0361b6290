// Package llm provides the image generation client abstraction and its
// Gemini transports.
package llm

import "time"

// Transport selects how requests reach the provider
type Transport string

// Transport constants define supported transports
const (
	// TransportREST calls the generateContent REST endpoint directly
	TransportREST Transport = "rest"
	// TransportSDK goes through the generative-ai-go SDK, which cannot
	// express aspect ratio, image size or seed
	TransportSDK Transport = "sdk"
)

// Provider represents an image generation provider
type Provider string

// ProviderGemini is the Google Gemini provider
const ProviderGemini Provider = "gemini"

// DefaultBaseURL is the public Gemini API root
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Model describes a known image model.
type Model struct {
	Name  string
	Label string
}

// Models is the catalog offered by the settings screen
var Models = []Model{
	{Name: "gemini-3-pro-image-preview", Label: "Gemini 3 Pro Image"},
	{Name: "gemini-2.5-flash-image", Label: "Gemini 2.5 Flash Image"},
	{Name: "imagen-4.0-generate-001", Label: "Imagen 4"},
}

// ModelNames returns the catalog model ids in order
func ModelNames() []string {
	names := make([]string, len(Models))
	for i, m := range Models {
		names[i] = m.Name
	}
	return names
}

// Config holds the client configuration
type Config struct {
	Provider  Provider
	Transport Transport
	BaseURL   string
	Timeout   time.Duration
}

// DefaultConfig returns the default configuration (Gemini over REST)
func DefaultConfig() *Config {
	return &Config{
		Provider:  ProviderGemini,
		Transport: TransportREST,
		BaseURL:   DefaultBaseURL,
		Timeout:   120 * time.Second,
	}
}

// WithTransport returns a copy of c using transport t
func (c *Config) WithTransport(t Transport) *Config {
	cp := *c
	cp.Transport = t
	return &cp
}

// WithBaseURL returns a copy of c pointed at url. An empty url keeps the
// current value.
func (c *Config) WithBaseURL(url string) *Config {
	cp := *c
	if url != "" {
		cp.BaseURL = url
	}
	return &cp
}
