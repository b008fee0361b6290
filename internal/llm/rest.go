package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
)

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts,omitempty"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type geminiImageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
	ImageSize   string `json:"imageSize,omitempty"`
}

type geminiGenerationConfig struct {
	ResponseModalities []string           `json:"responseModalities,omitempty"`
	ImageConfig        *geminiImageConfig `json:"imageConfig,omitempty"`
	Seed               *int64             `json:"seed,omitempty"`
}

type geminiGenerateContentRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content       geminiContent `json:"content"`
	FinishReason  string        `json:"finishReason,omitempty"`
	FinishMessage string        `json:"finishMessage,omitempty"`
}

type geminiPromptFeedback struct {
	BlockReason        string `json:"blockReason,omitempty"`
	BlockReasonMessage string `json:"blockReasonMessage,omitempty"`
}

type geminiGenerateContentResponse struct {
	Candidates     []geminiCandidate     `json:"candidates"`
	PromptFeedback *geminiPromptFeedback `json:"promptFeedback,omitempty"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
		Status  string `json:"status,omitempty"`
	} `json:"error"`
}

// RESTClient implements Client against the generateContent REST endpoint.
type RESTClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewRESTClient constructs a REST client. A nil httpClient gets one with
// the configured timeout.
func NewRESTClient(config *Config, apiKey string, httpClient *http.Client, logger zerolog.Logger) *RESTClient {
	if config == nil {
		config = DefaultConfig()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &RESTClient{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Generate posts req to {base}/models/{model}:generateContent
func (c *RESTClient) Generate(ctx context.Context, req *Request) (*Response, error) {
	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{{Role: "user", Parts: toGeminiParts(req.Parts)}},
		GenerationConfig: &geminiGenerationConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
			Seed:               req.Seed,
		},
	}
	if req.AspectRatio != "" || req.ImageSize != "" {
		payload.GenerationConfig.ImageConfig = &geminiImageConfig{
			AspectRatio: req.AspectRatio,
			ImageSize:   req.ImageSize,
		}
	}

	c.logger.Debug().
		Str("model", req.Model).
		Int("parts", len(req.Parts)).
		Str("aspect_ratio", req.AspectRatio).
		Str("image_size", req.ImageSize).
		Msg("llm: sending generateContent")

	var out geminiGenerateContentResponse
	path := fmt.Sprintf("/models/%s:generateContent", url.PathEscape(req.Model))
	if err := c.invokeGemini(ctx, path, payload, &out); err != nil {
		return nil, err
	}

	resp := fromGeminiResponse(&out)
	c.logger.Debug().Int("candidates", len(resp.Candidates)).Msg("llm: response received")
	return resp, nil
}

// Close is a no-op; the HTTP client is shared
func (c *RESTClient) Close() error {
	return nil
}

func (c *RESTClient) invokeGemini(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &ServiceError{Kind: KindTransport, Message: "marshal request", Cause: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return &ServiceError{Kind: KindTransport, Message: "create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &ServiceError{Kind: KindTransport, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ServiceError{Kind: KindTransport, Message: "read response", Cause: err}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		msg := strings.TrimSpace(string(data))
		var apiErr geminiErrorResponse
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &ServiceError{Kind: KindStatus, StatusCode: resp.StatusCode, Message: msg}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &ServiceError{Kind: KindMalformed, Cause: err}
	}
	return nil
}

func toGeminiParts(parts []Part) []geminiPart {
	out := make([]geminiPart, 0, len(parts))
	for _, p := range parts {
		switch v := p.(type) {
		case TextPart:
			out = append(out, geminiPart{Text: v.Text})
		case ImagePart:
			out = append(out, geminiPart{InlineData: &geminiInlineData{MimeType: v.MIMEType, Data: v.Data}})
		}
	}
	return out
}

func fromGeminiResponse(in *geminiGenerateContentResponse) *Response {
	resp := &Response{Candidates: make([]Candidate, 0, len(in.Candidates))}

	// A blocked prompt comes back with no candidates at all.
	if len(in.Candidates) == 0 && in.PromptFeedback != nil && in.PromptFeedback.BlockReason != "" {
		resp.Candidates = append(resp.Candidates, Candidate{
			FinishReason:  in.PromptFeedback.BlockReason,
			FinishMessage: in.PromptFeedback.BlockReasonMessage,
		})
		return resp
	}

	for _, gc := range in.Candidates {
		cand := Candidate{FinishReason: gc.FinishReason, FinishMessage: gc.FinishMessage}
		for _, gp := range gc.Content.Parts {
			switch {
			case gp.InlineData != nil && gp.InlineData.Data != "":
				cand.Parts = append(cand.Parts, ImagePart{MIMEType: gp.InlineData.MimeType, Data: gp.InlineData.Data})
			case gp.Text != "":
				cand.Parts = append(cand.Parts, TextPart{Text: gp.Text})
			}
		}
		resp.Candidates = append(resp.Candidates, cand)
	}
	return resp
}
