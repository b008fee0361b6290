package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient implements Client using the Google generative-ai-go SDK
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient creates a new SDK-backed client
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		config: config,
	}, nil
}

// Generate sends the request through the SDK. The SDK has no image config,
// so aspect ratio, size and seed are not forwarded.
func (c *GeminiClient) Generate(ctx context.Context, req *Request) (*Response, error) {
	parts, err := toSDKParts(req.Parts)
	if err != nil {
		return nil, err
	}

	model := c.client.GenerativeModel(req.Model)
	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		var blocked *genai.BlockedError
		if errors.As(err, &blocked) {
			return blockedResponse(blocked), nil
		}
		return nil, &ServiceError{Kind: KindTransport, Cause: err}
	}

	return fromSDKResponse(resp), nil
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func toSDKParts(parts []Part) ([]genai.Part, error) {
	out := make([]genai.Part, 0, len(parts))
	for _, p := range parts {
		switch v := p.(type) {
		case TextPart:
			out = append(out, genai.Text(v.Text))
		case ImagePart:
			data, err := base64.StdEncoding.DecodeString(v.Data)
			if err != nil {
				return nil, fmt.Errorf("failed to decode inline image: %w", err)
			}
			out = append(out, genai.Blob{MIMEType: v.MIMEType, Data: data})
		}
	}
	return out, nil
}

func fromSDKResponse(resp *genai.GenerateContentResponse) *Response {
	out := &Response{Candidates: make([]Candidate, 0, len(resp.Candidates))}
	for _, gc := range resp.Candidates {
		cand := Candidate{FinishReason: finishReasonName(gc.FinishReason)}
		if gc.Content != nil {
			for _, part := range gc.Content.Parts {
				switch v := part.(type) {
				case genai.Text:
					if v != "" {
						cand.Parts = append(cand.Parts, TextPart{Text: string(v)})
					}
				case genai.Blob:
					// An image part always carries a payload
					if len(v.Data) == 0 {
						continue
					}
					cand.Parts = append(cand.Parts, ImagePart{
						MIMEType: v.MIMEType,
						Data:     base64.StdEncoding.EncodeToString(v.Data),
					})
				}
			}
		}
		out.Candidates = append(out.Candidates, cand)
	}
	return out
}

func blockedResponse(blocked *genai.BlockedError) *Response {
	reason := "SAFETY"
	if blocked.Candidate != nil {
		if name := finishReasonName(blocked.Candidate.FinishReason); name != "" {
			reason = name
		}
	}
	return &Response{Candidates: []Candidate{{FinishReason: reason, FinishMessage: blocked.Error()}}}
}

// finishReasonName maps SDK finish reasons onto the REST wire names
func finishReasonName(r genai.FinishReason) string {
	switch r {
	case genai.FinishReasonUnspecified:
		return ""
	case genai.FinishReasonStop:
		return FinishReasonStop
	case genai.FinishReasonMaxTokens:
		return FinishReasonMaxTokens
	case genai.FinishReasonSafety:
		return "SAFETY"
	case genai.FinishReasonRecitation:
		return "RECITATION"
	default:
		return "OTHER"
	}
}
