//go:build gemini

package llm

import (
	"context"
	"errors"
	"fmt"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/example/ui-navigator/models"
)

// GeminiSDKClient uses the official SDK instead of the raw REST endpoint.
// Built only with the gemini tag; the HTTP client is the default path.
type GeminiSDKClient struct {
	client *genai.Client
}

func NewGeminiSDKClient(ctx context.Context, apiKey string) (*GeminiSDKClient, error) {
	c, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini sdk: %w", err)
	}
	return &GeminiSDKClient{client: c}, nil
}

func (c *GeminiSDKClient) Generate(ctx context.Context, model, prompt string) (Response, error) {
	resp, err := c.client.GenerativeModel(model).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return Response{}, err
	}
	txt := firstText(resp)
	if txt == "" {
		return Response{}, errors.New("gemini sdk: no candidates")
	}
	out := Response{Text: txt}
	if resp.UsageMetadata != nil {
		out.Usage = models.TokenUsage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}
	return out, nil
}

func (c *GeminiSDKClient) Close() error { return c.client.Close() }

// With the gemini tag the factory hands out the SDK client, falling back to
// the REST client if SDK construction fails.
func newGeminiClient(apiKey string) Client {
	c, err := NewGeminiSDKClient(context.Background(), apiKey)
	if err != nil {
		return &GeminiHTTPClient{APIKey: apiKey}
	}
	return c
}

func firstText(r *genai.GenerateContentResponse) string {
	if r == nil {
		return ""
	}
	for _, cand := range r.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}
