package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/example/ui-navigator/models"
)

// GeminiHTTPClient talks to the Generative Language REST API directly. The
// SDK-backed client in gemini_sdk.go is available behind the gemini build
// tag.
type GeminiHTTPClient struct {
	APIKey string
}

func (c *GeminiHTTPClient) Generate(ctx context.Context, model, prompt string) (Response, error) {
	endpoint := fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s",
		url.PathEscape(model), url.QueryEscape(c.APIKey))
	if base := os.Getenv("GEMINI_API_URL"); base != "" {
		endpoint = fmt.Sprintf("%s/models/%s:generateContent?key=%s",
			strings.TrimRight(base, "/"), url.PathEscape(model), url.QueryEscape(c.APIKey))
	}
	body := map[string]any{
		"contents": []map[string]any{{
			"role":  "user",
			"parts": []map[string]string{{"text": prompt}},
		}},
	}
	b, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("gemini: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return Response{}, fmt.Errorf("gemini: build request: %w", err)
	}
	req.Header.Set("content-type", "application/json")
	httpClient := &http.Client{Timeout: clientTimeout()}
	res, err := httpClient.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		var eresp map[string]any
		_ = json.NewDecoder(res.Body).Decode(&eresp)
		return Response{}, fmt.Errorf("gemini status %d: %v", res.StatusCode, eresp)
	}
	var resp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
		UsageMetadata struct {
			PromptTokenCount     int `json:"promptTokenCount"`
			CandidatesTokenCount int `json:"candidatesTokenCount"`
		} `json:"usageMetadata"`
	}
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return Response{}, fmt.Errorf("gemini: decode response: %w", err)
	}
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			sb.WriteString(part.Text)
		}
		break
	}
	if sb.Len() == 0 {
		return Response{}, errors.New("gemini: no candidates")
	}
	return Response{
		Text: sb.String(),
		Usage: models.TokenUsage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
		},
	}, nil
}
