//go:build !gemini

package llm

// Without the gemini tag the REST client is the Gemini path.
func newGeminiClient(apiKey string) Client {
	return &GeminiHTTPClient{APIKey: apiKey}
}
