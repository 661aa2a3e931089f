//go:build !gemini

package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func clearProviderEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
}

func TestNewFromEnvFallsBackToMock(t *testing.T) {
	clearProviderEnv(t)
	c := NewFromEnv()
	assert.IsType(t, &MockClient{}, c)
}

func TestNewFromEnvSelectsExplicitProvider(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("LLM_PROVIDER", "anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "k")
	// Other keys present must not override the explicit choice.
	t.Setenv("OPENAI_API_KEY", "k2")

	c := NewFromEnv()
	assert.IsType(t, &AnthropicClient{}, c)
}

func TestNewFromEnvAutoDetectsByKey(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("GOOGLE_API_KEY", "k")

	c := NewFromEnv()
	assert.IsType(t, &GeminiHTTPClient{}, c)
}

func TestGeminiClientIsRESTWithoutTag(t *testing.T) {
	c := newGeminiClient("k")
	assert.IsType(t, &GeminiHTTPClient{}, c)
}
