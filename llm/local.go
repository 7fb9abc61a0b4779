// Local Provider implementation using go-openai against an
// OpenAI-compatible endpoint (llama.cpp server, vLLM, Ollama, LM Studio).
//
// Information Hiding:
// - Base URL and optional authentication
// - Reuses the OpenAI message/image/tool conversion; only the client
//   configuration differs

package llm

import (
	openai "github.com/sashabaranov/go-openai"
)

// DefaultLocalBaseURL points at a llama.cpp style server on this machine.
const DefaultLocalBaseURL = "http://localhost:8080/v1"

// NewLocalProvider creates a provider for an OpenAI-compatible local model
// server. Most local servers ignore authentication; an empty key is fine.
// An empty baseURL falls back to DefaultLocalBaseURL.
func NewLocalProvider(apiKey, baseURL, model string, maxTokens uint32, temperature float32) *OpenAIProvider {
	if baseURL == "" {
		baseURL = DefaultLocalBaseURL
	}
	if apiKey == "" {
		apiKey = "unused"
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(config),
		name:        "local",
		model:       model,
		maxTokens:   int(maxTokens),
		temperature: temperature,
	}
}
