// Package llm provides generation-provider client interfaces and
// implementations.
package llm

import (
	"context"
	"errors"
)

// ErrSpeechUnsupported is returned by providers without a TTS capability.
// Callers treat it as "skip audio", not as a failure.
var ErrSpeechUnsupported = errors.New("provider does not support speech synthesis")

// CompletionRequest represents a completion request.
type CompletionRequest struct {
	Model       string
	Messages    []ChatMessage
	MaxTokens   int
	Temperature float64
}

// ChatMessage represents a chat message for the provider.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionResponse represents a completion response.
type CompletionResponse struct {
	Content    string
	Model      string
	TokensIn   int
	TokensOut  int
	StopReason string
	LatencyMs  int64
}

// SpeechRequest represents a text-to-speech request.
type SpeechRequest struct {
	Text  string
	Voice string
}

// Client is the interface for generation providers.
type Client interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// Speech synthesizes audio for the given text. Providers without the
	// capability return ErrSpeechUnsupported.
	Speech(ctx context.Context, req *SpeechRequest) ([]byte, error)

	// Name returns the provider name.
	Name() string
}

// Provider is the type of generation provider.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// NewClient creates a new generation client for the given provider.
func NewClient(provider Provider, apiKey string) (Client, error) {
	switch provider {
	case ProviderAnthropic:
		return NewAnthropicClient(apiKey)
	case ProviderOpenAI:
		return NewOpenAIClient(apiKey)
	default:
		return NewOpenAIClient(apiKey)
	}
}
