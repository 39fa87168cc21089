package llm

import (
	"context"
	"fmt"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Options selects and configures a provider.
type Options struct {
	Provider      string
	GeminiAPIKey  string
	GeminiModel   string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
}

// NewGenerator builds the Generator named by opts.Provider.
func NewGenerator(ctx context.Context, opts Options) (Generator, error) {
	switch opts.Provider {
	case ProviderGemini, "":
		return NewGeminiGenerator(ctx, opts.GeminiAPIKey, opts.GeminiModel)
	case ProviderOpenAI:
		return NewOpenAIGenerator(opts.OpenAIAPIKey, opts.OpenAIBaseURL, opts.OpenAIModel)
	default:
		return nil, fmt.Errorf("NewGenerator: unknown provider %q", opts.Provider)
	}
}
