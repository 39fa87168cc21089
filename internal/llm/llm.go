package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dvloznov/finance-advisor/internal/domain"
	"github.com/rs/zerolog"
)

// Generator sends a prompt to a text generation model and returns its raw reply.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Service turns prompts into non-empty, trimmed replies. It makes exactly
// one call per prompt; timeouts come from ctx and the transport.
type Service struct {
	gen Generator
	log zerolog.Logger
}

// NewService wraps gen.
func NewService(gen Generator, log zerolog.Logger) *Service {
	return &Service{gen: gen, log: log}
}

// Complete sends prompt and returns the trimmed reply. Transport and API
// failures are wrapped with domain.ErrUpstream; a blank reply yields
// domain.ErrEmptyResponse.
func (s *Service) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	raw, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		s.log.Error().Err(err).Dur("duration", time.Since(start)).Msg("Text generation failed")
		return "", fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}

	reply := strings.TrimSpace(raw)
	if reply == "" {
		return "", domain.ErrEmptyResponse
	}

	s.log.Debug().
		Int("prompt_chars", len(prompt)).
		Int("reply_chars", len(reply)).
		Dur("duration", time.Since(start)).
		Msg("Text generation completed")

	return reply, nil
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
