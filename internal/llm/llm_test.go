package llm

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/dvloznov/finance-advisor/internal/domain"
	"github.com/rs/zerolog"
)

func TestService_Complete(t *testing.T) {
	upstream := errors.New("connection reset")

	tests := []struct {
		name    string
		reply   string
		genErr  error
		want    string
		wantErr error
	}{
		{name: "trims reply", reply: "  Save 10% this month.\n", want: "Save 10% this month."},
		{name: "blank reply", reply: " \n\t ", wantErr: domain.ErrEmptyResponse},
		{name: "empty reply", reply: "", wantErr: domain.ErrEmptyResponse},
		{name: "upstream failure", genErr: upstream, wantErr: domain.ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			gen := GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
				calls++
				return tt.reply, tt.genErr
			})

			svc := NewService(gen, zerolog.New(io.Discard))
			got, err := svc.Complete(context.Background(), "prompt")

			if calls != 1 {
				t.Errorf("generator called %d times, want exactly 1", calls)
			}
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Complete() error = %v, want %v", err, tt.wantErr)
				}
				if tt.genErr != nil && !errors.Is(err, tt.genErr) {
					t.Errorf("Complete() error should keep the upstream cause, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Complete() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Complete() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewGenerator(t *testing.T) {
	ctx := context.Background()

	if _, err := NewGenerator(ctx, Options{Provider: "claude"}); err == nil {
		t.Error("expected error for unknown provider")
	}
	if _, err := NewGenerator(ctx, Options{Provider: ProviderGemini}); err == nil {
		t.Error("expected error for missing Gemini key")
	}
	if _, err := NewGenerator(ctx, Options{Provider: ProviderOpenAI}); err == nil {
		t.Error("expected error for missing OpenAI key")
	}

	gen, err := NewGenerator(ctx, Options{Provider: ProviderOpenAI, OpenAIAPIKey: "sk-test"})
	if err != nil {
		t.Fatalf("NewGenerator(openai) error = %v", err)
	}
	if g, ok := gen.(*OpenAIGenerator); !ok || g.model != DefaultOpenAIModel {
		t.Errorf("NewGenerator(openai) = %#v, want OpenAIGenerator with default model", gen)
	}
}
