package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew(t *testing.T) {
	log := New("debug", "json")
	if log.GetLevel() != zerolog.DebugLevel {
		t.Errorf("level = %v, want debug", log.GetLevel())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{" WARN ", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)

	log.Info().Msg("test message")

	output := buf.String()
	if output == "" {
		t.Error("Expected log output, got empty string")
	}
	if !strings.Contains(output, "test message") {
		t.Errorf("Expected output to contain 'test message', got: %s", output)
	}
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	testLog := NewWithWriter(buf)
	ctx := WithContext(context.Background(), testLog)

	retrievedLog := FromContext(ctx)
	retrievedLog.Info().Msg("test")

	if buf.Len() == 0 {
		t.Error("Expected log output from retrieved logger")
	}
}

func TestFromContext_DefaultLogger(t *testing.T) {
	log := FromContext(context.Background())

	if log.GetLevel() == zerolog.Disabled {
		t.Error("Expected default logger to be enabled")
	}
}

func TestFromContextOr(t *testing.T) {
	stored := &bytes.Buffer{}
	fallback := &bytes.Buffer{}

	tests := []struct {
		name string
		ctx  context.Context
		want *bytes.Buffer
	}{
		{"stored logger wins", WithContext(context.Background(), NewWithWriter(stored)), stored},
		{"fallback without stored logger", context.Background(), fallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stored.Reset()
			fallback.Reset()

			l := FromContextOr(tt.ctx, NewWithWriter(fallback))
			l.Info().Msg("test")

			if tt.want.Len() == 0 {
				t.Error("Expected output on the selected logger")
			}
			if stored.Len()+fallback.Len() != tt.want.Len() {
				t.Error("Expected output on exactly one logger")
			}
		})
	}
}
