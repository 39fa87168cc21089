package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dvloznov/finance-advisor/internal/config"
	"github.com/dvloznov/finance-advisor/internal/domain"
	"github.com/rs/zerolog"
)

func memoryConfig() *config.Config {
	return &config.Config{
		StoreBackend:   config.BackendMemory,
		AIProvider:     "openai",
		OpenAIAPIKey:   "sk-test",
		JWTSecret:      "secret",
		TokenTTL:       time.Hour,
		CurrencySymbol: "$",
	}
}

func TestOpenBackend_UnknownBackend(t *testing.T) {
	cfg := memoryConfig()
	cfg.StoreBackend = "cassandra"

	if _, err := OpenBackend(context.Background(), cfg, zerolog.Nop()); err == nil || !strings.Contains(err.Error(), "cassandra") {
		t.Errorf("OpenBackend() error = %v, want unknown backend", err)
	}
}

func TestNew_InMemory(t *testing.T) {
	ctx := context.Background()

	a, err := New(ctx, memoryConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close()

	sess, err := a.Accounts.Register(ctx, "Asha", "asha@example.com", "secret1", nil)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if id, err := a.Tokens.Validate(sess.Token); err != nil || id != sess.User.ID {
		t.Errorf("token resolves to %q, %v", id, err)
	}

	txs, err := a.Finance.ListTransactions(ctx, sess.User.ID, domain.KindExpense)
	if err != nil || len(txs) != 0 {
		t.Errorf("ListTransactions() = %v, %v", txs, err)
	}
}

func TestNew_UploadsDisabledWithoutBucket(t *testing.T) {
	uploads, closeFn, err := NewUploader(context.Background(), memoryConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewUploader() error = %v", err)
	}
	defer closeFn()

	if _, err := uploads.Upload(context.Background(), "a.png", "image/png", strings.NewReader("x")); !errors.Is(err, domain.ErrUploadsDisabled) {
		t.Errorf("Upload() error = %v, want ErrUploadsDisabled", err)
	}
}

func TestNew_BadProvider(t *testing.T) {
	cfg := memoryConfig()
	cfg.AIProvider = "other"

	if _, err := New(context.Background(), cfg, zerolog.Nop()); err == nil {
		t.Error("New() with unknown provider should fail")
	}
}
