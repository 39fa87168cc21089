// Package app wires configuration into concrete stores, clients and services.
// It is shared by the server and the command-line tools.
package app

import (
	"context"
	"fmt"

	"github.com/dvloznov/finance-advisor/internal/auth"
	"github.com/dvloznov/finance-advisor/internal/config"
	"github.com/dvloznov/finance-advisor/internal/finance"
	infraBQ "github.com/dvloznov/finance-advisor/internal/infra/bigquery"
	infraMongo "github.com/dvloznov/finance-advisor/internal/infra/mongo"
	"github.com/dvloznov/finance-advisor/internal/llm"
	"github.com/dvloznov/finance-advisor/internal/objectstore"
	"github.com/dvloznov/finance-advisor/internal/snapshot"
	"github.com/dvloznov/finance-advisor/internal/store"
	"github.com/dvloznov/finance-advisor/internal/store/inmemory"
	"github.com/rs/zerolog"
)

// App holds the long-lived dependencies of a process.
type App struct {
	Backend  store.Backend
	Finance  *finance.Service
	Accounts *auth.Service
	Tokens   *auth.TokenManager

	closers []func() error
}

// Close releases every client opened by New, in reverse order.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// OpenBackend connects to the store named by cfg.StoreBackend.
func OpenBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.Backend, error) {
	switch cfg.StoreBackend {
	case config.BackendMongo:
		return infraMongo.NewBackend(ctx, cfg.MongoURI, cfg.MongoDatabase, log)
	case config.BackendBigQuery:
		return infraBQ.NewBackend(ctx, infraBQ.Dataset{Project: cfg.BigQueryProject, Dataset: cfg.BigQueryDataset}, log)
	case config.BackendMemory, "":
		log.Warn().Msg("Using in-memory store - data is lost on restart")
		return inmemory.NewStore().Backend(), nil
	default:
		return store.Backend{}, fmt.Errorf("OpenBackend: unknown backend %q", cfg.StoreBackend)
	}
}

// NewUploader returns a GCS uploader, or a disabled one when no bucket is set.
func NewUploader(ctx context.Context, cfg *config.Config, log zerolog.Logger) (objectstore.Uploader, func() error, error) {
	if cfg.GCSBucket == "" {
		log.Warn().Msg("No GCS bucket configured - image uploads will be disabled")
		return objectstore.Disabled{}, func() error { return nil }, nil
	}

	gcs, err := objectstore.NewGCS(ctx, cfg.GCSBucket, cfg.GCSCredentialsJSON)
	if err != nil {
		return nil, nil, fmt.Errorf("NewUploader: %w", err)
	}
	return gcs, gcs.Close, nil
}

// New builds every service from cfg. The caller must Close the result.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{}

	backend, err := OpenBackend(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	a.Backend = backend
	a.closers = append(a.closers, backend.Close)

	uploads, closeUploads, err := NewUploader(ctx, cfg, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, closeUploads)

	gen, err := llm.NewGenerator(ctx, cfg.LLMOptions())
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Finance = finance.NewService(backend.Transactions, llm.NewService(gen, log), snapshot.NewRenderer(cfg.CurrencySymbol), log)
	a.Tokens = auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	a.Accounts = auth.NewService(backend.Users, a.Tokens, uploads, log)

	log.Info().
		Str("store", cfg.StoreBackend).
		Str("ai_provider", cfg.AIProvider).
		Bool("uploads", cfg.GCSBucket != "").
		Msg("Application initialized")

	return a, nil
}
