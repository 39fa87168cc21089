package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dvloznov/finance-advisor/internal/llm"
	"github.com/joho/godotenv"
)

const (
	BackendMemory   = "memory"
	BackendMongo    = "mongo"
	BackendBigQuery = "bigquery"
)

// Config is read once at startup and is read-only afterwards.
type Config struct {
	// HTTP server
	Port           string
	MaxUploadBytes int64

	// Storage backend selection
	StoreBackend    string
	MongoURI        string
	MongoDatabase   string
	BigQueryProject string
	BigQueryDataset string

	// Object storage
	GCSBucket          string
	GCSCredentialsJSON string

	// Text generation
	AIProvider    string
	GeminiAPIKey  string
	GeminiModel   string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	// Auth
	JWTSecret string
	TokenTTL  time.Duration

	// Presentation and logging
	CurrencySymbol string
	LogLevel       string
	LogFormat      string
}

// Load reads an optional .env file and then the environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:           getEnv("PORT", "8000"),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 5<<20)),

		StoreBackend:    getEnv("STORE_BACKEND", BackendMemory),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getEnv("MONGO_DATABASE", "expense_tracker"),
		BigQueryProject: getEnv("BIGQUERY_PROJECT", ""),
		BigQueryDataset: getEnv("BIGQUERY_DATASET", "finance"),

		GCSBucket:          getEnv("GCS_BUCKET", ""),
		GCSCredentialsJSON: getEnv("GCS_CREDENTIALS_JSON", ""),

		AIProvider:    getEnv("AI_PROVIDER", "gemini"),
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),
		TokenTTL:  getEnvDuration("TOKEN_TTL", 72*time.Hour),

		CurrencySymbol: getEnv("CURRENCY_SYMBOL", "₹"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "console"),
	}
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.StoreBackend {
	case BackendMemory:
	case BackendMongo:
		if c.MongoURI == "" {
			errors = append(errors, "MONGO_URI is required when using the mongo backend")
		}
		if c.MongoDatabase == "" {
			errors = append(errors, "MONGO_DATABASE is required when using the mongo backend")
		}
	case BackendBigQuery:
		if c.BigQueryProject == "" {
			errors = append(errors, "BIGQUERY_PROJECT is required when using the bigquery backend")
		}
		if c.BigQueryDataset == "" {
			errors = append(errors, "BIGQUERY_DATASET is required when using the bigquery backend")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid store backend '%s': must be one of [memory mongo bigquery]", c.StoreBackend))
	}

	switch c.AIProvider {
	case "gemini":
		if c.GeminiAPIKey == "" {
			errors = append(errors, "GEMINI_API_KEY is required when AI_PROVIDER is gemini")
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			errors = append(errors, "OPENAI_API_KEY is required when AI_PROVIDER is openai")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid AI provider '%s': must be gemini or openai", c.AIProvider))
	}

	if c.JWTSecret == "" {
		errors = append(errors, "JWT_SECRET is required")
	}
	if c.TokenTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid token TTL %v: must be at least 1 minute", c.TokenTTL))
	}
	if c.MaxUploadBytes < 1 {
		errors = append(errors, fmt.Sprintf("invalid max upload size %d: must be positive", c.MaxUploadBytes))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// LLMOptions returns the text generation settings.
func (c *Config) LLMOptions() llm.Options {
	return llm.Options{
		Provider:      c.AIProvider,
		GeminiAPIKey:  c.GeminiAPIKey,
		GeminiModel:   c.GeminiModel,
		OpenAIAPIKey:  c.OpenAIAPIKey,
		OpenAIBaseURL: c.OpenAIBaseURL,
		OpenAIModel:   c.OpenAIModel,
	}
}
