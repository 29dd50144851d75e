package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/viper"

	"prodscout/internal/config"
	"prodscout/internal/crawl"
	"prodscout/internal/discovery"
	"prodscout/internal/intent"
	"prodscout/internal/llm"
	"prodscout/internal/ranking"
	"prodscout/internal/search"
	"prodscout/internal/service"
	"prodscout/internal/storage"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/prodscout/prodscout.db"
	}

	// Expand tilde and environment variables
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// createLLMClient creates a resilient LLM client based on configuration.
// This function is shared by every command that needs model access.
func createLLMClient(ctx context.Context) (*llm.Resilient, error) {
	provider := viper.GetString("llm.provider")
	if provider == "" {
		provider = "gemini" // default provider
	}

	cfg := llm.Config{
		Provider:    provider,
		Model:       viper.GetString("llm.model"),
		BaseURL:     viper.GetString("llm.base_url"),
		Temperature: viper.GetFloat64("llm.temperature"),
		MaxTokens:   viper.GetInt("llm.max_tokens"),
		MaxRetries:  viper.GetInt("llm.max_retries"),
		RetryDelay:  viper.GetDuration("llm.retry_delay"),
		RateLimit:   viper.GetInt("llm.rate_limit"),
	}

	// Set defaults if not specified
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 60 // requests per minute
	}

	// Get API key based on provider
	switch provider {
	case "gemini", "google":
		apiKey := viper.GetString("llm.gemini_api_key")
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("Gemini API key not found in config or GEMINI_API_KEY environment variable")
		}
		cfg.APIKey = apiKey
	case "openai":
		apiKey := viper.GetString("llm.openai_api_key")
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("OpenAI API key not found in config or OPENAI_API_KEY environment variable")
		}
		cfg.APIKey = apiKey
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}

	return llm.NewClient(ctx, cfg)
}

// createDiscoveryService wires the full pipeline. The returned cleanup must
// be called when the command finishes.
func createDiscoveryService(ctx context.Context) (*discovery.Service, func(), error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	client, err := createLLMClient(ctx)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}

	var renderer crawl.Renderer
	if viper.GetBool("crawl.render") {
		r, renderErr := crawl.NewRodRenderer()
		if renderErr != nil {
			_ = client.Close()
			_ = store.Close()
			return nil, nil, fmt.Errorf("failed to start browser renderer: %w", renderErr)
		}
		renderer = r
	}

	registry := crawl.DefaultRegistry(httpClient, renderer)
	dispatcher := crawl.NewDispatcher(registry, crawl.DefaultDispatcherConfig())

	svc := discovery.NewService(
		intent.NewParser(client),
		intent.NewFilterParser(client),
		intent.NewValidator(client),
		search.NewAgent(client),
		dispatcher,
		ranking.NewSelector(client, nil),
		store,
		nil,
	)

	cleanup := func() {
		if renderer != nil {
			_ = renderer.Close()
		}
		_ = client.Close()
		_ = store.Close()
	}
	return svc, cleanup, nil
}
