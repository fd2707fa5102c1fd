package embeddings

import (
	"context"
	"fmt"
	"strings"

	"github.com/agrobio/biobot/internal/config"
)

// Provider embeds text into fixed-length float vectors.
//
// Implementations must be deterministic for the same input text and model, and safe for
// concurrent use.
type Provider interface {
	// ModelID identifies provider and model as "<provider>:<model>".
	ModelID() string
	// Dim is the vector dimension, or 0 before the first successful call.
	Dim() int
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch returns one vector per input text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Provider names.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Config contains the resolved embeddings configuration.
type Config struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
}

// LoadConfig resolves embeddings config. Environment variables win, then ~/.biobot/.env,
// then the values in base (usually from biobot.yaml).
func LoadConfig(base config.Embeddings) (*Config, error) {
	cfg := &Config{
		Provider: base.Provider,
		Model:    base.Model,
		BaseURL:  base.BaseURL,
	}
	for _, kv := range []struct {
		dst  *string
		keys []string
	}{
		{&cfg.Provider, []string{"BIOBOT_EMBEDDINGS_PROVIDER"}},
		{&cfg.Model, []string{"BIOBOT_EMBEDDINGS_MODEL", "MODEL_NAME"}},
		{&cfg.APIKey, []string{"BIOBOT_EMBEDDINGS_API_KEY", "OPENAI_API_KEY"}},
		{&cfg.BaseURL, []string{"BIOBOT_EMBEDDINGS_BASE_URL"}},
	} {
		v, err := config.FirstConfigValue(kv.keys...)
		if err != nil {
			return nil, err
		}
		if v != "" {
			*kv.dst = v
		}
	}
	return cfg, nil
}

// NewFromConfig returns an embeddings provider.
func NewFromConfig(cfg *Config) (Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("embeddings config is nil")
	}
	if cfg.Provider == "" {
		return nil, fmt.Errorf("embeddings provider is not configured (set BIOBOT_EMBEDDINGS_PROVIDER)")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("embeddings model is not configured (set BIOBOT_EMBEDDINGS_MODEL)")
	}
	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAI(cfg)
	case ProviderOllama:
		return NewOllama(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, cfg.Provider)
	}
}

// ParseModelID splits "<provider>:<model>". Model names may contain colons
// ("ollama:nomic-embed-text:latest").
func ParseModelID(id string) (provider, model string, err error) {
	provider, model, ok := strings.Cut(id, ":")
	if !ok || provider == "" || model == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidModelID, id)
	}
	return provider, model, nil
}

// Open constructs the provider for a model ID recorded in an index, taking credentials
// and endpoints from base.
func Open(modelID string, base *Config) (Provider, error) {
	provider, model, err := ParseModelID(modelID)
	if err != nil {
		return nil, err
	}
	cfg := Config{Provider: provider, Model: model}
	if base != nil && base.Provider == provider {
		cfg.APIKey = base.APIKey
		cfg.BaseURL = base.BaseURL
	} else if base != nil && provider == ProviderOpenAI {
		cfg.APIKey = base.APIKey
	}
	return NewFromConfig(&cfg)
}
