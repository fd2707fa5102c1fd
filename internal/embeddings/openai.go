package embeddings

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	lcembeddings "github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// openAIProvider embeds through any OpenAI-compatible API using langchaingo.
type openAIProvider struct {
	model    string
	embedder lcembeddings.Embedder
	dim      atomic.Int64
	logger   *slog.Logger
}

// NewOpenAI constructs an OpenAI-compatible embeddings provider. BaseURL may point at a
// self-hosted server; an empty APIKey is sent as "none" for servers without auth.
func NewOpenAI(cfg *Config) (Provider, error) {
	token := cfg.APIKey
	if token == "" {
		token = "none"
	}
	opts := []openai.Option{
		openai.WithToken(token),
		openai.WithEmbeddingModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("cannot create openai client: %w", err)
	}
	embedder, err := lcembeddings.NewEmbedder(client, lcembeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("cannot create openai embedder: %w", err)
	}
	return &openAIProvider{
		model:    cfg.Model,
		embedder: embedder,
		logger:   slog.Default().With("component", "openai-embedder"),
	}, nil
}

func (p *openAIProvider) ModelID() string {
	return ProviderOpenAI + ":" + p.model
}

func (p *openAIProvider) Dim() int {
	return int(p.dim.Load())
}

func (p *openAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	p.logger.Debug("generating embedding for single text", "length", len(text))
	v, err := p.embedder.EmbedQuery(ctx, text)
	if err != nil {
		p.logger.Error("failed to generate embedding", "err", err)
		return nil, err
	}
	if len(v) == 0 {
		return nil, fmt.Errorf("openai embed response missing embedding")
	}
	p.dim.Store(int64(len(v)))
	return v, nil
}

func (p *openAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	p.logger.Debug("generating embeddings for texts", "count", len(texts))
	out, err := p.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		p.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, err
	}
	if len(out) != len(texts) {
		return nil, fmt.Errorf("%w: sent %d texts, got %d vectors", ErrCountMismatch, len(texts), len(out))
	}
	if len(out[0]) > 0 {
		p.dim.Store(int64(len(out[0])))
	}
	return out, nil
}
