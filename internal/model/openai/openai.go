// Package openai provides the embedding client used by the vector store.
package openai

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sashabaranov/go-openai"
)

type Embedder struct {
	client *openai.Client
	model  string
}

func NewEmbedder(apiKey, baseURL, model string) *Embedder {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	}

	return &Embedder{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	model := e.model
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(model),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embedding failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding data returned")
	}

	return resp.Data[0].Embedding, nil
}
