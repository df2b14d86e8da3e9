package main

import (
	"fmt"

	"github.com/harunnryd/kouza/internal/config"
	"github.com/harunnryd/kouza/internal/docs"
	"github.com/harunnryd/kouza/internal/generator"
	"github.com/harunnryd/kouza/internal/model/anthropic"
	"github.com/harunnryd/kouza/internal/model/openai"
	"github.com/harunnryd/kouza/internal/rag"
	"github.com/harunnryd/kouza/internal/session"
	"github.com/harunnryd/kouza/internal/store"
	"github.com/harunnryd/kouza/internal/tool"
)

// buildSystem wires the full application from configuration. The returned
// closer releases the index lock.
func buildSystem(cfg *config.Config) (*rag.System, func(), error) {
	lockTimeout, err := config.DurationOrDefault(cfg.Store.LockTimeout, config.DefaultStoreLockTimeout)
	if err != nil {
		return nil, nil, fmt.Errorf("store lock timeout: %w", err)
	}
	lockRetry, err := config.DurationOrDefault(cfg.Store.LockRetry, config.DefaultStoreLockRetry)
	if err != nil {
		return nil, nil, fmt.Errorf("store lock retry: %w", err)
	}
	lockMaxRetry := cfg.Store.LockMaxRetry
	if lockMaxRetry <= 0 {
		lockMaxRetry = config.DefaultStoreLockMaxRetry
	}

	embedder := openai.NewEmbedder(cfg.Embedding.APIKey, cfg.Embedding.BaseURL, cfg.Embedding.Model)

	st, err := store.New(store.Config{
		Path:       cfg.Store.Path,
		MaxResults: cfg.Store.MaxResults,
		Lock: &store.FileLockConfig{
			LockTimeout:  lockTimeout,
			LockRetry:    lockRetry,
			LockMaxRetry: lockMaxRetry,
		},
	}, embedder)
	if err != nil {
		return nil, nil, err
	}

	tools := tool.NewManager()
	tools.Register(tool.NewSearchTool(st))
	tools.Register(tool.NewOutlineTool(st))

	gen := generator.New(anthropic.New(cfg.Model.APIKey), generator.Config{
		Model:         cfg.Model.Name,
		Temperature:   cfg.Model.Temperature,
		MaxTokens:     cfg.Model.MaxTokens,
		MaxToolRounds: cfg.Generator.MaxToolRounds,
	})

	sessions := session.NewManager(cfg.Session.MaxHistory)
	processor := docs.NewProcessor(cfg.Docs.ChunkSize, cfg.Docs.ChunkOverlap)

	system := rag.New(gen, tools, st, sessions, processor)
	return system, st.Close, nil
}
