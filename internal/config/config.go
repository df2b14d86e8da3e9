package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/harunnryd/kouza/internal/pathutil"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
)

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Model     ModelConfig     `koanf:"model"`
	Generator GeneratorConfig `koanf:"generator"`
	Embedding EmbeddingConfig `koanf:"embedding"`
	Store     StoreConfig     `koanf:"store"`
	Session   SessionConfig   `koanf:"session"`
	Docs      DocsConfig      `koanf:"docs"`
}

type ServerConfig struct {
	Port            int    `koanf:"port"`
	LogLevel        string `koanf:"log_level"`
	ReadTimeout     string `koanf:"read_timeout"`
	WriteTimeout    string `koanf:"write_timeout"`
	IdleTimeout     string `koanf:"idle_timeout"`
	ShutdownTimeout string `koanf:"shutdown_timeout"`
}

type ModelConfig struct {
	Name        string  `koanf:"name"`
	APIKey      string  `koanf:"api_key"`
	Temperature float64 `koanf:"temperature"`
	MaxTokens   int     `koanf:"max_tokens"`
}

type GeneratorConfig struct {
	MaxToolRounds int `koanf:"max_tool_rounds"`
}

type EmbeddingConfig struct {
	Model   string `koanf:"model"`
	APIKey  string `koanf:"api_key"`
	BaseURL string `koanf:"base_url"`
}

type StoreConfig struct {
	Path         string `koanf:"path"`
	MaxResults   int    `koanf:"max_results"`
	LockTimeout  string `koanf:"lock_timeout"`
	LockRetry    string `koanf:"lock_retry"`
	LockMaxRetry int    `koanf:"lock_max_retry"`
}

type SessionConfig struct {
	MaxHistory int `koanf:"max_history"`
}

type DocsConfig struct {
	Path            string `koanf:"path"`
	ChunkSize       int    `koanf:"chunk_size"`
	ChunkOverlap    int    `koanf:"chunk_overlap"`
	ReindexSchedule string `koanf:"reindex_schedule"`
	ClearOnReingest bool   `koanf:"clear_on_reingest"`
}

const (
	DefaultServerPort            = 8000
	DefaultServerLogLevel        = "info"
	DefaultServerReadTimeout     = "10s"
	DefaultServerWriteTimeout    = "120s"
	DefaultServerIdleTimeout     = "60s"
	DefaultServerShutdownTimeout = "5s"
	DefaultModelName             = "claude-sonnet-4-20250514"
	DefaultModelTemperature      = 0.0
	DefaultModelMaxTokens        = 800
	DefaultMaxToolRounds         = 2
	DefaultEmbeddingModel        = "text-embedding-3-small"
	DefaultStoreMaxResults       = 5
	DefaultStoreLockTimeout      = "30s"
	DefaultStoreLockRetry        = "100ms"
	DefaultStoreLockMaxRetry     = 50
	DefaultSessionMaxHistory     = 2
	DefaultDocsPath              = "./docs"
	DefaultDocsChunkSize         = 800
	DefaultDocsChunkOverlap      = 100
)

func Load(cmd *cobra.Command) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":               DefaultServerPort,
		"server.log_level":          DefaultServerLogLevel,
		"server.read_timeout":       DefaultServerReadTimeout,
		"server.write_timeout":      DefaultServerWriteTimeout,
		"server.idle_timeout":       DefaultServerIdleTimeout,
		"server.shutdown_timeout":   DefaultServerShutdownTimeout,
		"model.name":                DefaultModelName,
		"model.temperature":         DefaultModelTemperature,
		"model.max_tokens":          DefaultModelMaxTokens,
		"generator.max_tool_rounds": DefaultMaxToolRounds,
		"embedding.model":           DefaultEmbeddingModel,
		"store.path":                filepath.Join(os.Getenv("HOME"), ".kouza", "index"),
		"store.max_results":         DefaultStoreMaxResults,
		"store.lock_timeout":        DefaultStoreLockTimeout,
		"store.lock_retry":          DefaultStoreLockRetry,
		"store.lock_max_retry":      DefaultStoreLockMaxRetry,
		"session.max_history":       DefaultSessionMaxHistory,
		"docs.path":                 DefaultDocsPath,
		"docs.chunk_size":           DefaultDocsChunkSize,
		"docs.chunk_overlap":        DefaultDocsChunkOverlap,
		"docs.reindex_schedule":     "",
		"docs.clear_on_reingest":    false,
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	configPath := ""
	if cmd != nil {
		if flag := cmd.Flags().Lookup("config"); flag != nil {
			configPath = strings.TrimSpace(flag.Value.String())
		}
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, err
		}
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			globalPath := filepath.Join(home, ".kouza", "config.yaml")
			if err := k.Load(file.Provider(globalPath), yaml.Parser()); err != nil {
				slog.Debug("Global config not found or invalid", "path", globalPath, "error", err)
			}
		}
	}

	k.Load(env.Provider("KOUZA_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "KOUZA_")), "_", ".", -1)
	}), nil)

	if cmd != nil {
		k.Load(posflag.Provider(cmd.Flags(), ".", k), nil)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	// Standard env vars fill in missing credentials.
	if cfg.Model.APIKey == "" {
		cfg.Model.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if cfg.Embedding.APIKey == "" {
		cfg.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	storePath, err := pathutil.Expand(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("expand store path: %w", err)
	}
	cfg.Store.Path = storePath

	docsPath, err := pathutil.Expand(cfg.Docs.Path)
	if err != nil {
		return nil, fmt.Errorf("expand docs path: %w", err)
	}
	cfg.Docs.Path = docsPath

	return &cfg, nil
}
