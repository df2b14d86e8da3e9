package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	// We pass nil for cmd to skip flags
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != DefaultServerPort {
		t.Errorf("Expected default port %d, got %d", DefaultServerPort, cfg.Server.Port)
	}
	if cfg.Server.LogLevel != DefaultServerLogLevel {
		t.Errorf("Expected default log level %s, got %s", DefaultServerLogLevel, cfg.Server.LogLevel)
	}
	if cfg.Model.Name != DefaultModelName {
		t.Errorf("Expected default model %s, got %s", DefaultModelName, cfg.Model.Name)
	}
	if cfg.Model.Temperature != DefaultModelTemperature {
		t.Errorf("Expected default temperature %v, got %v", DefaultModelTemperature, cfg.Model.Temperature)
	}
	if cfg.Model.MaxTokens != DefaultModelMaxTokens {
		t.Errorf("Expected default max tokens %d, got %d", DefaultModelMaxTokens, cfg.Model.MaxTokens)
	}
	if cfg.Generator.MaxToolRounds != DefaultMaxToolRounds {
		t.Errorf("Expected default max tool rounds %d, got %d", DefaultMaxToolRounds, cfg.Generator.MaxToolRounds)
	}
	if cfg.Embedding.Model != DefaultEmbeddingModel {
		t.Errorf("Expected default embedding model %s, got %s", DefaultEmbeddingModel, cfg.Embedding.Model)
	}
	if cfg.Store.MaxResults != DefaultStoreMaxResults {
		t.Errorf("Expected default store max results %d, got %d", DefaultStoreMaxResults, cfg.Store.MaxResults)
	}
	if cfg.Store.LockTimeout != DefaultStoreLockTimeout {
		t.Errorf("Expected default store lock timeout %s, got %s", DefaultStoreLockTimeout, cfg.Store.LockTimeout)
	}
	if cfg.Store.LockRetry != DefaultStoreLockRetry {
		t.Errorf("Expected default store lock retry %s, got %s", DefaultStoreLockRetry, cfg.Store.LockRetry)
	}
	if cfg.Store.LockMaxRetry != DefaultStoreLockMaxRetry {
		t.Errorf("Expected default store lock max retry %d, got %d", DefaultStoreLockMaxRetry, cfg.Store.LockMaxRetry)
	}
	if cfg.Session.MaxHistory != DefaultSessionMaxHistory {
		t.Errorf("Expected default session max history %d, got %d", DefaultSessionMaxHistory, cfg.Session.MaxHistory)
	}
	if cfg.Docs.Path != DefaultDocsPath {
		t.Errorf("Expected default docs path %s, got %s", DefaultDocsPath, cfg.Docs.Path)
	}
	if cfg.Docs.ChunkSize != DefaultDocsChunkSize {
		t.Errorf("Expected default chunk size %d, got %d", DefaultDocsChunkSize, cfg.Docs.ChunkSize)
	}
	if cfg.Docs.ChunkOverlap != DefaultDocsChunkOverlap {
		t.Errorf("Expected default chunk overlap %d, got %d", DefaultDocsChunkOverlap, cfg.Docs.ChunkOverlap)
	}
}

func TestLoadWithConfigFlag(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	content := []byte(`
server:
  port: 9090
model:
  name: custom-model
`)
	if err := os.WriteFile(configPath, content, 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cmd := &cobra.Command{}
	cmd.Flags().String("config", "", "config file path")
	if err := cmd.Flags().Set("config", configPath); err != nil {
		t.Fatalf("failed to set config flag: %v", err)
	}

	cfg, err := Load(cmd)
	if err != nil {
		t.Fatalf("failed to load config with --config: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Model.Name != "custom-model" {
		t.Fatalf("expected model custom-model, got %s", cfg.Model.Name)
	}
}

func TestLoadWithMissingConfigFlagReturnsError(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().String("config", "", "config file path")
	if err := cmd.Flags().Set("config", filepath.Join(t.TempDir(), "missing.yaml")); err != nil {
		t.Fatalf("failed to set config flag: %v", err)
	}

	if _, err := Load(cmd); err == nil {
		t.Fatal("expected error when --config points to missing file")
	}
}

func TestLoadAPIKeyFallback(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	t.Setenv("OPENAI_API_KEY", "sk-oai-test")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Model.APIKey != "sk-ant-test" {
		t.Errorf("expected model api key from ANTHROPIC_API_KEY, got %q", cfg.Model.APIKey)
	}
	if cfg.Embedding.APIKey != "sk-oai-test" {
		t.Errorf("expected embedding api key from OPENAI_API_KEY, got %q", cfg.Embedding.APIKey)
	}
}
