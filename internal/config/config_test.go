package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

// chdir moves into a fresh directory so no stray finsight.yaml or .env is read.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(cfg.Models, []string{"gpt-4o-mini", "gpt-4o"}) {
		t.Errorf("unexpected default models %v", cfg.Models)
	}
	if cfg.ChunkBudget != 300000 {
		t.Errorf("expected chunk budget 300000, got %d", cfg.ChunkBudget)
	}
	if cfg.ChunkTimeout != 5*time.Minute {
		t.Errorf("expected 5m chunk timeout, got %s", cfg.ChunkTimeout)
	}
	if cfg.StorageType != "local" || cfg.StoragePath != "./data" {
		t.Errorf("unexpected storage defaults %q %q", cfg.StorageType, cfg.StoragePath)
	}
	if cfg.SentimentURL != DefaultSentimentURL || cfg.SentimentBatchSize != 32 {
		t.Errorf("unexpected sentiment defaults %q %d", cfg.SentimentURL, cfg.SentimentBatchSize)
	}
	if cfg.Port != "8090" || cfg.JobTTL != time.Hour {
		t.Errorf("unexpected server defaults %q %s", cfg.Port, cfg.JobTTL)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t)
	t.Setenv("FINSIGHT_MODELS", "claude-sonnet-4-5, gpt-4o")
	t.Setenv("FINSIGHT_CHUNK_BUDGET", "1000")
	t.Setenv("FINSIGHT_WORKER_COUNT", "8")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("FINSIGHT_FORCE", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(cfg.Models, []string{"claude-sonnet-4-5", "gpt-4o"}) {
		t.Errorf("unexpected models %v", cfg.Models)
	}
	if cfg.ChunkBudget != 1000 || cfg.WorkerCount != 8 || !cfg.Force {
		t.Errorf("expected env overrides, got budget=%d workers=%d force=%v", cfg.ChunkBudget, cfg.WorkerCount, cfg.Force)
	}
	if cfg.OpenAIAPIKey != "sk-test" {
		t.Errorf("expected OPENAI_API_KEY fallback, got %q", cfg.OpenAIAPIKey)
	}
}

func TestLoad_ConfigFileAndDotEnv(t *testing.T) {
	dir := chdir(t)
	yaml := "models:\n  - gpt-4o\nstorage_type: s3\ns3_bucket: reports\n"
	if err := os.WriteFile(filepath.Join(dir, "finsight.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("FINSIGHT_API_KEY=from-dotenv\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// godotenv sets process env; make sure it is cleared afterwards.
	t.Setenv("FINSIGHT_API_KEY", "")
	os.Unsetenv("FINSIGHT_API_KEY")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(cfg.Models, []string{"gpt-4o"}) {
		t.Errorf("expected models from file, got %v", cfg.Models)
	}
	if cfg.StorageType != "s3" || cfg.S3Bucket != "reports" {
		t.Errorf("expected s3 storage from file, got %q %q", cfg.StorageType, cfg.S3Bucket)
	}
	if cfg.APIKey != "from-dotenv" {
		t.Errorf("expected api key from .env, got %q", cfg.APIKey)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	chdir(t)
	if _, err := Load("does-not-exist.yaml"); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	base := Config{Models: []string{"gpt-4o-mini"}, ChunkBudget: 10, ChunkTimeout: time.Second, OpenAIAPIKey: "k", StorageType: "local"}
	if err := base.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no models", func(c *Config) { c.Models = nil }, "models"},
		{"bad budget", func(c *Config) { c.ChunkBudget = 0 }, "chunk_budget"},
		{"no openai key", func(c *Config) { c.OpenAIAPIKey = "" }, "OPENAI_API_KEY"},
		{"claude without key", func(c *Config) { c.Models = []string{"claude-sonnet-4-5"} }, "ANTHROPIC_API_KEY"},
		{"s3 without bucket", func(c *Config) { c.StorageType = "s3" }, "s3_bucket"},
		{"unknown storage", func(c *Config) { c.StorageType = "ftp" }, "storage_type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := base
			tc.mutate(&c)
			err := c.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestValidateServer_RequiresAPIKey(t *testing.T) {
	c := Config{Models: []string{"gpt-4o"}, ChunkBudget: 10, ChunkTimeout: time.Second, OpenAIAPIKey: "k", Port: "8090"}
	if err := c.ValidateServer(); err == nil {
		t.Fatal("expected error without api key")
	}
	c.APIKey = "secret"
	if err := c.ValidateServer(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
