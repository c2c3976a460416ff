// Package config loads finsight settings from defaults, an optional YAML
// file, a .env file and FINSIGHT_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultSentimentURL is a hosted FinBERT classifier.
const DefaultSentimentURL = "https://api-inference.huggingface.co/models/ProsusAI/finbert"

type Config struct {
	// Extraction
	Models            []string
	ChunkBudget       int
	ChunkTimeout      time.Duration
	RequestsPerMinute int
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	AnthropicAPIKey   string
	AnthropicBaseURL  string

	// Sentiment classifier
	SentimentURL       string
	SentimentAPIKey    string
	SentimentBatchSize int
	SentimentTimeout   time.Duration

	// Artifact storage
	StorageType  string
	StoragePath  string
	S3Bucket     string
	S3Region     string
	S3Prefix     string
	S3Endpoint   string
	AWSAccessKey string
	AWSSecretKey string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// HTTP API
	Port           string
	APIKey         string
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	LogLevel string
	Force    bool
}

// Load reads configuration. cfgFile may be empty, in which case
// ./finsight.yaml is used when present. A .env file in the working
// directory is loaded first; it never overrides variables already set.
func Load(cfgFile string) (Config, error) {
	if err := godotenv.Load(); err != nil && !isNotExist(err) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	// Environment variables with FINSIGHT_ prefix
	v.SetEnvPrefix("FINSIGHT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Conventional variable names as fallbacks.
	bind(v, "openai_api_key", "FINSIGHT_OPENAI_API_KEY", "OPENAI_API_KEY")
	bind(v, "openai_base_url", "FINSIGHT_OPENAI_BASE_URL", "OPENAI_BASE_URL")
	bind(v, "anthropic_api_key", "FINSIGHT_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	bind(v, "sentiment_api_key", "FINSIGHT_SENTIMENT_API_KEY", "HF_TOKEN")
	bind(v, "aws_access_key_id", "FINSIGHT_AWS_ACCESS_KEY_ID", "AWS_ACCESS_KEY_ID")
	bind(v, "aws_secret_access_key", "FINSIGHT_AWS_SECRET_ACCESS_KEY", "AWS_SECRET_ACCESS_KEY")
	bind(v, "s3_region", "FINSIGHT_S3_REGION", "AWS_REGION")
	bind(v, "port", "FINSIGHT_PORT", "PORT")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("finsight")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := Config{
		Models:            stringList(v, "models"),
		ChunkBudget:       v.GetInt("chunk_budget"),
		ChunkTimeout:      v.GetDuration("chunk_timeout"),
		RequestsPerMinute: v.GetInt("requests_per_minute"),
		OpenAIAPIKey:      v.GetString("openai_api_key"),
		OpenAIBaseURL:     v.GetString("openai_base_url"),
		AnthropicAPIKey:   v.GetString("anthropic_api_key"),
		AnthropicBaseURL:  v.GetString("anthropic_base_url"),

		SentimentURL:       v.GetString("sentiment_url"),
		SentimentAPIKey:    v.GetString("sentiment_api_key"),
		SentimentBatchSize: v.GetInt("sentiment_batch_size"),
		SentimentTimeout:   v.GetDuration("sentiment_timeout"),

		StorageType:  strings.ToLower(v.GetString("storage_type")),
		StoragePath:  v.GetString("storage_path"),
		S3Bucket:     v.GetString("s3_bucket"),
		S3Region:     v.GetString("s3_region"),
		S3Prefix:     v.GetString("s3_prefix"),
		S3Endpoint:   v.GetString("s3_endpoint"),
		AWSAccessKey: v.GetString("aws_access_key_id"),
		AWSSecretKey: v.GetString("aws_secret_access_key"),

		WorkerCount:  v.GetInt("worker_count"),
		MaxQueueSize: v.GetInt("max_queue_size"),

		Port:           v.GetString("port"),
		APIKey:         v.GetString("api_key"),
		MaxUploadBytes: v.GetInt64("max_upload_bytes"),

		JobTTL: v.GetDuration("job_ttl"),

		LogLevel: v.GetString("log_level"),
		Force:    v.GetBool("force"),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("models", "gpt-4o-mini,gpt-4o")
	v.SetDefault("chunk_budget", 300000)
	v.SetDefault("chunk_timeout", "5m")
	v.SetDefault("requests_per_minute", 60)
	v.SetDefault("sentiment_url", DefaultSentimentURL)
	v.SetDefault("sentiment_batch_size", 32)
	v.SetDefault("sentiment_timeout", "60s")
	v.SetDefault("storage_type", "local")
	v.SetDefault("storage_path", "./data")
	v.SetDefault("s3_region", "us-east-1")
	v.SetDefault("worker_count", 2)
	v.SetDefault("max_queue_size", 100)
	v.SetDefault("max_upload_bytes", 52428800) // 50MB
	v.SetDefault("job_ttl", "1h")
	v.SetDefault("port", "8090")
	v.SetDefault("log_level", "info")
	v.SetDefault("force", false)
}

func bind(v *viper.Viper, key string, envs ...string) {
	_ = v.BindEnv(append([]string{key}, envs...)...)
}

// splitList accepts comma or whitespace separated values.
func splitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// stringList reads key as a list, accepting either a YAML sequence or a
// comma separated string.
func stringList(v *viper.Viper, key string) []string {
	if s, ok := v.Get(key).(string); ok {
		return splitList(s)
	}
	return splitList(strings.Join(v.GetStringSlice(key), ","))
}

// Validate checks the settings every command needs.
func (c Config) Validate() error {
	if len(c.Models) == 0 {
		return errors.New("models: at least one model is required")
	}
	if c.ChunkBudget <= 0 {
		return fmt.Errorf("chunk_budget must be positive, got %d", c.ChunkBudget)
	}
	if c.ChunkTimeout <= 0 {
		return fmt.Errorf("chunk_timeout must be positive, got %s", c.ChunkTimeout)
	}
	for _, m := range c.Models {
		if IsClaudeModel(m) {
			if c.AnthropicAPIKey == "" {
				return fmt.Errorf("ANTHROPIC_API_KEY is required for model %s", m)
			}
		} else if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for model %s", m)
		}
	}
	return c.ValidateStorage()
}

// ValidateStorage checks only the artifact storage settings.
func (c Config) ValidateStorage() error {
	switch c.StorageType {
	case "local", "":
	case "s3":
		if c.S3Bucket == "" {
			return errors.New("s3_bucket is required when storage_type is s3")
		}
	default:
		return fmt.Errorf("storage_type must be local or s3, got %q", c.StorageType)
	}
	return nil
}

// ValidateServer checks the additional settings the HTTP API needs.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey == "" {
		return errors.New("FINSIGHT_API_KEY is required")
	}
	if c.Port == "" {
		return errors.New("port is required")
	}
	return nil
}

// IsClaudeModel reports whether model is served by the Anthropic backend.
func IsClaudeModel(model string) bool {
	return strings.HasPrefix(model, "claude")
}
