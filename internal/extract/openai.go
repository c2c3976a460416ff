package extract

import (
	"context"
	"errors"
	"net/http"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIConfig holds configuration for the OpenAI chat backend.
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string        // Optional (tests, proxies)
	Timeout    time.Duration // HTTP timeout
	HTTPClient *http.Client  // Optional (tests)
}

// OpenAIBackend implements Backend with the official OpenAI SDK.
type OpenAIBackend struct {
	client openai.Client
}

func NewOpenAIBackend(cfg OpenAIConfig) *OpenAIBackend {
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	// SDK retries are disabled: a failed chunk moves on to the next model.
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAIBackend{client: openai.NewClient(opts...)}
}

// Complete runs a single-message chat completion at temperature 0.
func (b *OpenAIBackend) Complete(ctx context.Context, model, prompt string) (string, error) {
	resp, err := b.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		return "", mapOpenAIError(model, err)
	}
	if len(resp.Choices) == 0 {
		return "", schemaInvalid("openai returned no choices", errors.New("empty choices"))
	}
	return resp.Choices[0].Message.Content, nil
}

func mapOpenAIError(model string, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		kind := statusKind(apiErr.StatusCode)
		if apiErr.Code == "model_not_found" {
			kind = KindModelUnavailable
		}
		msg := apiErr.Message
		if msg == "" {
			msg = http.StatusText(apiErr.StatusCode)
		}
		return &BackendError{Kind: kind, Model: model, StatusCode: apiErr.StatusCode, Message: msg, Err: err}
	}
	return &BackendError{Kind: KindTransient, Model: model, Message: "openai request failed", Err: err}
}
