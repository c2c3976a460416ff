package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const anthropicMessagesURL = "https://api.anthropic.com/v1/messages"

// ClaudeBackend calls the Anthropic Messages API.
type ClaudeBackend struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClaudeBackend(apiKey, baseURL string) *ClaudeBackend {
	if baseURL == "" {
		baseURL = anthropicMessagesURL
	}
	return &ClaudeBackend{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends prompt to model and returns the first text block.
func (c *ClaudeBackend) Complete(ctx context.Context, model, prompt string) (string, error) {
	reqBody := anthropicRequest{
		Model:     model,
		MaxTokens: 4096,
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt},
		},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &BackendError{Kind: KindTransient, Model: model, Message: "claude api request failed", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", &BackendError{Kind: KindTransient, Model: model, Message: "read response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &BackendError{
			Kind:       statusKind(resp.StatusCode),
			Model:      model,
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", schemaInvalid("decode claude envelope", err)
	}
	if apiResp.Error != nil {
		return "", &BackendError{
			Kind:    KindTransient,
			Model:   model,
			Message: apiResp.Error.Type + ": " + apiResp.Error.Message,
		}
	}
	if len(apiResp.Content) == 0 {
		return "", schemaInvalid("empty response from claude", errors.New("no content blocks"))
	}
	return apiResp.Content[0].Text, nil
}

// statusKind maps an HTTP status from a model API to a failure kind.
func statusKind(status int) Kind {
	switch status {
	case http.StatusNotFound, http.StatusForbidden:
		return KindModelUnavailable
	default:
		return KindTransient
	}
}

// Close releases resources.
func (c *ClaudeBackend) Close() {
	c.httpClient.CloseIdleConnections()
}
