package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dgallion1/finsight/internal/report"
)

// HTTPConfig configures an HTTPClassifier.
type HTTPConfig struct {
	URL       string        // Inference endpoint, e.g. a hosted FinBERT model
	APIKey    string        // Sent as a bearer token when set
	BatchSize int           // Statements per request
	Timeout   time.Duration // HTTP timeout
}

// HTTPClassifier calls a text-classification inference endpoint that accepts
// {"inputs": [...]} and answers with one prediction, or a ranked list of
// predictions, per input.
type HTTPClassifier struct {
	url        string
	apiKey     string
	batchSize  int
	httpClient *http.Client
}

func NewHTTPClassifier(cfg HTTPConfig) *HTTPClassifier {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 32
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &HTTPClassifier{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		batchSize:  cfg.BatchSize,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *HTTPClassifier) Classify(ctx context.Context, statements []string) ([]Prediction, error) {
	out := make([]Prediction, 0, len(statements))
	for start := 0; start < len(statements); start += c.batchSize {
		end := min(start+c.batchSize, len(statements))
		preds, err := c.classifyBatch(ctx, statements[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, preds...)
	}
	return out, nil
}

func (c *HTTPClassifier) classifyBatch(ctx context.Context, batch []string) ([]Prediction, error) {
	body, err := json.Marshal(map[string]any{
		"inputs":     batch,
		"parameters": map[string]any{"truncation": true, "max_length": 512},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classifier request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("classifier status %d: %s", resp.StatusCode, report.Truncate(string(respBody), 200))
	}

	preds, err := decodePredictions(respBody)
	if err != nil {
		return nil, err
	}
	if len(preds) != len(batch) {
		return nil, fmt.Errorf("classifier returned %d predictions for %d inputs", len(preds), len(batch))
	}
	return preds, nil
}

// decodePredictions accepts both [{label,score}, ...] and
// [[{label,score}, ...], ...]; for ranked lists the top score wins.
func decodePredictions(data []byte) ([]Prediction, error) {
	var flat []Prediction
	if err := json.Unmarshal(data, &flat); err == nil {
		return flat, nil
	}

	var ranked [][]Prediction
	if err := json.Unmarshal(data, &ranked); err != nil {
		return nil, fmt.Errorf("decode predictions: %w", err)
	}
	out := make([]Prediction, len(ranked))
	for i, candidates := range ranked {
		if len(candidates) == 0 {
			return nil, fmt.Errorf("empty prediction list for input %d", i)
		}
		best := candidates[0]
		for _, p := range candidates[1:] {
			if p.Score > best.Score {
				best = p
			}
		}
		out[i] = best
	}
	return out, nil
}

