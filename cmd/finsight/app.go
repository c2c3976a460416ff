package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dgallion1/finsight/internal/config"
	"github.com/dgallion1/finsight/internal/extract"
	"github.com/dgallion1/finsight/internal/pipeline"
	"github.com/dgallion1/finsight/internal/sentiment"
	"github.com/dgallion1/finsight/internal/storage"
)

// app holds the components shared by the pipeline commands.
type app struct {
	store     storage.Storage
	stats     *extract.LLMStats
	extractor *extract.Extractor
	worker    *pipeline.Worker
	closers   []func()
}

func openStorage(ctx context.Context, c config.Config) (storage.Storage, error) {
	return storage.New(ctx, storage.Config{
		Type:         storage.Type(c.StorageType),
		LocalPath:    c.StoragePath,
		S3Bucket:     c.S3Bucket,
		S3Region:     c.S3Region,
		S3Prefix:     c.S3Prefix,
		S3Endpoint:   c.S3Endpoint,
		AWSAccessKey: c.AWSAccessKey,
		AWSSecretKey: c.AWSSecretKey,
	})
}

func newApp(ctx context.Context, c config.Config) (*app, error) {
	store, err := openStorage(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	a := &app{store: store, stats: extract.NewLLMStats(time.Hour)}

	var fallback extract.Backend
	if c.OpenAIAPIKey != "" {
		fallback = extract.NewOpenAIBackend(extract.OpenAIConfig{
			APIKey:  c.OpenAIAPIKey,
			BaseURL: c.OpenAIBaseURL,
			Timeout: c.ChunkTimeout,
		})
	}
	router := extract.NewRouter(fallback)
	if c.AnthropicAPIKey != "" {
		claude := extract.NewClaudeBackend(c.AnthropicAPIKey, c.AnthropicBaseURL)
		router.Handle("claude", claude)
		a.closers = append(a.closers, claude.Close)
	}

	var backend extract.Backend = router
	if c.RequestsPerMinute > 0 {
		backend = extract.NewLimited(router, c.RequestsPerMinute, 1)
	}

	a.extractor = extract.NewExtractor(backend, extract.Options{
		Models:  c.Models,
		Timeout: c.ChunkTimeout,
	}, a.stats, logger)

	var classifier sentiment.Classifier
	if c.SentimentURL != "" {
		classifier = sentiment.NewHTTPClassifier(sentiment.HTTPConfig{
			URL:       c.SentimentURL,
			APIKey:    c.SentimentAPIKey,
			BatchSize: c.SentimentBatchSize,
			Timeout:   c.SentimentTimeout,
		})
	} else {
		logger.Warn("sentiment_url not set, scoring disabled")
	}

	a.worker = pipeline.NewWorker(store, a.extractor, classifier, c.ChunkBudget, logger)
	return a, nil
}

func (a *app) orchestrator(workers int) *pipeline.Orchestrator {
	return pipeline.NewOrchestrator(pipeline.Config{
		WorkerCount:  workers,
		MaxQueueSize: cfg.MaxQueueSize,
		JobTTL:       cfg.JobTTL,
	}, a.worker, logger)
}

func (a *app) Close() {
	for _, fn := range a.closers {
		fn()
	}
}
