package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/finsight/internal/report"
)

// DefaultModels is the fallback order used when none is configured.
var DefaultModels = []string{"gpt-4o-mini", "gpt-4o"}

// DefaultChunkTimeout bounds a single backend call when Options.Timeout is unset.
const DefaultChunkTimeout = 5 * time.Minute

// Options configures an Extractor.
type Options struct {
	Models  []string      // Tried strictly in order.
	Timeout time.Duration // Per-chunk call timeout.
}

// Observer receives progress from a running extraction. Methods are called
// from the extracting goroutine.
type Observer interface {
	ModelStarted(model string)
	ChunkDone(model string, index, total int)
}

// Outcome describes how a document's extraction went.
type Outcome struct {
	Model    string        // Model whose attempt succeeded; empty on failure.
	Attempts []*ChunkError // Failed attempts, in model order.
}

// Extractor runs chunks through an ordered list of models. A model attempt
// succeeds only when every chunk succeeds under it; the first chunk failure
// abandons the attempt and the next model starts again from chunk 0.
type Extractor struct {
	backend Backend
	opts    Options
	stats   *LLMStats
	log     *slog.Logger
}

// NewExtractor returns an Extractor. stats may be nil.
func NewExtractor(backend Backend, opts Options, stats *LLMStats, log *slog.Logger) *Extractor {
	if len(opts.Models) == 0 {
		opts.Models = DefaultModels
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultChunkTimeout
	}
	return &Extractor{backend: backend, opts: opts, stats: stats, log: log}
}

// Models returns the configured fallback order.
func (e *Extractor) Models() []string {
	return append([]string(nil), e.opts.Models...)
}

// Extract produces the merged result for doc from its chunks. When every
// model fails the error is an *ExhaustedError. Cancellation of ctx stops
// extraction immediately and is returned as-is.
func (e *Extractor) Extract(ctx context.Context, doc report.NormalizedDocument, chunks []report.Chunk, obs Observer) (report.MergedDocumentResult, Outcome, error) {
	log := e.log.With("document", doc.Identity)
	var attempts []*ChunkError

	for _, model := range e.opts.Models {
		if obs != nil {
			obs.ModelStarted(model)
		}
		results, cerr := e.attempt(ctx, log, model, chunks, obs)
		if cerr == nil {
			log.Info("extraction complete", "model", model, "chunks", len(chunks), "failed_models", len(attempts))
			return report.Merge(doc.CompanyName, results), Outcome{Model: model, Attempts: attempts}, nil
		}
		if err := ctx.Err(); err != nil {
			return report.MergedDocumentResult{}, Outcome{Attempts: attempts}, fmt.Errorf("extract %s: %w", doc.Identity, err)
		}

		attempts = append(attempts, cerr)
		log.Warn("model attempt failed",
			"model", model,
			"chunk", cerr.ChunkIndex,
			"total_chunks", cerr.TotalChunks,
			"kind", cerr.Kind,
			"error", cerr.Err,
		)
	}

	return report.MergedDocumentResult{}, Outcome{Attempts: attempts}, &ExhaustedError{Document: doc.Identity, Attempts: attempts}
}

func (e *Extractor) attempt(ctx context.Context, log *slog.Logger, model string, chunks []report.Chunk, obs Observer) ([]report.ExtractionResult, *ChunkError) {
	results := make([]report.ExtractionResult, 0, len(chunks))
	for _, chunk := range chunks {
		r, err := e.extractChunk(ctx, log, model, chunk)
		if err != nil {
			return nil, &ChunkError{
				Model:       model,
				ChunkIndex:  chunk.Index,
				TotalChunks: chunk.Total,
				Kind:        KindOf(err),
				Err:         err,
			}
		}
		results = append(results, r)
		if obs != nil {
			obs.ChunkDone(model, chunk.Index, chunk.Total)
		}
	}
	return results, nil
}

func (e *Extractor) extractChunk(ctx context.Context, log *slog.Logger, model string, chunk report.Chunk) (report.ExtractionResult, error) {
	reqID := uuid.New().String()
	log = log.With("req_id", reqID, "model", model, "chunk", chunk.Index, "total_chunks", chunk.Total)

	cctx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()

	start := time.Now()
	log.Debug("llm.extract.start", "chars", len(chunk.Text))

	var result report.ExtractionResult
	raw, err := e.backend.Complete(cctx, model, BuildChunkPrompt(chunk.Text))
	if err == nil {
		result, err = DecodeResponse(raw)
	}
	if err != nil && errors.Is(cctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		err = &BackendError{Kind: KindTransient, Model: model, Message: fmt.Sprintf("chunk timed out after %s", e.opts.Timeout), Err: err}
	}

	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		kind := KindOf(err)
		if e.stats != nil {
			e.stats.Record(model, elapsed, kind)
		}
		log.Warn("llm.extract.error", "kind", kind, "elapsed_ms", elapsed, "error", err)
		return report.ExtractionResult{}, err
	}

	if e.stats != nil {
		e.stats.Record(model, elapsed, "")
	}
	log.Info("llm.extract.ok", "elapsed_ms", elapsed, "statements", result.Len())
	return result, nil
}
