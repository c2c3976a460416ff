package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgallion1/finsight/internal/chunker"
	"github.com/dgallion1/finsight/internal/export"
	"github.com/dgallion1/finsight/internal/extract"
	"github.com/dgallion1/finsight/internal/normalize"
	"github.com/dgallion1/finsight/internal/report"
	"github.com/dgallion1/finsight/internal/sentiment"
	"github.com/dgallion1/finsight/internal/storage"
	"github.com/dgallion1/finsight/internal/textextract"
)

// ErrNoContent is recorded when normalization leaves nothing to extract from.
var ErrNoContent = errors.New("no content after normalization")

// Worker runs the full pipeline for one document at a time. A Worker holds
// no per-document state and may be shared between goroutines.
type Worker struct {
	store       storage.Storage
	extractor   *extract.Extractor
	classifier  sentiment.Classifier
	chunkBudget int
	log         *slog.Logger
}

// NewWorker creates a Worker. classifier may be nil, in which case the
// scoring stage is skipped.
func NewWorker(store storage.Storage, extractor *extract.Extractor, classifier sentiment.Classifier, chunkBudget int, log *slog.Logger) *Worker {
	if chunkBudget <= 0 {
		chunkBudget = chunker.DefaultBudget
	}
	return &Worker{
		store:       store,
		extractor:   extractor,
		classifier:  classifier,
		chunkBudget: chunkBudget,
		log:         log,
	}
}

// Process runs read, normalize, chunk, extract and score for a job. The
// outcome is recorded on the job; one document's failure never affects
// another's.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "document", job.Identity)

	fail := func(phase string, err error) {
		log.Error("document failed", "phase", phase, "error", err)
		job.AddError(fmt.Sprintf("%s: %s", phase, err))
		job.SetStatus(StatusFailed, phase)
	}

	// Phase 1: Read
	job.SetStatus(StatusReading, "reading")
	text, err := textextract.Extract(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		fail("reading", err)
		return
	}
	raw := report.NewRawDocument(job.Identity, text)

	// Phase 2: Normalize
	job.SetStatus(StatusNormalizing, "normalizing")
	doc := normalize.Document(raw)
	stats := normalize.Measure(raw.Text, doc.Text)
	log.Info("normalized document",
		"words_before", stats.WordsBefore,
		"words_after", stats.WordsAfter,
		"reduction", fmt.Sprintf("%.1f%%", stats.Reduction()*100),
	)
	if strings.TrimSpace(doc.Text) == "" {
		fail("normalizing", ErrNoContent)
		return
	}
	if err := w.store.Put(ctx, export.CleanedKey(doc.Identity), []byte(doc.Text)); err != nil {
		fail("normalizing", err)
		return
	}

	// Phase 3: Extract, or reuse a stored result.
	result, reused, err := w.extractOrReuse(ctx, log, job, doc)
	if err != nil {
		if ctx.Err() != nil {
			fail("cancelled", err)
			return
		}
		fail("extracting", err)
		return
	}

	// Phase 4: Score
	if w.classifier == nil {
		// Scores from an earlier extraction no longer apply.
		if !reused {
			if err := w.clearSentiment(ctx, doc.Identity); err != nil {
				log.Warn("clear sentiment table", "error", err)
			}
		}
		job.SetStatus(StatusCompleted, "done")
		return
	}
	job.SetStatus(StatusScoring, "scoring")
	rows, scoreErr := sentiment.Score(ctx, w.classifier, result)
	job.SetSentimentRows(len(rows))
	// An empty table replaces any previous one. The stored table is kept
	// only when every category failed on a reused extraction, since it was
	// scored from that same result.
	if len(rows) > 0 || scoreErr == nil || !reused {
		if err := w.putSentiment(ctx, doc.Identity, rows); err != nil {
			scoreErr = errors.Join(scoreErr, fmt.Errorf("persist sentiment: %w", err))
		}
	}
	if scoreErr != nil {
		log.Warn("scoring incomplete", "rows", len(rows), "error", scoreErr)
		job.AddError(fmt.Sprintf("scoring: %s", scoreErr))
		job.SetStatus(StatusPartial, "done")
		return
	}

	log.Info("document complete", "statements", result.Len(), "sentiment_rows", len(rows))
	job.SetStatus(StatusCompleted, "done")
}

func (w *Worker) putSentiment(ctx context.Context, identity string, rows []sentiment.Row) error {
	data, err := export.MarshalSentimentCSV(rows)
	if err != nil {
		return err
	}
	return w.store.Put(ctx, export.SentimentKey(identity), data)
}

// clearSentiment empties an existing sentiment table for identity.
func (w *Worker) clearSentiment(ctx context.Context, identity string) error {
	exists, err := w.store.Exists(ctx, export.SentimentKey(identity))
	if err != nil || !exists {
		return err
	}
	return w.putSentiment(ctx, identity, nil)
}

func (w *Worker) extractOrReuse(ctx context.Context, log *slog.Logger, job *Job, doc report.NormalizedDocument) (report.MergedDocumentResult, bool, error) {
	key := export.LLMKey(doc.Identity)

	if !job.Force {
		exists, err := w.store.Exists(ctx, key)
		if err != nil {
			return report.MergedDocumentResult{}, false, fmt.Errorf("check %s: %w", key, err)
		}
		if exists {
			data, err := w.store.Get(ctx, key)
			if err != nil {
				return report.MergedDocumentResult{}, false, err
			}
			a, err := export.UnmarshalArtifact(data)
			if err != nil {
				return report.MergedDocumentResult{}, false, fmt.Errorf("%s: %w", key, err)
			}
			log.Info("reusing stored extraction", "key", key, "model", a.Model)
			job.SetResult(a.Model, a.Result.Len(), true)
			return a.Result, true, nil
		}
	}

	job.SetStatus(StatusChunking, "chunking")
	chunks := chunker.Split(doc.Text, w.chunkBudget)
	job.SetTotalChunks(len(chunks))
	log.Info("chunked document", "chunks", len(chunks), "budget", w.chunkBudget)

	job.SetStatus(StatusExtracting, "extracting")
	result, outcome, err := w.extractor.Extract(ctx, doc, chunks, job)
	for _, a := range outcome.Attempts {
		job.AddError(a.Error())
	}
	if err != nil {
		return report.MergedDocumentResult{}, false, err
	}

	data, err := export.MarshalArtifact(export.Artifact{
		Document: doc.Identity,
		Model:    outcome.Model,
		Result:   result,
	})
	if err != nil {
		return report.MergedDocumentResult{}, false, err
	}
	if err := w.store.Put(ctx, key, data); err != nil {
		return report.MergedDocumentResult{}, false, fmt.Errorf("persist %s: %w", key, err)
	}
	job.SetResult(outcome.Model, result.Len(), false)
	return result, false, nil
}
