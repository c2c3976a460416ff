package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgallion1/finsight/internal/sentiment"
	"github.com/dgallion1/finsight/internal/storage"
)

// Aggregate unions every stored per-document sentiment table, in key order,
// into the aggregate CSV and XLSX artifacts. Tables that cannot be parsed are
// logged and skipped. With no rows, both artifacts are rewritten as
// header-only tables so an earlier aggregate never survives as current.
func Aggregate(ctx context.Context, store storage.Storage, log *slog.Logger) (int, error) {
	if log == nil {
		log = slog.Default()
	}
	start := time.Now()

	keys, err := store.List(ctx, SentimentPrefix)
	if err != nil {
		return 0, fmt.Errorf("list sentiment tables: %w", err)
	}

	var all []sentiment.Row
	files := 0
	for _, key := range keys {
		if !strings.HasSuffix(key, ".csv") {
			continue
		}
		data, err := store.Get(ctx, key)
		if err != nil {
			return 0, fmt.Errorf("read %s: %w", key, err)
		}
		rows, err := UnmarshalSentimentCSV(data)
		if err != nil {
			log.Warn("aggregate.skip", "key", key, "error", err)
			continue
		}
		files++
		all = append(all, rows...)
	}

	if len(all) == 0 {
		log.Info("aggregate.empty", "tables", files)
	}

	csvData, err := MarshalSentimentCSV(all)
	if err != nil {
		return 0, err
	}
	if err := store.Put(ctx, AggregateCSV, csvData); err != nil {
		return 0, fmt.Errorf("write %s: %w", AggregateCSV, err)
	}

	xlsxData, err := MarshalInsightsXLSX(all)
	if err != nil {
		return 0, err
	}
	if err := store.Put(ctx, AggregateXLSX, xlsxData); err != nil {
		return 0, fmt.Errorf("write %s: %w", AggregateXLSX, err)
	}

	log.Info("aggregate.ok",
		"tables", files,
		"rows", len(all),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return len(all), nil
}
