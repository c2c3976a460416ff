package main

import (
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/finsight/internal/export"
	"github.com/dgallion1/finsight/internal/ingest"
	"github.com/dgallion1/finsight/internal/pipeline"
)

var (
	watchInput    string
	watchDebounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Process reports as they appear in a directory",
	Long: `Process every report already in --input, then keep watching the directory
and process new or rewritten files. The aggregate tables are rebuilt after
each document finishes.

Examples:
  finsight watch --input ./reports`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate(); err != nil {
			return err
		}

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		orch := a.orchestrator(cfg.WorkerCount)
		orch.Start(ctx)
		defer orch.Stop()

		files, err := ingest.Watch(ctx, ingest.WatchConfig{
			Roots:       []string{watchInput},
			InitialScan: true,
			Debounce:    watchDebounce,
			Logger:      logger,
		})
		if err != nil {
			return err
		}
		logger.Info("watching for reports", "input", watchInput)

		var aggMu sync.Mutex
		var wg sync.WaitGroup
		defer wg.Wait()

		for path := range files {
			data, err := os.ReadFile(path)
			if err != nil {
				logger.Error("read report", "path", path, "error", err)
				continue
			}
			job := pipeline.NewJob(path, data, cfg.Force)
			if err := orch.Enqueue(ctx, job); err != nil {
				logger.Error("enqueue report", "path", path, "error", err)
				continue
			}

			wg.Add(1)
			go func() {
				defer wg.Done()
				select {
				case <-job.Done():
				case <-ctx.Done():
					return
				}
				if job.Snapshot().Status == pipeline.StatusFailed {
					return
				}
				aggMu.Lock()
				defer aggMu.Unlock()
				if _, err := export.Aggregate(ctx, a.store, logger); err != nil {
					logger.Error("aggregate", "error", err)
				}
			}()
		}
		return nil
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchInput, "input", "./reports", "directory to watch")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", ingest.DefaultDebounce, "quiet period before a changed file is processed")
}
