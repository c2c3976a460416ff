package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/finsight/internal/export"
	"github.com/dgallion1/finsight/internal/ingest"
	"github.com/dgallion1/finsight/internal/pipeline"
)

var (
	runInput   string
	runForce   bool
	runWorkers int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process every report in a directory, then aggregate",
	Long: `Process every supported report file in --input and rebuild the aggregate
insight tables.

Documents are processed independently: a failed document is reported and
the run continues. The command only fails on setup errors.

Examples:
  finsight run --input ./reports
  finsight run --input ./reports --force --workers 4`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate(); err != nil {
			return err
		}
		force := runForce || cfg.Force
		workers := cfg.WorkerCount
		if runWorkers > 0 {
			workers = runWorkers
		}

		paths, err := ingest.ScanDir(runInput)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			logger.Warn("no report files found", "input", runInput)
		}

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		orch := a.orchestrator(workers)
		orch.Start(ctx)

		var jobs []*pipeline.Job
		for _, path := range paths {
			data, err := os.ReadFile(path)
			if err != nil {
				logger.Error("read report", "path", path, "error", err)
				continue
			}
			job := pipeline.NewJob(path, data, force)
			if err := orch.Enqueue(ctx, job); err != nil {
				logger.Error("enqueue report", "path", path, "error", err)
				break
			}
			jobs = append(jobs, job)
		}
		orch.Drain()

		counts := map[pipeline.JobStatus]int{}
		for _, job := range jobs {
			snap := job.Snapshot()
			counts[snap.Status]++
			if snap.Status != pipeline.StatusCompleted {
				logger.Warn("document not completed",
					"document", snap.Identity,
					"status", snap.Status,
					"phase", snap.Phase,
					"errors", snap.Progress.Errors,
				)
			}
		}
		logger.Info("run complete",
			"documents", len(jobs),
			"completed", counts[pipeline.StatusCompleted],
			"partial", counts[pipeline.StatusPartial],
			"failed", counts[pipeline.StatusFailed],
		)

		if ctx.Err() != nil {
			return nil
		}
		rows, err := export.Aggregate(ctx, a.store, logger)
		if err != nil {
			return fmt.Errorf("aggregate: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "processed %d documents, %d insight rows in %s\n", len(jobs), rows, export.AggregateCSV)
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runInput, "input", "./reports", "directory containing report files")
	runCmd.Flags().BoolVar(&runForce, "force", false, "re-extract documents that already have results")
	runCmd.Flags().IntVar(&runWorkers, "workers", 0, "documents processed concurrently (default: worker_count)")
}
