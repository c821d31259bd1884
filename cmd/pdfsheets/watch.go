package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/pdfsheets/internal/async"
	"github.com/joseph-ayodele/pdfsheets/internal/common"
	"github.com/joseph-ayodele/pdfsheets/internal/ingest"
	"github.com/joseph-ayodele/pdfsheets/internal/repository"
)

func newWatchCmd(cfg *common.Config, logger *slog.Logger) *cobra.Command {
	var (
		templateID string
		outDir     string
		workers    int
		initial    bool
	)
	cmd := &cobra.Command{
		Use:   "watch <inbox-dir> [more-dirs...]",
		Short: "Extract every PDF dropped into the inbox, one workbook per document",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outDir == "" {
				return errors.New("--output-dir or OUTPUT_DIR is required")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store := repository.NewMemoryRepository(cfg.Store.Retention, logger)
			defer func() { _ = store.Close() }()
			janitor := repository.NewJanitor(store, cfg.Store.Retention, time.Minute, logger)
			janitor.Start()

			proc := buildProcessor(ctx, cfg, store, logger).WithOutputDir(outDir)
			queue := async.NewProcessorQueue(proc, logger,
				async.WithWorkers(workers),
				async.WithProcessTimeout(3*time.Minute),
			)

			events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
				Roots:       args,
				InitialScan: initial,
				Debounce:    500 * time.Millisecond,
			}, logger)
			if err != nil {
				return err
			}

		loop:
			for {
				select {
				case path, ok := <-events:
					if !ok {
						break loop
					}
					if err := queue.Enqueue(ctx, async.Job{TemplateID: templateID, Path: path}); err != nil {
						logger.Warn("watch.enqueue.failed", "path", path, "error", err)
					}
				case err, ok := <-errs:
					if ok {
						logger.Warn("watch.error", "error", err)
					}
				case <-ctx.Done():
					break loop
				}
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			queue.Shutdown(shutdownCtx)
			janitor.Shutdown(shutdownCtx)
			return nil
		},
	}
	cmd.Flags().StringVarP(&templateID, "template", "t", "", "template id (required)")
	cmd.Flags().StringVarP(&outDir, "output-dir", "o", cfg.Store.OutputDir, "directory for the workbooks")
	cmd.Flags().IntVar(&workers, "workers", 2, "documents processed concurrently")
	cmd.Flags().BoolVar(&initial, "initial-scan", true, "also process documents already in the inbox")
	_ = cmd.MarkFlagRequired("template")
	return cmd
}
