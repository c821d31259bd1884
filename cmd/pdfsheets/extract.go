package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/pdfsheets/internal/common"
	"github.com/joseph-ayodele/pdfsheets/internal/ingest"
	"github.com/joseph-ayodele/pdfsheets/internal/repository"
)

func newExtractCmd(cfg *common.Config, logger *slog.Logger) *cobra.Command {
	var (
		templateID string
		outDir     string
		inputDir   string
		printRows  bool
	)
	cmd := &cobra.Command{
		Use:   "extract [file.pdf ...]",
		Short: "Extract rows from local PDFs and write the workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := args
			if inputDir != "" {
				found, stats, err := ingest.CollectDocuments(inputDir, true)
				if err != nil {
					return err
				}
				logger.Info("extract.collect", "dir", inputDir, "scanned", stats.Scanned, "matched", stats.Matched)
				paths = append(paths, found...)
			}
			docs, err := ingest.ReadDocuments(paths)
			if err != nil {
				return err
			}
			if outDir == "" {
				outDir = "."
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			store := repository.NewMemoryRepository(cfg.Store.Retention, logger)
			defer func() { _ = store.Close() }()
			proc := buildProcessor(ctx, cfg, store, logger).WithOutputDir(outDir)

			res, err := proc.Process(ctx, templateID, docs)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if printRows {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(res.Rows); err != nil {
					return err
				}
			}
			_, err = fmt.Fprintln(out, filepath.Join(outDir, res.Artifact.Filename))
			return err
		},
	}
	cmd.Flags().StringVarP(&templateID, "template", "t", "", "template id (required)")
	cmd.Flags().StringVarP(&outDir, "output-dir", "o", cfg.Store.OutputDir, "directory for the workbook")
	cmd.Flags().StringVarP(&inputDir, "dir", "d", "", "also read every PDF under this directory")
	cmd.Flags().BoolVar(&printRows, "rows", false, "print extracted rows as JSON")
	_ = cmd.MarkFlagRequired("template")
	return cmd
}
