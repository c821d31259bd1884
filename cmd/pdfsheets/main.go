package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/pdfsheets/internal/common"
)

func main() {
	cfg := common.LoadConfig()

	// Setup structured logger that outputs messages with variables but no time
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
	slog.SetDefault(logger)

	root := &cobra.Command{
		Use:           "pdfsheets",
		Short:         "Extract structured rows from PDF documents into Excel workbooks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newServeCmd(cfg, logger),
		newExtractCmd(cfg, logger),
		newTemplateCmd(cfg, logger),
		newWatchCmd(cfg, logger),
	)

	if err := root.Execute(); err != nil {
		logger.Error("pdfsheets.failed", "error", err)
		os.Exit(1)
	}
}
