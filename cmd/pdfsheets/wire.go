package main

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/pdfsheets/constants"
	"github.com/joseph-ayodele/pdfsheets/internal/common"
	"github.com/joseph-ayodele/pdfsheets/internal/export"
	"github.com/joseph-ayodele/pdfsheets/internal/extract"
	"github.com/joseph-ayodele/pdfsheets/internal/llm/gemini"
	"github.com/joseph-ayodele/pdfsheets/internal/llm/openai"
	"github.com/joseph-ayodele/pdfsheets/internal/pdftext"
	"github.com/joseph-ayodele/pdfsheets/internal/pipeline"
	"github.com/joseph-ayodele/pdfsheets/internal/repository"
	"github.com/joseph-ayodele/pdfsheets/internal/templates"
)

// buildExtractor assembles the tier chain. The chat-completions tier is always
// present and falls through on its own without a key; the Gemini tier needs one.
func buildExtractor(ctx context.Context, cfg *common.Config, logger *slog.Logger) *extract.Extractor {
	if cfg.LLM.Mock {
		logger.Info("extract.mode", "mock", true)
		return extract.NewExtractor(true, logger)
	}

	primary := openai.NewClient(openai.Config{
		APIKey:        cfg.LLM.APIKey,
		BaseURL:       cfg.LLM.BaseURL,
		Model:         cfg.LLM.Model,
		Temperature:   cfg.LLM.Temperature,
		Timeout:       cfg.LLM.Timeout,
		RetryAttempts: cfg.LLM.RetryAttempts,
		RetryDelay:    cfg.LLM.RetryDelay,
	}, logger)
	tiers := []extract.Strategy{extract.NewModel(constants.TierOpenAI, primary, logger)}

	if cfg.Gemini.APIKey != "" {
		secondary, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:  cfg.Gemini.APIKey,
			Model:   cfg.Gemini.Model,
			Timeout: cfg.Gemini.Timeout,
		}, logger)
		if err != nil {
			logger.Warn("llm.gemini.init_failed", "error", err)
		} else {
			tiers = append(tiers, extract.NewModel(constants.TierGemini, secondary, logger))
		}
	}

	e := extract.NewExtractor(false, logger, tiers...)
	logger.Info("extract.mode", "mock", false, "tiers", e.Tiers())
	return e
}

func buildTextExtractor(cfg *common.Config, logger *slog.Logger) *pdftext.Extractor {
	return pdftext.NewExtractor(pdftext.Config{
		Pdftotext:     cfg.Text.Pdftotext,
		Pdftoppm:      cfg.Text.Pdftoppm,
		Tesseract:     cfg.Text.Tesseract,
		TesseractLang: cfg.Text.TesseractLang,
		EnableOCR:     cfg.Text.EnableOCR,
	}, logger)
}

func buildProcessor(ctx context.Context, cfg *common.Config, store repository.ArtifactRepository, logger *slog.Logger) *pipeline.Processor {
	return pipeline.NewProcessor(logger,
		templates.NewResolver(cfg.TemplateDirs(), logger),
		buildTextExtractor(cfg, logger),
		buildExtractor(ctx, cfg, logger),
		export.NewService(logger),
		store,
	).WithOutputDir(cfg.Store.OutputDir)
}
