// Package extract turns document text into template rows.
//
// Fixed-catalog templates always yield their catalog. In mock mode the rule-based
// tier runs alone. Otherwise the configured tiers run in order and the first
// usable row wins; the rule-based tier closes every chain, so Extract never fails.
package extract

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/pdfsheets/constants"
	"github.com/joseph-ayodele/pdfsheets/internal/common"
	"github.com/joseph-ayodele/pdfsheets/internal/entity"
	"github.com/joseph-ayodele/pdfsheets/internal/templates"
)

type Extractor struct {
	mock   bool
	chain  []Strategy
	logger *slog.Logger
}

// NewExtractor builds the tier chain. A trailing Rules tier is appended.
func NewExtractor(mock bool, logger *slog.Logger, tiers ...Strategy) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	chain := make([]Strategy, 0, len(tiers)+1)
	for _, s := range tiers {
		if s != nil {
			chain = append(chain, s)
		}
	}
	chain = append(chain, Rules{})
	return &Extractor{mock: mock, chain: chain, logger: logger}
}

// Tiers lists the chain in attempt order.
func (e *Extractor) Tiers() []constants.Tier {
	out := make([]constants.Tier, len(e.chain))
	for i, s := range e.chain {
		out[i] = s.Tier()
	}
	return out
}

// Extract returns the rows for text under tpl and the tier that produced them.
// General templates always yield exactly one row.
func (e *Extractor) Extract(ctx context.Context, text string, tpl *templates.Template) ([]entity.Row, constants.Tier) {
	log := common.LoggerFromContext(ctx, e.logger)

	if rows, ok := Catalog(tpl.ID); ok {
		log.Debug("extract.catalog", "rows", len(rows))
		return rows, constants.TierCatalog
	}
	if e.mock {
		log.Debug("extract.mock")
		return []entity.Row{RuleRow(text, tpl)}, constants.TierMock
	}

	for _, s := range e.chain {
		row, ok := s.Attempt(ctx, text, tpl)
		if !ok {
			log.Info("extract.tier.fallthrough", "tier", string(s.Tier()))
			continue
		}
		log.Info("extract.tier.ok", "tier", string(s.Tier()), "keys", len(row))
		return []entity.Row{row}, s.Tier()
	}
	// unreachable while Rules closes the chain
	return []entity.Row{RuleRow(text, tpl)}, constants.TierRules
}
