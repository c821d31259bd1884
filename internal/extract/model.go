package extract

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/pdfsheets/constants"
	"github.com/joseph-ayodele/pdfsheets/internal/common"
	"github.com/joseph-ayodele/pdfsheets/internal/entity"
	"github.com/joseph-ayodele/pdfsheets/internal/llm"
	"github.com/joseph-ayodele/pdfsheets/internal/templates"
)

// Model is a tier backed by a hosted language model.
type Model struct {
	tier      constants.Tier
	completer llm.Completer
	logger    *slog.Logger
}

func NewModel(tier constants.Tier, c llm.Completer, logger *slog.Logger) *Model {
	if logger == nil {
		logger = slog.Default()
	}
	return &Model{tier: tier, completer: c, logger: logger}
}

func (m *Model) Tier() constants.Tier { return m.tier }

// Attempt succeeds only when the reply parses to a non-empty object with at
// least one non-blank template field.
func (m *Model) Attempt(ctx context.Context, text string, tpl *templates.Template) (entity.Row, bool) {
	log := common.LoggerFromContext(ctx, m.logger).With("tier", string(m.tier))
	start := time.Now()

	reply, err := m.completer.Complete(ctx, llm.BuildPrompt(tpl, text))
	if err != nil {
		log.Warn("extract.model.call_failed", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, false
	}
	parsed := llm.ParseReply(reply)
	if len(parsed) == 0 {
		log.Warn("extract.model.unparseable_reply", "reply_chars", len(reply))
		return nil, false
	}
	row := llm.Coerce(parsed, tpl.UniqueKeys())
	if row.IsBlank() {
		log.Warn("extract.model.blank_row", "keys", len(row))
		return nil, false
	}
	log.Debug("extract.model.ok", "keys", len(row), "elapsed_ms", time.Since(start).Milliseconds())
	return row, true
}
