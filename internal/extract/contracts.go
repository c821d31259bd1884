package extract

import (
	"context"

	"github.com/joseph-ayodele/pdfsheets/constants"
	"github.com/joseph-ayodele/pdfsheets/internal/entity"
	"github.com/joseph-ayodele/pdfsheets/internal/templates"
)

// TextExtractor is stage 1: PDF bytes -> text. It never fails; unreadable input
// yields "".
type TextExtractor interface {
	Extract(ctx context.Context, content []byte) string
}

// Strategy is one tier of stage 2: text -> row. ok is false when the tier could
// not produce a usable row and the next tier should be tried.
type Strategy interface {
	Tier() constants.Tier
	Attempt(ctx context.Context, text string, tpl *templates.Template) (row entity.Row, ok bool)
}
